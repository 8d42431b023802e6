package githubapi

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"

	"github.com/sevigo/repo-butler/internal/core"
)

func respErr(status int) *github.ErrorResponse {
	return &github.ErrorResponse{
		Response: &http.Response{StatusCode: status},
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "Nil passes through", in: nil, want: nil},
		{name: "Rate limit is transient", in: &github.RateLimitError{}, want: core.ErrRateLimited},
		{name: "Abuse rate limit is transient", in: &github.AbuseRateLimitError{}, want: core.ErrRateLimited},
		{name: "403 is permanent", in: respErr(http.StatusForbidden), want: core.ErrPermanent},
		{name: "404 is permanent", in: respErr(http.StatusNotFound), want: core.ErrPermanent},
		{name: "401 is permanent", in: respErr(http.StatusUnauthorized), want: core.ErrPermanent},
		{name: "422 is permanent", in: respErr(http.StatusUnprocessableEntity), want: core.ErrPermanent},
		{name: "502 is transient", in: respErr(http.StatusBadGateway), want: core.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}

	t.Run("Unrecognized error passes through unchanged", func(t *testing.T) {
		plain := errors.New("dial tcp: connection refused")
		assert.Equal(t, plain, mapError(plain))
	})
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(respErr(http.StatusNotFound)))
	assert.False(t, isNotFound(respErr(http.StatusForbidden)))
	assert.False(t, isNotFound(errors.New("nope")))
	assert.False(t, isNotFound(nil))
}
