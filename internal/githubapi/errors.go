package githubapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/repo-butler/internal/core"
)

// mapError translates go-github transport errors onto the pipeline's error
// taxonomy so the dispatcher can decide between retrying and reporting.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%w: %v", core.ErrRateLimited, err)
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: %v", core.ErrRateLimited, err)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusForbidden, http.StatusNotFound, http.StatusUnauthorized, http.StatusUnprocessableEntity, http.StatusGone:
			return fmt.Errorf("%w: %v", core.ErrPermanent, err)
		}
		if respErr.Response.StatusCode >= 500 {
			return fmt.Errorf("%w: %v", core.ErrRateLimited, err)
		}
	}
	return err
}

// isNotFound reports whether err is a plain 404 from the API.
func isNotFound(err error) bool {
	var respErr *github.ErrorResponse
	return errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == http.StatusNotFound
}
