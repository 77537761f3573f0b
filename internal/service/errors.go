package service

import (
	"errors"
	"fmt"
	"net/http"

	"stackscrape/internal/fetcher"
	"stackscrape/internal/scrapers/stackoverflow"
)

// ValidationError is a bad or missing query parameter, it is always answered with 400.
type ValidationError struct {
	Param   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalidParam(param, format string, args ...any) *ValidationError {
	return &ValidationError{
		Param:   param,
		Message: fmt.Sprintf(format, args...),
	}
}

// errorStatus maps an error returned by a handler to the status code and message the client sees.
func errorStatus(err error) (int, string) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, validationErr.Message
	}

	var fetchErr *stackoverflow.FetchError
	if errors.As(err, &fetchErr) {
		return http.StatusInternalServerError, fmt.Sprintf(
			"failed to fetch %s from stackoverflow (status %d)",
			fetchErr.URL, fetchErr.StatusCode,
		)
	}
	if errors.Is(err, fetcher.ErrRateLimited) {
		return http.StatusInternalServerError, "stackoverflow is rate limiting requests, try again later"
	}
	return http.StatusInternalServerError, "failed to fetch data from stackoverflow"
}
