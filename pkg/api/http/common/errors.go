package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	ie "github.com/voidshard/keel/pkg/errors"
)

// statusErrors maps http status codes to the errors that cause them, checked
// in order.
var statusErrors = []struct {
	Code int
	Errs []error
}{
	{http.StatusConflict, []error{ie.ErrInvalidTransition, ie.ErrConflict, ie.ErrNoResumableCheckpoint, ie.ErrJobNotRunning}},
	{http.StatusNotFound, []error{ie.ErrNotFound}},
	{http.StatusForbidden, []error{ie.ErrForbidden}},
	{http.StatusUnauthorized, []error{ie.ErrUnauthorized}},
	{http.StatusBadRequest, []error{ie.ErrInvalidArg, ie.ErrMaxExceeded, ie.ErrNoJobType, ie.ErrNoOwner, ie.ErrNotSupported}},
}

// StatusCode returns the http status code for a given error from keel, or
// http.StatusInternalServerError if the error is not recognised.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	for _, se := range statusErrors {
		for _, e := range se.Errs {
			if errors.Is(err, e) {
				return se.Code
			}
		}
	}
	return http.StatusInternalServerError
}

// ErrorFor rebuilds an error from a status code & response body so callers
// can check it with errors.Is. The body is the server's error message; any
// errors for the code named in it are wrapped, else the first for the code.
func ErrorFor(code int, body string) error {
	body = strings.TrimSpace(body)
	for _, se := range statusErrors {
		if se.Code != code {
			continue
		}
		matched := []error{}
		for _, e := range se.Errs {
			if strings.Contains(body, e.Error()) {
				matched = append(matched, e)
			}
		}
		if len(matched) == 0 {
			matched = append(matched, se.Errs[0])
		}
		return fmt.Errorf("%w: %s", errors.Join(matched...), body)
	}
	return fmt.Errorf("bad status code %d, returned %s", code, body)
}
