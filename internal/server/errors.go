package server

import (
	"errors"
	"net/http"
	"os"

	"github.com/gdalmoro/jobpilot/internal/posting"
)

// HTTPStatus returns the appropriate HTTP status code for an error. Posting
// acquisition failures are the client's input problem, not a server fault.
func HTTPStatus(err error) int {
	var acquireErr *posting.AcquireError
	switch {
	case errors.As(err, &acquireErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
