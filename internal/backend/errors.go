package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failure reported by the remote platform.
type Error struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend: %s (code %d)", e.Message, e.Code)
}

// IsNotFound reports whether err is a remote not-found failure.
func IsNotFound(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Code == http.StatusNotFound
}

// IsConflict reports whether err is a remote conflict failure, e.g.
// confirming a verification that already happened.
func IsConflict(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Code == http.StatusConflict
}
