package setup

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrAlreadySetUp is returned once any user exists.
	ErrAlreadySetUp = errors.New("setup already completed")
	// ErrSetupFailed is returned when the setup transaction was rolled back.
	ErrSetupFailed = errors.New("setup failed")
)

// FieldErrors maps request fields to validation messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return "invalid fields: " + strings.Join(keys, ", ")
}

// ConnectionError is returned when the supplied database can not be reached.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
