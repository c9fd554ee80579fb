package settings

import "errors"

// ErrUnknownSetting is returned for names that are not declared.
var ErrUnknownSetting = errors.New("unknown setting")

// ValidationError reports a value that a setting does not accept.
type ValidationError struct {
	Name    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Name + ": " + e.Message
}
