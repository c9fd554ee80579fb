// Package validation builds the shared request validator and maps its
// failures to the field messages returned by the API.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lumenboard/lumenboard/internal/db/engine"
	"github.com/lumenboard/lumenboard/internal/locale"
)

// Field messages.
const (
	MsgNonBlank = "value must be a non-blank string."
	MsgEmail    = "value must be a valid email address."
	MsgPassword = "password is too common."
	MsgLocale   = "String must be a valid two-letter ISO language or language-country code e.g. 'en' or 'en_US'."
	MsgBoolean  = "value must be a valid boolean string ('true' or 'false')."
	MsgInteger  = "value must be an integer."
	MsgEngine   = "value must be a valid database engine."
	MsgToken    = "Token does not match the setup token."
	MsgRequired = "value is required."
	MsgInvalid  = "value is invalid."
)

var messages = map[string]string{
	"notblank": MsgNonBlank,
	"email":    MsgEmail,
	"password": MsgPassword,
	"locale":   MsgLocale,
	"dbengine": MsgEngine,
	"required": MsgRequired,
}

// New returns a validator that reports json field names and knows the
// notblank, locale and dbengine tags.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	_ = v.RegisterValidation("locale", func(fl validator.FieldLevel) bool {
		return locale.IsValid(fl.Field().String())
	})

	_ = v.RegisterValidation("dbengine", func(fl validator.FieldLevel) bool {
		return engine.IsValid(fl.Field().String())
	})

	return v
}

// FieldErrors turns validator failures into a json field name to message map.
// The first failure of a field wins. Other errors yield nil.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string, len(verrs))

	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}

		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = MsgInvalid
		}

		out[fe.Field()] = msg
	}

	return out
}
