package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string  `json:"name"             validate:"notblank"`
	Email  string  `json:"email"            validate:"email"`
	Locale *string `json:"locale,omitempty" validate:"omitnil,locale"`
	Engine string  `json:"engine"           validate:"dbengine"`
	Count  int     `json:"count"            validate:"gte=1"`
	Hidden string  `json:"-"                validate:"notblank"`
}

func TestFieldErrors(t *testing.T) {
	v := New()
	bad := "zz_ZZ"

	err := v.Struct(sample{Name: "  ", Email: "nope", Locale: &bad, Engine: "oracle"})
	require.Error(t, err)

	out := FieldErrors(err)
	assert.Equal(t, MsgNonBlank, out["name"])
	assert.Equal(t, MsgEmail, out["email"])
	assert.Equal(t, MsgLocale, out["locale"])
	assert.Equal(t, MsgEngine, out["engine"])
	assert.Equal(t, MsgInvalid, out["count"])
}

func TestValidStruct(t *testing.T) {
	v := New()
	loc := "es-mx"

	err := v.Struct(sample{Name: "Acme", Email: "a@b.co", Locale: &loc, Engine: "postgres", Count: 2, Hidden: "x"})
	require.NoError(t, err)

	err = v.Struct(sample{Name: "Acme", Email: "a@b.co", Engine: "mysql", Count: 1, Hidden: "x"})
	require.NoError(t, err, "nil locale is skipped")
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(errors.New("boom")))
	assert.Nil(t, FieldErrors(nil))
}
