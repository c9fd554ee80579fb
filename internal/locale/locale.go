// Package locale validates and normalises site locale codes such as "en" or "es_MX".
package locale

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

// ErrInvalidLocale is returned for codes that are not a known ISO language,
// optionally followed by a known ISO region.
var ErrInvalidLocale = errors.New("invalid locale")

var shape = regexp.MustCompile(`^[a-zA-Z]{2}([-_][a-zA-Z]{2})?$`)

// Normalize returns the canonical "ll" or "ll_CC" form of code.
func Normalize(code string) (string, error) {
	if !shape.MatchString(code) {
		return "", ErrInvalidLocale
	}

	lang := strings.ToLower(code[:2])

	base, err := language.ParseBase(lang)
	if err != nil || base.String() != lang {
		return "", ErrInvalidLocale
	}

	if len(code) == 2 {
		return lang, nil
	}

	country := strings.ToUpper(code[3:])

	region, err := language.ParseRegion(country)
	if err != nil || region.String() != country || !region.IsCountry() {
		return "", ErrInvalidLocale
	}

	return lang + "_" + country, nil
}

// IsValid reports whether code is a valid locale.
func IsValid(code string) bool {
	_, err := Normalize(code)

	return err == nil
}
