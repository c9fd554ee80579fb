// Package settings is the typed layer over the settings table. Every setting
// is declared with a type, a default and a visibility. Values are validated
// and normalised on write and can be overridden from the environment.
package settings

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/lumenboard/lumenboard/internal/db/controller/setting"
	"github.com/lumenboard/lumenboard/internal/locale"
	"github.com/lumenboard/lumenboard/internal/validation"
)

const (
	envPrefix = "LUMENBOARD_"
	mask      = "**********"
)

var validate = validation.New()

// Entry is a setting as listed to admins.
type Entry struct {
	Key          string `json:"key"`
	Value        any    `json:"value"`
	Default      any    `json:"default"`
	Description  string `json:"description"`
	IsEnvSetting bool   `json:"is_env_setting"`
	EnvName      string `json:"env_name"`
}

// EnvName is the environment variable overriding the setting name.
func EnvName(name string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// Coerce validates raw against the definition and returns the stored form.
// An empty result means the setting is reset to its default.
func Coerce(def Definition, raw any) (string, error) {
	invalid := func(msg string) error {
		return &ValidationError{Name: def.Name, Message: msg}
	}

	if raw == nil {
		if def.NonBlank {
			return "", invalid(validation.MsgNonBlank)
		}

		return "", nil
	}

	if b, ok := raw.(bool); ok {
		if def.Type != Boolean {
			return "", invalid(messageFor(def.Type))
		}

		return strconv.FormatBool(b), nil
	}

	var s string

	switch v := raw.(type) {
	case string:
		s = v
	case float64, int, int64:
		if def.Type != Integer && def.Type != String {
			return "", invalid(messageFor(def.Type))
		}

		s = cast.ToString(v)
	default:
		return "", invalid(messageFor(def.Type))
	}

	if strings.TrimSpace(s) == "" {
		if def.NonBlank {
			return "", invalid(validation.MsgNonBlank)
		}

		return "", nil
	}

	switch def.Type {
	case Boolean:
		b, err := cast.ToBoolE(strings.TrimSpace(s))
		if err != nil {
			return "", invalid(validation.MsgBoolean)
		}

		return strconv.FormatBool(b), nil
	case Integer:
		n, err := cast.ToIntE(strings.TrimSpace(s))
		if err != nil {
			return "", invalid(validation.MsgInteger)
		}

		return strconv.Itoa(n), nil
	case Locale:
		normalized, err := locale.Normalize(s)
		if err != nil {
			return "", invalid(validation.MsgLocale)
		}

		return normalized, nil
	case Email:
		if err := validate.Var(s, "email"); err != nil {
			return "", invalid(validation.MsgEmail)
		}

		return s, nil
	default:
		return s, nil
	}
}

func messageFor(t Type) string {
	switch t {
	case Boolean:
		return validation.MsgBoolean
	case Integer:
		return validation.MsgInteger
	case Locale:
		return validation.MsgLocale
	case Email:
		return validation.MsgEmail
	default:
		return validation.MsgNonBlank
	}
}

// Set validates raw and stores it. Values coercing to empty reset the setting.
func Set(db *gorm.DB, name string, raw any) error {
	def, ok := Lookup(name)
	if !ok {
		return ErrUnknownSetting
	}

	value, err := Coerce(def, raw)
	if err != nil {
		return err
	}

	if value == "" {
		err = setting.Delete(db, name)
		if errors.Is(err, setting.ErrSettingNotFound) {
			return nil
		}

		return err
	}

	return setting.Set(db, name, []byte(value))
}

// Get returns the effective value of name: environment, stored value, then default.
func Get(db *gorm.DB, name string) (string, error) {
	def, ok := Lookup(name)
	if !ok {
		return "", ErrUnknownSetting
	}

	if v, ok := envValue(def); ok {
		return v, nil
	}

	s, err := setting.Get(db, name)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return def.Default, nil
	}

	if err != nil {
		return "", err
	}

	return string(s.Value), nil
}

// GetBool returns the effective value of a boolean setting.
func GetBool(db *gorm.DB, name string) (bool, error) {
	v, err := Get(db, name)
	if err != nil {
		return false, err
	}

	if v == "" {
		return false, nil
	}

	return cast.ToBoolE(v)
}

// GetInt returns the effective value of an integer setting. Unset yields 0.
func GetInt(db *gorm.DB, name string) (int, error) {
	v, err := Get(db, name)
	if err != nil {
		return 0, err
	}

	if v == "" {
		return 0, nil
	}

	return cast.ToIntE(v)
}

// IsSet reports whether name has a non-empty effective value.
func IsSet(db *gorm.DB, name string) (bool, error) {
	v, err := Get(db, name)
	if err != nil {
		return false, err
	}

	return strings.TrimSpace(v) != "", nil
}

// Values returns the typed effective values of all settings up to the given
// visibility, keyed by name.
func Values(db *gorm.DB, upTo Visibility) (map[string]any, error) {
	entries, err := list(db, upTo)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}

	return out, nil
}

// List returns every setting an admin may see. Sensitive values are masked.
func List(db *gorm.DB) ([]Entry, error) {
	entries, err := list(db, Admin)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		def, _ := Lookup(entries[i].Key)
		if def.Sensitive && entries[i].Value != nil {
			entries[i].Value = mask
		}
	}

	return entries, nil
}

func list(db *gorm.DB, upTo Visibility) ([]Entry, error) {
	var (
		defs  []Definition
		names []string
	)

	for _, def := range definitions {
		if def.Visibility <= upTo {
			defs = append(defs, def)
			names = append(names, def.Name)
		}
	}

	stored, err := setting.GetMany(db, names...)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(defs))

	for _, def := range defs {
		e := Entry{
			Key:         def.Name,
			Default:     typed(def, def.Default),
			Description: def.Description,
			EnvName:     EnvName(def.Name),
		}

		raw := def.Default
		if v, ok := stored[def.Name]; ok {
			raw = string(v)
		}

		if v, ok := envValue(def); ok {
			raw = v
			e.IsEnvSetting = true
		}

		e.Value = typed(def, raw)
		out = append(out, e)
	}

	return out, nil
}

// envValue returns the environment override of def. Internal settings are
// owned by the application and never read from the environment.
func envValue(def Definition) (string, bool) {
	if def.Visibility == Internal {
		return "", false
	}

	return os.LookupEnv(EnvName(def.Name))
}

func typed(def Definition, raw string) any {
	if raw == "" {
		return nil
	}

	switch def.Type {
	case Boolean:
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return nil
		}

		return b
	case Integer:
		n, err := cast.ToIntE(raw)
		if err != nil {
			return nil
		}

		return n
	default:
		return raw
	}
}
