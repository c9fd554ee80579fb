// Package password implements the strength policy for local account passwords.
package password

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"unicode"

	passwordvalidator "github.com/wagslane/go-password-validator"
)

const (
	// Weak only requires a minimum length.
	Weak = "weak"
	// Normal additionally requires a digit.
	Normal = "normal"
	// Strong requires mixed case, digits and special characters.
	Strong = "strong"
)

var (
	// ErrTooShort is returned when the password is below the minimum length.
	ErrTooShort = errors.New("password is too short")
	// ErrTooSimple is returned when a character class requirement is not met.
	ErrTooSimple = errors.New("password does not meet complexity requirements")
	// ErrTooPredictable is returned when the password entropy is below the level's floor.
	ErrTooPredictable = errors.New("password is too predictable")
	// ErrTooCommon is returned for passwords on the common password list.
	ErrTooCommon = errors.New("password is too common")
	// ErrUnknownComplexity is returned for an unknown complexity level.
	ErrUnknownComplexity = errors.New("unknown password complexity")
)

//go:embed common_passwords.txt
var commonList string

var common = func() map[string]struct{} {
	out := make(map[string]struct{})

	for _, line := range strings.Split(commonList, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out[line] = struct{}{}
		}
	}

	return out
}()

// Requirements are the character counts a password must reach.
type Requirements struct {
	Total   int
	Lower   int
	Upper   int
	Digit   int
	Special int
	// Entropy is the minimum number of bits as estimated by go-password-validator.
	Entropy float64
}

var levels = map[string]Requirements{
	Weak:   {Total: 6},
	Normal: {Total: 6, Digit: 1, Entropy: 20},
	Strong: {Total: 8, Lower: 2, Upper: 2, Digit: 1, Special: 1, Entropy: 40},
}

// Policy checks passwords against a complexity level.
type Policy struct {
	req Requirements
}

// NewPolicy returns the policy for complexity. A positive length overrides
// the minimum length of the level.
func NewPolicy(complexity string, length int) (*Policy, error) {
	req, ok := levels[complexity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComplexity, complexity)
	}

	if length > 0 {
		req.Total = length
	}

	return &Policy{req: req}, nil
}

// Requirements returns the counts enforced by the policy.
func (p *Policy) Requirements() Requirements {
	return p.req
}

// Check returns nil when password satisfies the policy.
func (p *Policy) Check(password string) error {
	var got Requirements

	for _, r := range password {
		got.Total++

		switch {
		case unicode.IsLower(r):
			got.Lower++
		case unicode.IsUpper(r):
			got.Upper++
		case unicode.IsDigit(r):
			got.Digit++
		default:
			got.Special++
		}
	}

	if got.Total < p.req.Total {
		return ErrTooShort
	}

	if got.Lower < p.req.Lower || got.Upper < p.req.Upper ||
		got.Digit < p.req.Digit || got.Special < p.req.Special {
		return ErrTooSimple
	}

	if p.req.Entropy > 0 && passwordvalidator.GetEntropy(password) < p.req.Entropy {
		return ErrTooPredictable
	}

	if IsCommon(password) {
		return ErrTooCommon
	}

	return nil
}

// IsCommon reports whether password is on the common password list, ignoring case.
func IsCommon(password string) bool {
	_, ok := common[strings.ToLower(password)]

	return ok
}
