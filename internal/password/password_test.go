package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy(Normal, 0)
	require.NoError(t, err)
	assert.Equal(t, Requirements{Total: 6, Digit: 1, Entropy: 20}, p.Requirements())

	p, err = NewPolicy(Strong, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, p.Requirements().Total)
	assert.Equal(t, 2, p.Requirements().Upper)

	_, err = NewPolicy("paranoid", 0)
	require.ErrorIs(t, err, ErrUnknownComplexity)
}

func TestCheck(t *testing.T) {
	testCases := []struct {
		name       string
		complexity string
		length     int
		password   string
		expected   error
	}{
		{name: "weak ok", complexity: Weak, password: "abcxyz"},
		{name: "weak too short", complexity: Weak, password: "abc", expected: ErrTooShort},
		{name: "normal needs digit", complexity: Normal, password: "abcdefgh", expected: ErrTooSimple},
		{name: "normal ok", complexity: Normal, password: "blue-horse-7"},
		{name: "normal repeated characters", complexity: Normal, password: "aaaaaaaa1", expected: ErrTooPredictable},
		{name: "weak has no entropy floor", complexity: Weak, password: "aaaaaaaa"},
		{name: "common", complexity: Normal, password: "password1", expected: ErrTooCommon},
		{name: "common ignores case", complexity: Weak, password: "PassWord", expected: ErrTooCommon},
		{name: "strong missing special", complexity: Strong, password: "abCDef12", expected: ErrTooSimple},
		{name: "strong missing upper", complexity: Strong, password: "abcdef1!", expected: ErrTooSimple},
		{name: "strong ok", complexity: Strong, password: "abCD1!xyz"},
		{name: "length override", complexity: Weak, length: 10, password: "abcdefgh", expected: ErrTooShort},
		{name: "counts runes not bytes", complexity: Weak, password: "ééééé", expected: ErrTooShort},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPolicy(tc.complexity, tc.length)
			require.NoError(t, err)

			err = p.Check(tc.password)
			if tc.expected == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestCommonListLoaded(t *testing.T) {
	assert.True(t, IsCommon("123456"))
	assert.True(t, IsCommon("qwerty"))
	assert.False(t, IsCommon("a7-unlikely-Phrase"))
}
