package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
		valid    bool
	}{
		{in: "en", expected: "en", valid: true},
		{in: "ES", expected: "es", valid: true},
		{in: "es-mx", expected: "es_MX", valid: true},
		{in: "en_US", expected: "en_US", valid: true},
		{in: "pt-br", expected: "pt_BR", valid: true},
		{in: "xx", valid: false},
		{in: "en_XX", valid: false},
		{in: "eng", valid: false},
		{in: "e", valid: false},
		{in: "", valid: false},
		{in: "en-", valid: false},
		{in: "en_U1", valid: false},
		{in: "en US", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			out, err := Normalize(tc.in)
			if !tc.valid {
				require.ErrorIs(t, err, ErrInvalidLocale)
				assert.False(t, IsValid(tc.in))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, out)
			assert.True(t, IsValid(tc.in))
		})
	}
}
