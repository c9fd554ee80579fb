package uniuri

import (
	"crypto/rand"
	"io"
)

const (
	// TokenLen gives a setup token ~190 bits of entropy.
	TokenLen = 32
	// PasswordLen is the length of generated account passwords.
	PasswordLen = 24

	byteRange = 256
	chunkLen  = 64
)

var (
	// TokenChars is the alphabet of setup tokens.
	TokenChars = []byte("abcdefghijklmnopqrstuvwxyz0123456789")
	// PasswordChars is the alphabet of generated passwords.
	PasswordChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!#%+-=?@^_")

	reader io.Reader = rand.Reader
)

// Token returns a new setup token.
func Token() string {
	return NewLenChars(TokenLen, TokenChars)
}

// Password returns a random password for accounts that will set their own later.
func Password() string {
	return NewLenChars(PasswordLen, PasswordChars)
}

// NewLenChars returns a random string of length drawn uniformly from chars.
// chars must hold between 2 and 256 bytes.
func NewLenChars(length int, chars []byte) string {
	if length <= 0 {
		return ""
	}

	n := len(chars)
	if n < 2 || n > byteRange {
		panic("uniuri: wrong charset length")
	}

	// bytes at or above limit would favour the first characters
	limit := byteRange - byteRange%n

	out := make([]byte, 0, length)
	buf := make([]byte, chunkLen)

	for len(out) < length {
		if _, err := io.ReadFull(reader, buf); err != nil {
			panic("uniuri: error reading random bytes: " + err.Error())
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, chars[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}

	return string(out)
}
