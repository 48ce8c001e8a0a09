package registry

import (
	crand "crypto/rand"
	"strings"
)

// codeAlphabet deliberately has no "0": users confuse it with "O", so zeros
// in typed codes are rewritten to "O" during normalization instead.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ123456789"

// CodeLength is the fixed length of a room code.
const CodeLength = 4

// NormalizeCode canonicalizes user input: uppercase, then "0" becomes "O".
// The result of a normalization is itself normalized.
func NormalizeCode(code string) string {
	return strings.ReplaceAll(strings.ToUpper(code), "0", "O")
}

// ValidCode reports whether code is canonical: exactly CodeLength characters
// drawn from the code alphabet.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(codeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}

// GenerateCode returns a uniformly random room code. Rejection sampling
// avoids modulo bias across the 35-character alphabet.
func GenerateCode() string {
	const maxUnbiased = 245 // largest multiple of 35 that fits in a byte (35*7)

	code := make([]byte, CodeLength)
	buf := make([]byte, 2*CodeLength)
	for i := 0; i < CodeLength; {
		_, _ = crand.Read(buf)
		for _, b := range buf {
			if i >= CodeLength {
				break
			}
			if b < maxUnbiased {
				code[i] = codeAlphabet[b%byte(len(codeAlphabet))]
				i++
			}
		}
	}
	return string(code)
}
