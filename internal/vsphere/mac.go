package vsphere

import (
	"strings"
)

// macLength is the number of hex digits in a 48-bit MAC address.
const macLength = 12

// NormalizeMAC canonicalizes a MAC address to lowercase, colon-separated
// form. Any separator style is accepted (colons, dashes, dots, spaces, or
// none); vCenter itself is inconsistent about casing, so all comparisons in
// this package go through this normalization first.
//
// An empty string, a string with no hex digits, or one with the wrong number
// of digits fails with an InvalidInputError.
func NormalizeMAC(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", &InvalidInputError{Input: input, Reason: "empty MAC address"}
	}

	var hex []byte
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		switch {
		case c >= '0' && c <= '9':
			hex = append(hex, c)
		case c >= 'a' && c <= 'f':
			hex = append(hex, c)
		case c >= 'A' && c <= 'F':
			hex = append(hex, c+'a'-'A')
		case c == ':' || c == '-' || c == '.' || c == ' ':
			// separator, skip
		default:
			return "", &InvalidInputError{Input: input, Reason: "contains non-hexadecimal characters"}
		}
	}

	if len(hex) != macLength {
		return "", &InvalidInputError{Input: input, Reason: "MAC address must contain exactly 12 hexadecimal digits"}
	}

	var b strings.Builder
	b.Grow(macLength + macLength/2 - 1)
	for i := 0; i < macLength; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.Write(hex[i : i+2])
	}
	return b.String(), nil
}
