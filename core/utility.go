package core

import (
	"strings"
)

// SafeString null-terminates s for the C side of the API.
// Strings that already end with a null byte are returned as is.
func SafeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

// SafeStrings applies SafeString to every element. Returns nil for
// an empty list, so that no array is handed to the API.
func SafeStrings(sgs []string) []string {
	if len(sgs) == 0 {
		return nil
	}
	safe := make([]string, 0, len(sgs))
	for _, s := range sgs {
		safe = append(safe, SafeString(s))
	}
	return safe
}
