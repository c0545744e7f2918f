package domain

import (
	"regexp"
	"strings"
)

// Custom-character handles may carry '-' and '.', but not as the first byte.
var handleRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,63}$`)

// NormalizeHandle lowercases a handle and strips a leading "@" so that
// "@Alice" and "alice" address the same wallet.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// ValidHandle reports whether a normalized handle can own a wallet.
// The treasury handle is reserved.
func ValidHandle(handle string) bool {
	return handle != TreasuryHandle && handleRe.MatchString(handle)
}
