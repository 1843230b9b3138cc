// Package cmdutil provides shared helpers for recording commands in the
// run history.
package cmdutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Normalize normalizes a command line for comparison and deduplication in
// the history database. Paths, URLs and numbers become placeholders so
// repeated runs of the same recipe line collapse to one shape.
func Normalize(cmd string) string {
	parts := strings.Fields(strings.TrimSpace(cmd))
	if len(parts) == 0 {
		return ""
	}

	normalized := make([]string, 0, len(parts))
	normalized = append(normalized, parts[0])
	for _, part := range parts[1:] {
		switch {
		case strings.HasPrefix(part, "-"):
			normalized = append(normalized, part)
		case strings.HasPrefix(part, "/"), strings.HasPrefix(part, "~"):
			normalized = append(normalized, "<path>")
		case strings.Contains(part, "://"):
			normalized = append(normalized, "<url>")
		case isNumeric(part):
			normalized = append(normalized, "<num>")
		default:
			normalized = append(normalized, part)
		}
	}

	return strings.Join(normalized, " ")
}

// Hash returns the hex SHA256 of a normalized command string.
func Hash(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
