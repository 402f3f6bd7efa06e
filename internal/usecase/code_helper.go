package usecase

import (
	"crypto/rand"
	"io"
	"strings"
)

// generateRedemptionCode creates a secure, random, and human-readable
// redemption code. Format: XXXX-XXXX-XXXX
func generateRedemptionCode() (string, error) {
	// A character set that avoids ambiguous characters like O/0, I/1, l.
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLength = 12

	buffer := make([]byte, codeLength)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}

	for i := 0; i < codeLength; i++ {
		buffer[i] = chars[int(buffer[i])%len(chars)]
	}

	// Format as XXXX-XXXX-XXXX
	return string(buffer[0:4]) + "-" + string(buffer[4:8]) + "-" + string(buffer[8:12]), nil
}

// normalizeCode canonicalizes user input to the stored representation.
// Non-alphanumerics are stripped and the rest upper-cased; a bare 12-char
// entry (typed without hyphens) is re-hyphenated at positions 4 and 8.
// Anything else is passed through upper-cased so lookups on already-formatted
// or malformed input behave like an exact match.
func normalizeCode(raw string) string {
	trimmed := strings.TrimSpace(raw)
	var b strings.Builder
	for _, r := range trimmed {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	stripped := strings.ToUpper(b.String())
	if len(stripped) == 12 && !strings.Contains(trimmed, "-") {
		return stripped[0:4] + "-" + stripped[4:8] + "-" + stripped[8:12]
	}
	return strings.ToUpper(trimmed)
}
