package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashString creates a SHA-256 hash of the input string
func HashString(input string) string {
	h := sha256.New()
	h.Write([]byte(input))
	return hex.EncodeToString(h.Sum(nil))
}

// ContactHash hashes a normalized email+phone pair so repeat
// submissions from the same contact can be spotted in the audit log
// without storing the raw values twice
func ContactHash(email, phone string) string {
	normEmail := strings.ToLower(strings.TrimSpace(email))
	normPhone := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	return HashString(normEmail + "|" + normPhone)
}
