package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SubmissionFingerprint hashes the parts of a report that make it the same
// submission: photo, description and area. Used to catch double submits.
//
// Hash input: photo || 0x00 || trimmed description || 0x00 || lower-cased trimmed area
func SubmissionFingerprint(photo, description, area string) string {
	h := sha256.New()
	h.Write([]byte(photo))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(description)))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(strings.TrimSpace(area))))
	return hex.EncodeToString(h.Sum(nil))
}
