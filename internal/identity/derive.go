// Package identity derives stable user identifiers from console identities.
package identity

import (
	"crypto/sha1" //nolint:gosec // identifiers, not secrets
	"strings"

	"github.com/google/uuid"
)

// Derive maps a string (console id, normalized ticket) to a version-5 style
// UUID: the SHA-1 of the raw string with no namespace, version and variant
// bits set.
func Derive(name string) uuid.UUID {
	sum := sha1.Sum([]byte(name)) //nolint:gosec
	var b [16]byte
	copy(b[:], sum[:16])
	b[6] = (b[6] & 0x0f) | 0x50
	b[8] = (b[8] & 0x3f) | 0x80
	id, _ := uuid.FromBytes(b[:])
	return id
}

// DeriveString is Derive rendered in canonical lower-case form.
func DeriveString(name string) string {
	return Derive(name).String()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}
