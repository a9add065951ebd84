// Package ordercode generates human-facing order codes.
//
// Codes look like PTO-4F8ZK2M1Q0B: a fixed prefix plus 11 random base36
// characters. Uniqueness is enforced by the database; callers retry on a
// duplicate-key error, which at 36^11 combinations is effectively never.
package ordercode

import (
	"crypto/rand"
	"fmt"
)

const (
	// Prefix identifies point orders.
	Prefix = "PTO-"

	// RandomLength is the number of base36 characters after the prefix.
	RandomLength = 11

	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Generator produces order codes.
type Generator struct{}

// New creates a code generator.
func New() *Generator {
	return &Generator{}
}

// Next returns a fresh order code.
// Bytes at or above the largest multiple of 36 below 256 are discarded
// (rejection sampling), so every alphabet character is equally likely.
func (g *Generator) Next() (string, error) {
	const limit = 252 // 7 * 36

	code := make([]byte, 0, RandomLength)
	buf := make([]byte, RandomLength)
	for len(code) < RandomLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			code = append(code, alphabet[int(b)%len(alphabet)])
			if len(code) == RandomLength {
				break
			}
		}
	}
	return Prefix + string(code), nil
}

// IsValid reports whether s has the order code shape.
func IsValid(s string) bool {
	if len(s) != len(Prefix)+RandomLength {
		return false
	}
	if s[:len(Prefix)] != Prefix {
		return false
	}
	for _, c := range s[len(Prefix):] {
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
