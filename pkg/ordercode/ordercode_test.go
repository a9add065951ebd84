package ordercode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_Shape(t *testing.T) {
	g := New()

	for i := 0; i < 100; i++ {
		code, err := g.Next()
		require.NoError(t, err)
		assert.True(t, IsValid(code), "generated code %q should be valid", code)
	}
}

func TestNext_NoObviousCollisions(t *testing.T) {
	g := New()
	seen := make(map[string]bool, 10000)

	for i := 0; i < 10000; i++ {
		code, err := g.Next()
		require.NoError(t, err)
		require.False(t, seen[code], "duplicate code %s after %d draws", code, i)
		seen[code] = true
	}
}

func TestNext_UsesWholeAlphabet(t *testing.T) {
	// With rejection sampling every character is equally likely; over
	// 2000 codes (22000 characters) each of the 36 symbols is all but
	// guaranteed to appear.
	g := New()
	seen := make(map[byte]bool, len(alphabet))

	for i := 0; i < 2000; i++ {
		code, err := g.Next()
		require.NoError(t, err)
		for j := len(Prefix); j < len(code); j++ {
			seen[code[j]] = true
		}
	}

	for i := 0; i < len(alphabet); i++ {
		assert.True(t, seen[alphabet[i]], "character %q never generated", alphabet[i])
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"PTO-4F8ZK2M1Q0B", true},
		{"PTO-0123456789A", true},
		{"PTO-4f8zk2m1q0b", false}, // lowercase
		{"PTO-SHORT", false},
		{"ORD-4F8ZK2M1Q0B", false},
		{"PTO-4F8ZK2M1Q0BX", false}, // too long
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValid(tt.code), tt.code)
	}
}
