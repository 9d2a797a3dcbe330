package utils

import (
	"testing"

	"github.com/cairn-systems/starkgo/core/felt"
)

// HexToFelt parses a test hex literal, failing the test on malformed input.
func HexToFelt(t testing.TB, hex string) *felt.Felt {
	t.Helper()
	f, err := new(felt.Felt).SetString(hex)
	if err != nil {
		t.Fatalf("cannot parse %q as felt: %v", hex, err)
	}
	return f
}
