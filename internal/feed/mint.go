package feed

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// mintByteLen is the decoded length of a Solana mint address.
const mintByteLen = 32

// ValidateMint checks that s decodes as a 32-byte base58 address.
func ValidateMint(s string) error {
	decoded, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("decode mint %q: %w", s, err)
	}
	if len(decoded) != mintByteLen {
		return fmt.Errorf("mint %q: decoded to %d bytes, want %d", s, len(decoded), mintByteLen)
	}
	return nil
}

// ExtractMint pulls a mint address out of an axiom.trade URL, or returns the
// input unchanged when it is not such a URL. Query strings are stripped.
func ExtractMint(input string) (string, error) {
	candidate := input
	if strings.Contains(input, "axiom.trade") {
		parts := strings.Split(strings.TrimRight(input, "/"), "/")
		candidate = parts[len(parts)-1]
		if i := strings.IndexByte(candidate, '?'); i >= 0 {
			candidate = candidate[:i]
		}
	}
	if candidate == "" {
		return "", fmt.Errorf("no mint in %q", input)
	}
	if err := ValidateMint(candidate); err != nil {
		return "", err
	}
	return candidate, nil
}
