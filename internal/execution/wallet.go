package execution

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

const walletByteLen = 32

// ValidateWalletAddress checks that addr is a well-formed Solana wallet
// public key: base58, 32 bytes, and a point on the ed25519 curve. Program
// derived addresses are off-curve and therefore rejected.
func ValidateWalletAddress(addr string) error {
	raw, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("wallet address %q: %w", addr, err)
	}
	if len(raw) != walletByteLen {
		return fmt.Errorf("wallet address %q: got %d bytes, want %d", addr, len(raw), walletByteLen)
	}
	if !isOnCurve(raw) {
		return fmt.Errorf("wallet address %q: not on ed25519 curve", addr)
	}
	return nil
}

// isOnCurve checks if a point lies on the ed25519 curve.
func isOnCurve(point []byte) bool {
	if len(point) != walletByteLen {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
