// Package idhash computes deterministic identifiers so re-logging the same
// event never produces a second row.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(mint|entry_time_ms|exit_time_ms|simulated)
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(mint string, entryTimeMs, exitTimeMs int64, simulated bool) string {
	data := fmt.Sprintf("%s|%d|%d|%t", mint, entryTimeMs, exitTimeMs, simulated)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
