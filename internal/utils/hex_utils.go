// Package utils provides common utility functions.
package utils

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HexToBytes decodes a 0x-prefixed hex string (e.g., "0x1a00") into bytes.
// "0x" alone decodes to an empty slice.
func HexToBytes(hexStr string) ([]byte, error) {
	trimmed := strings.TrimSpace(hexStr)
	if !strings.HasPrefix(trimmed, "0x") && !strings.HasPrefix(trimmed, "0X") {
		return nil, fmt.Errorf("hex string '%s' is missing 0x prefix", hexStr)
	}
	b, err := hex.DecodeString(trimmed[2:])
	if err != nil {
		return nil, fmt.Errorf("invalid hex string '%s': %w", hexStr, err)
	}
	return b, nil
}

// BytesToHex encodes bytes as a lowercase 0x-prefixed hex string.
func BytesToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
