package rpc

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"acuity_offchain_worker/internal/core/domain"
	"acuity_offchain_worker/internal/utils"

	"github.com/cespare/xxhash/v2"
)

// u128Len is the SCALE encoded size of a u128.
const u128Len = 16

// Twox128 hashes data with two xxHash64 rounds (seeds 0 and 1), little-endian, as Substrate does for pallet and item prefixes.
func Twox128(data []byte) []byte {
	out := make([]byte, 0, 16)
	for seed := uint64(0); seed < 2; seed++ {
		h := xxhash.NewWithSeed(seed)
		_, _ = h.Write(data)
		out = binary.LittleEndian.AppendUint64(out, h.Sum64())
	}
	return out
}

// StorageKey builds the hex key of a plain storage value: twox128(pallet) ++ twox128(item).
func StorageKey(pallet, item string) string {
	key := append(Twox128([]byte(pallet)), Twox128([]byte(item))...)
	return utils.BytesToHex(key)
}

// decodeU128 decodes a SCALE (little-endian) u128.
func decodeU128(raw []byte) (*big.Int, error) {
	if len(raw) != u128Len {
		return nil, fmt.Errorf("%w: u128 needs %d bytes, got %d", domain.ErrInvalidStorageValue, u128Len, len(raw))
	}
	be := make([]byte, u128Len)
	for i, b := range raw {
		be[u128Len-1-i] = b
	}
	return new(big.Int).SetBytes(be), nil
}
