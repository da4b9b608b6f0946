package chain

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// TxHash returns a 0x-prefixed BLAKE3-256 digest over the given parts.
func TxHash(parts ...[]byte) string {
	h := blake3.New(32, nil)
	for _, p := range parts {
		h.Write(p)
	}
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// Address derives a 20-byte account address from seed.
func Address(seed []byte) string {
	sum := blake3.Sum256(seed)
	return "0x" + hex.EncodeToString(sum[:20])
}
