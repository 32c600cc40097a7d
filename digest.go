package tupw

import (
	"crypto/hmac"
	"crypto/sha256"
)

// minHMACKeyLen and maxHMACKeyLen bound the caller-supplied HMAC key (spec
// §6).
const (
	minHMACKeyLen = 14
	maxHMACKeyLen = 32
)

// minKeyFileEntropy is the minimum total length, across all concatenated
// key-file blobs, spec §3/§6 requires for acceptable entropy.
const minKeyFileEntropy = 100_000

// digestMasterFingerprint derives the 32-byte master fingerprint (spec
// §4.9, C9): HMAC-SHA256 keyed by hmacKey, over the concatenation of every
// blob in blobs, in order. Each blob must be non-nil; the combined length
// must reach minKeyFileEntropy.
func digestMasterFingerprint(hmacKey []byte, blobs [][]byte) ([]byte, error) {
	if hmacKey == nil {
		return nil, ErrHMACKeyNil
	}
	if len(hmacKey) < minHMACKeyLen {
		return nil, ErrHMACKeyTooShort
	}
	if len(hmacKey) > maxHMACKeyLen {
		return nil, ErrHMACKeyTooLong
	}

	total := 0
	for i, blob := range blobs {
		if blob == nil {
			return nil, NewSourceBlobError(i + 1)
		}
		total += len(blob)
	}
	if total < minKeyFileEntropy {
		return nil, ErrNotEnoughEntropy
	}

	mac := hmac.New(sha256.New, hmacKey)
	for _, blob := range blobs {
		mac.Write(blob)
	}
	return mac.Sum(nil), nil
}
