package tupw

import (
	"crypto/hmac"
	"crypto/sha256"
)

// Label strings are part of the wire format (spec §4.10): any new
// implementation deriving sub-keys for an existing master fingerprint must
// reproduce these exact bytes.
const (
	labelEncryption  = "encryption"
	labelHMAC        = "hmac"
	labelObfuscation = "obfuscation"
	labelIV          = "iv"
)

// subKeys holds the four labelled 32-byte values derived from a master
// fingerprint and a subject (spec §4.10, C10). Each is independently
// zeroizable.
type subKeys struct {
	encryption *secretKey // 32 bytes, AES-256 key
	hmac       *secretKey // 32 bytes, HMAC-SHA256 key
	mask       *secretKey // 32 bytes, obfuscation mask
	ivSeed     *secretKey // 32 bytes; only the first 16 are used as IV seed
}

// deriveSubKeys computes subKeys for masterFingerprint and subject. Derivation
// runs on stack-local state only (spec §4.11/§5: "preferred" design), so
// concurrent callers sharing one engine never race.
func deriveSubKeys(masterFingerprint, subject []byte) (*subKeys, error) {
	encKey := hmacLabelled(masterFingerprint, labelEncryption, subject)
	hmacKey := hmacLabelled(masterFingerprint, labelHMAC, subject)
	maskKey := hmacLabelled(masterFingerprint, labelObfuscation, subject)
	ivKey := hmacLabelled(masterFingerprint, labelIV, subject)

	enc, err := newSecretKey(encKey)
	if err != nil {
		return nil, err
	}
	hm, err := newSecretKey(hmacKey)
	if err != nil {
		enc.close()
		return nil, err
	}
	mask, err := newSecretKey(maskKey)
	if err != nil {
		enc.close()
		hm.close()
		return nil, err
	}
	iv, err := newSecretKey(ivKey)
	if err != nil {
		enc.close()
		hm.close()
		mask.close()
		return nil, err
	}

	return &subKeys{encryption: enc, hmac: hm, mask: mask, ivSeed: iv}, nil
}

// hmacLabelled computes HMAC-SHA256(masterFingerprint, label || subject).
func hmacLabelled(masterFingerprint []byte, label string, subject []byte) []byte {
	mac := hmac.New(sha256.New, masterFingerprint)
	mac.Write([]byte(label))
	mac.Write(subject)
	return mac.Sum(nil)
}

// close zeroizes all four sub-keys.
func (k *subKeys) close() {
	k.encryption.close()
	k.hmac.close()
	k.mask.close()
	k.ivSeed.close()
}
