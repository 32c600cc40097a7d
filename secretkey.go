package tupw

// secretKey is a protected byte array specialized to symmetric key material
// (16, 24 or 32 bytes). It exists as a distinct type from
// protectedByteArray, not a type alias, so the AES/HMAC key-size invariant is
// checked once at construction instead of at every call site (spec §4.3, C3).
type secretKey struct {
	protected *protectedByteArray
}

// newSecretKey takes ownership of key (zeroing it) and wraps it as a
// secretKey. key must be 16, 24 or 32 bytes.
func newSecretKey(key []byte) (*secretKey, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, NewValidationError("key", len(key), "key length must be 16, 24 or 32 bytes")
	}
	return &secretKey{protected: newProtectedByteArray(key)}, nil
}

// bytes returns a fresh clone of the key material. The caller must zeroize
// it after use.
func (k *secretKey) bytes() ([]byte, error) {
	return k.protected.getData()
}

// close zeroes the underlying key material.
func (k *secretKey) close() {
	k.protected.close()
}
