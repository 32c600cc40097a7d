package tupw

import (
	"crypto/subtle"

	"golang.org/x/crypto/blake2b"
)

// protectedByteArray keeps a secret byte buffer XOR-masked in memory and
// zeroizes it on release (spec §4.2, C2). The mask is never stored or
// logged without also storing the masked data it protects; the only way to
// recover the plaintext is getData(), which returns a fresh, caller-owned
// copy.
type protectedByteArray struct {
	storage []byte // plaintext[i] = storage[i] XOR mask[i], for i < size
	mask    []byte
	size    int
	hash    [blake2b.Size256]byte
	closed  bool
}

// newProtectedByteArray takes ownership of src: its contents are copied into
// masked storage and src itself is zeroed before this function returns.
func newProtectedByteArray(src []byte) *protectedByteArray {
	return newProtectedByteArrayWithMaskSeed(src, nil)
}

// newProtectedByteArrayWithMaskSeed is newProtectedByteArray, but the mask is
// derived by replicating/truncating maskSeed to the storage length instead
// of drawing it fresh from the CSPRNG (spec §4.2 allows either; a nil or
// empty seed falls back to a fresh random mask). The engine uses this to
// seed transient plaintext buffers with the subject's obfuscation sub-key
// (spec §3's "mask (32 bytes used to shape the obfuscation of the protected
// array)"), so the in-memory masking of a given subject's intermediate
// plaintext is reproducibly tied to that subject's key material rather than
// only to process-wide randomness.
func newProtectedByteArrayWithMaskSeed(src []byte, maskSeed []byte) *protectedByteArray {
	length := len(src)
	storageLen := length
	if storageLen < 32 {
		storageLen = 32
	}

	p := &protectedByteArray{
		storage: make([]byte, storageLen),
		mask:    make([]byte, storageLen),
		size:    length,
	}
	if len(maskSeed) == 0 {
		secureRandom.fillBytes(p.mask)
	} else {
		for i := 0; i < storageLen; i++ {
			p.mask[i] = maskSeed[i%len(maskSeed)]
		}
	}

	copy(p.storage, src)
	for i := 0; i < storageLen; i++ {
		p.storage[i] ^= p.mask[i]
	}
	p.hash = blake2b.Sum256(src)

	zeroize(src)
	return p
}

// length returns the logical length of the protected data.
func (p *protectedByteArray) length() int {
	return p.size
}

// getData returns a fresh unmasked copy of the protected bytes. The caller
// is expected to zeroize it once done. Panics if the masked storage has been
// tampered with — a debug/attack signal, never a recoverable caller error.
func (p *protectedByteArray) getData() ([]byte, error) {
	if p.closed {
		return nil, &LifecycleError{Resource: "protected byte array"}
	}

	out := make([]byte, p.size)
	for i := 0; i < p.size; i++ {
		out[i] = p.storage[i] ^ p.mask[i]
	}

	if blake2b.Sum256(out) != p.hash {
		zeroize(out)
		panic("tupw: protected byte array failed its integrity check (masked storage was tampered with)")
	}

	return out, nil
}

// close zeroizes storage, mask and the recorded hash. Subsequent getData
// calls fail with a lifecycle error; length still reports the original size.
func (p *protectedByteArray) close() {
	if p.closed {
		return
	}
	zeroize(p.storage)
	zeroize(p.mask)
	for i := range p.hash {
		p.hash[i] = 0
	}
	p.closed = true
}

// zeroize overwrites buf with zero bytes in place. subtle.ConstantTimeCopy is
// not needed here (there's no secret-dependent branch to hide); a plain loop
// is the correct, non-optimized-away way to scrub a buffer the compiler can
// otherwise prove is dead.
func zeroize(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

// constantTimeEqual reports whether a and b are equal, in time independent
// of where they first differ. Used for every MAC comparison in the engine.
func constantTimeEqual(a, b []byte) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare(a, b) == 1
}
