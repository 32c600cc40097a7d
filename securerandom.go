package tupw

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/chacha20"
)

// secureRandom is the process-wide CSPRNG source used for every
// cryptographically relevant random choice: IVs, blinding prefixes/postfixes,
// padding bytes and padding lengths (spec §4.1). It is selected once, at
// package load, the same "probe at init, panic on failure" discipline as
// other_examples/44ec7c49_sixafter-nanoid__x-crypto-ctrdrbg-aes_ctr_drbg.go.go —
// a process that cannot obtain a secure entropy source must fail loudly, not
// silently fall back to a weak one.
var secureRandom randomSource = newSystemRandomSource()

// randomSource is the capability the rest of the package consumes. It never
// blocks once constructed, matching spec §4.1 and §5.
type randomSource interface {
	// fillBytes fills buf with cryptographically secure random bytes.
	fillBytes(buf []byte)
	// intn returns a uniform random int in [0, n). Panics if n <= 0.
	intn(n int) int
}

// systemRandomSource prefers the OS-backed CSPRNG (crypto/rand) for every
// read. It keeps a ChaCha20-backed fallback keystream, reseeded from
// crypto/rand, that only activates if the primary source ever reports an
// error — which in practice means the process is in a state where blocking
// retries would be worse than a documented, independently-keyed fallback.
type systemRandomSource struct {
	mu       sync.Mutex
	fallback *chacha20.Cipher
	zeros    []byte
}

func newSystemRandomSource() *systemRandomSource {
	s := &systemRandomSource{zeros: make([]byte, 4096)}
	probe := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, probe); err != nil {
		panic(fmt.Sprintf("tupw: no secure entropy source available at startup: %v", err))
	}
	s.reseed()
	return s
}

// reseed rebuilds the fallback keystream from fresh OS entropy. Called once
// at construction and again whenever the primary source fails.
func (s *systemRandomSource) reseed() {
	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		panic(fmt.Sprintf("tupw: failed to reseed fallback random source: %v", err))
	}
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		panic(fmt.Sprintf("tupw: failed to reseed fallback random source: %v", err))
	}
	cipher, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		panic(fmt.Sprintf("tupw: failed to construct fallback random source: %v", err))
	}
	s.fallback = cipher
}

func (s *systemRandomSource) fillBytes(buf []byte) {
	if len(buf) == 0 {
		return
	}
	if _, err := io.ReadFull(rand.Reader, buf); err == nil {
		return
	}

	// Primary source failed: fall back to the reseeded ChaCha20 keystream,
	// XORed over zero bytes to produce a pseudo-random stream independent of
	// the payload cipher's own keystream.
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reseed()
	for off := 0; off < len(buf); off += len(s.zeros) {
		end := off + len(s.zeros)
		if end > len(buf) {
			end = len(buf)
		}
		s.fallback.XORKeyStream(buf[off:end], s.zeros[:end-off])
	}
}

// intn returns a uniform random value in [0, n) using rejection sampling to
// avoid modulo bias.
func (s *systemRandomSource) intn(n int) int {
	if n <= 0 {
		panic("tupw: intn requires n > 0")
	}
	if n == 1 {
		return 0
	}

	// Smallest power-of-two-aligned byte width covering n, then reject
	// values that would bias the result.
	width := 1
	for (1 << (8 * width)) < n {
		width++
	}
	limit := uint64(1) << (8 * width)
	bound := limit - (limit % uint64(n))

	buf := make([]byte, width)
	for {
		s.fillBytes(buf)
		var v uint64
		for _, b := range buf {
			v = v<<8 | uint64(b)
		}
		if v < bound {
			return int(v % uint64(n))
		}
	}
}
