package tupw

import (
	"errors"
	"os"
	"sync"
)

// Protector is the public entry point (spec §4.12, C12): construct one with
// New, then call EncryptData/DecryptData as many times as needed, and Close
// it when done. A Protector is safe for concurrent use.
type Protector struct {
	mu     sync.Mutex
	engine *engine
	closed bool
}

// config accumulates options passed to New before the master fingerprint is
// computed.
type config struct {
	blobs [][]byte
}

// Option configures New. See WithKeyFile and WithKeyBlobs.
type Option func(*config) error

// WithKeyFile adds the contents of the file at path as a key-file source
// blob. The file is read once, during New, and its buffer is zeroized
// immediately after the master fingerprint is computed — it is never
// retained. May be supplied more than once to combine several files' worth
// of entropy.
func WithKeyFile(path string) Option {
	return func(c *config) error {
		data, err := readKeyFile(path)
		if err != nil {
			return err
		}
		c.blobs = append(c.blobs, data)
		return nil
	}
}

// WithKeyBlobs adds one or more in-memory byte slices as key-file source
// blobs, for callers that already hold key material in memory (e.g. fetched
// from a secrets manager) rather than on disk. New takes ownership of each
// blob and zeroizes it once the master fingerprint is computed.
func WithKeyBlobs(blobs ...[]byte) Option {
	return func(c *config) error {
		c.blobs = append(c.blobs, blobs...)
		return nil
	}
}

// New constructs a Protector from an HMAC key (14-32 bytes) and one or more
// key-file source blobs supplied via WithKeyFile/WithKeyBlobs. The combined
// blobs must total at least 100,000 bytes (spec §3/§6).
func New(hmacKey []byte, opts ...Option) (*Protector, error) {
	cfg := &config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			for _, b := range cfg.blobs {
				zeroize(b)
			}
			return nil, err
		}
	}

	fingerprint, err := digestMasterFingerprint(hmacKey, cfg.blobs)
	for _, b := range cfg.blobs {
		zeroize(b)
	}
	if err != nil {
		return nil, err
	}

	eng, err := newEngine(fingerprint)
	if err != nil {
		return nil, err
	}
	return &Protector{engine: eng}, nil
}

// EncryptData encrypts plain, binding the result to subject. subject must be
// supplied again, unchanged, to DecryptData. plain may be at most 50 MiB long;
// longer input fails with a ValidationError.
func (p *Protector) EncryptData(plain []byte, subject string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", &LifecycleError{Resource: "Protector"}
	}

	const maxPlainDataLength = 50 << 20
	if len(plain) > maxPlainDataLength {
		return "", NewValidationError("plain", len(plain), "plain data is longer than 50 MiB")
	}

	chars, err := utf8ToChars(plain)
	if err != nil {
		return "", err
	}
	defer zeroizeRunes(chars)

	return p.engine.encrypt(chars, subject)
}

// DecryptData inverts EncryptData. Returns an AuthenticationError if subject
// does not match the one the token was encrypted with, if the token was
// tampered with, or if the key material differs from what produced it.
func (p *Protector) DecryptData(token string, subject string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, &LifecycleError{Resource: "Protector"}
	}

	chars, err := p.engine.decrypt(token, subject)
	if err != nil {
		return nil, err
	}
	defer zeroizeRunes(chars)

	return charsToUTF8(chars), nil
}

// Close releases the Protector's key material. Idempotent; further calls to
// EncryptData/DecryptData after Close fail with a LifecycleError.
func (p *Protector) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.engine.close()
	p.closed = true
	return nil
}

func zeroizeRunes(chars []rune) {
	for i := range chars {
		chars[i] = 0
	}
}

// readKeyFile reads path in full, distinguishing "does not exist" from other
// I/O failures for the resulting error's message (spec §6).
func readKeyFile(path string) ([]byte, error) {
	if path == "" {
		return nil, ErrKeyFilePathNil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewKeyFilePathError(path, errKeyFileMissing)
		}
		return nil, NewKeyFilePathError(path, err)
	}
	return data, nil
}
