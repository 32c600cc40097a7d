package tupw

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
)

// Tunables for the padding/blinding pipeline (spec §4.11, §5 Open
// Questions). blindingMinimumLength is pinned to the ceiling blind() itself
// enforces, so every plaintext — including an empty one — is padded out to
// at least a fixed, length-hiding size before the variable-length random pad
// is appended on top of it.
const (
	blindingMinimumLength = 256
	paddingMinLength      = 16
	paddingMaxLength      = 128
)

// engine is the authenticated encryption engine (spec §4.11, C11): it turns
// a master fingerprint into tokens, and tokens back into plaintext, binding
// every operation to a caller-supplied subject string.
type engine struct {
	masterFingerprint *secretKey
}

// newEngine wraps an already-computed master fingerprint (see
// digestMasterFingerprint). It takes ownership of fingerprint, zeroing it.
func newEngine(fingerprint []byte) (*engine, error) {
	key, err := newSecretKey(fingerprint)
	if err != nil {
		return nil, err
	}
	return &engine{masterFingerprint: key}, nil
}

func (e *engine) close() {
	e.masterFingerprint.close()
}

// encrypt turns plainChars into a "6$iv$ct$mac" token bound to subject. It
// always emits formatCurrent; older formats are decode-only (spec §6).
func (e *engine) encrypt(plainChars []rune, subject string) (string, error) {
	mfp, err := e.masterFingerprint.bytes()
	if err != nil {
		return "", err
	}
	defer zeroize(mfp)

	keys, err := deriveSubKeys(mfp, []byte(subject))
	if err != nil {
		return "", err
	}
	defer keys.close()

	plain := charsToUTF8(plainChars)
	blinded, err := blind(plain, blindingMinimumLength)
	zeroize(plain)
	if err != nil {
		return "", err
	}

	padded, err := addPadding(blinded, paddingMinLength, paddingMaxLength)
	zeroize(blinded)
	if err != nil {
		return "", err
	}

	maskBytes, err := keys.mask.bytes()
	if err != nil {
		zeroize(padded)
		return "", err
	}
	defer zeroize(maskBytes)

	// Wrapping the fully-blinded-and-padded plaintext in a protected byte
	// array, masked with the subject's own obfuscation sub-key, ties the
	// in-memory obfuscation of this operation's intermediate plaintext to
	// the same subject binding used for the token the caller receives.
	protectedPlain := newProtectedByteArrayWithMaskSeed(padded, maskBytes)
	defer protectedPlain.close()

	plainForCipher, err := protectedPlain.getData()
	if err != nil {
		return "", err
	}
	defer zeroize(plainForCipher)

	block, err := e.blockCipher(keys)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aes.BlockSize)
	secureRandom.fillBytes(nonce)
	iv, err := e.combineIV(keys, nonce)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, len(plainForCipher))
	cipher.NewCTR(block, iv).XORKeyStream(ciphertext, plainForCipher)

	mac, err := e.computeMAC(keys, formatCurrent, nonce, ciphertext)
	if err != nil {
		return "", err
	}

	return formatToken(formatCurrent, nonce, ciphertext, mac), nil
}

// decrypt parses tok, verifies its MAC, and returns the plaintext runes it
// protects. Accepts tokens in any of formatSpecs (spec §4.11, §6).
func (e *engine) decrypt(tok string, subject string) ([]rune, error) {
	parsed, err := parseToken(tok)
	if err != nil {
		return nil, err
	}
	spec := formatSpecs[parsed.format]

	mfp, err := e.masterFingerprint.bytes()
	if err != nil {
		return nil, err
	}
	defer zeroize(mfp)

	effectiveSubject := []byte(subject)
	if !spec.subjectSupport {
		effectiveSubject = nil
	}

	keys, err := deriveSubKeys(mfp, effectiveSubject)
	if err != nil {
		return nil, err
	}
	defer keys.close()

	hmacBytes, err := keys.hmac.bytes()
	if err != nil {
		return nil, err
	}
	expectedMAC := hmacSum(hmacBytes, parsed.format, parsed.iv, parsed.ct)
	zeroize(hmacBytes)
	if !constantTimeEqual(expectedMAC, parsed.mac) {
		return nil, NewAuthenticationError(ErrChecksumMismatch)
	}

	block, err := e.blockCipher(keys)
	if err != nil {
		return nil, err
	}

	var padded []byte
	switch spec.mode {
	case modeCTR:
		iv, err := e.combineIV(keys, parsed.iv)
		if err != nil {
			return nil, err
		}
		padded = make([]byte, len(parsed.ct))
		cipher.NewCTR(block, iv).XORKeyStream(padded, parsed.ct)
	case modeCFB8:
		padded = decryptCFB8(block, parsed.iv, parsed.ct)
	default:
		return nil, NewFormatError("token: unsupported cipher mode", nil)
	}

	blinded := removePadding(padded)
	zeroize(padded)

	plain, err := unblind(blinded)
	zeroize(blinded)
	if err != nil {
		return nil, err
	}

	chars, err := utf8ToChars(plain)
	zeroize(plain)
	return chars, err
}

// blockCipher builds the AES block cipher for this operation's encryption
// sub-key.
func (e *engine) blockCipher(keys *subKeys) (cipher.Block, error) {
	encKey, err := keys.encryption.bytes()
	if err != nil {
		return nil, err
	}
	defer zeroize(encKey)
	return aes.NewCipher(encKey)
}

// combineIV reconstructs the actual cipher IV from the subject-derived IV
// seed and the transmitted (or freshly generated) nonce: iv[i] =
// ivSeed[i] XOR nonce[i]. A token's IV field is therefore useless without
// also knowing the subject it was bound to.
func (e *engine) combineIV(keys *subKeys, nonce []byte) ([]byte, error) {
	seed, err := keys.ivSeed.bytes()
	if err != nil {
		return nil, err
	}
	defer zeroize(seed)

	if len(nonce) != aes.BlockSize {
		return nil, NewCorruptionError("token: IV field has the wrong length", nil)
	}
	iv := make([]byte, aes.BlockSize)
	for i := range iv {
		iv[i] = seed[i] ^ nonce[i]
	}
	return iv, nil
}

// computeMAC authenticates the format id byte, IV and ciphertext together,
// so a token cannot be replayed under a different format id or have its IV
// swapped without detection.
func (e *engine) computeMAC(keys *subKeys, format formatID, iv, ciphertext []byte) ([]byte, error) {
	hmacKey, err := keys.hmac.bytes()
	if err != nil {
		return nil, err
	}
	defer zeroize(hmacKey)
	return hmacSum(hmacKey, format, iv, ciphertext), nil
}

func hmacSum(key []byte, format formatID, iv, ciphertext []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte{byte(format)})
	mac.Write(iv)
	mac.Write(ciphertext)
	return mac.Sum(nil)
}

// decryptCFB8 implements 8-bit CFB decryption (formatLegacyCFB only): the
// shift register starts at iv, each output byte is block.Encrypt(register)'s
// first byte XORed with the matching ciphertext byte, and the register then
// shifts left by one byte with that ciphertext byte appended. crypto/cipher
// has no CFB8 mode (its NewCFBDecrypter feeds back a full block), so this is
// written out by hand purely to decode tokens a legacy deployment produced.
func decryptCFB8(block cipher.Block, iv, ciphertext []byte) []byte {
	blockSize := block.BlockSize()
	reg := make([]byte, blockSize)
	copy(reg, iv)

	out := make([]byte, len(ciphertext))
	o := make([]byte, blockSize)
	for i, c := range ciphertext {
		block.Encrypt(o, reg)
		out[i] = c ^ o[0]
		copy(reg, reg[1:])
		reg[blockSize-1] = c
	}
	return out
}
