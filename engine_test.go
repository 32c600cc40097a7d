package tupw

import (
	"bytes"
	"testing"
)

func testFingerprint(t *testing.T, fill byte) []byte {
	t.Helper()
	hmacKey := bytes.Repeat([]byte{fill}, 32)
	blobs := [][]byte{bigBlob(minKeyFileEntropy, fill ^ 0xFF)}
	fp, err := digestMasterFingerprint(hmacKey, blobs)
	if err != nil {
		t.Fatalf("digestMasterFingerprint: %v", err)
	}
	return fp
}

func newTestEngine(t *testing.T, fill byte) *engine {
	t.Helper()
	eng, err := newEngine(testFingerprint(t, fill))
	if err != nil {
		t.Fatalf("newEngine: %v", err)
	}
	return eng
}

func TestEngineEncryptDecryptRoundTrip(t *testing.T) {
	eng := newTestEngine(t, 0x5A)
	defer eng.close()

	tests := []string{
		"",
		"short",
		"This is a clear Text",
		"héllo wörld 🔐",
	}
	for _, s := range tests {
		token, err := eng.encrypt([]rune(s), "subject-a")
		if err != nil {
			t.Fatalf("encrypt(%q): %v", s, err)
		}

		chars, err := eng.decrypt(token, "subject-a")
		if err != nil {
			t.Fatalf("decrypt(%q): %v", s, err)
		}
		if string(chars) != s {
			t.Fatalf("round trip = %q, want %q", string(chars), s)
		}
	}
}

func TestEngineTokenFormatShape(t *testing.T) {
	eng := newTestEngine(t, 0x11)
	defer eng.close()

	token, err := eng.encrypt([]rune("hello"), "subject")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	parts := split(token, "$")
	if len(parts) != 4 {
		t.Fatalf("token has %d parts, want 4: %q", len(parts), token)
	}
	if parts[0] != "6" {
		t.Errorf("format part = %q, want %q", parts[0], "6")
	}
}

func TestEngineRejectsWrongSubject(t *testing.T) {
	eng := newTestEngine(t, 0x22)
	defer eng.close()

	token, err := eng.encrypt([]rune("secret"), "correct-subject")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := eng.decrypt(token, "wrong-subject"); !IsAuthenticationError(err) {
		t.Fatalf("decrypt with wrong subject: err = %v, want AuthenticationError", err)
	}
}

func TestEngineRejectsTamperedToken(t *testing.T) {
	eng := newTestEngine(t, 0x33)
	defer eng.close()

	token, err := eng.encrypt([]rune("secret"), "subject")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	parts := split(token, "$")
	// Flip the first character of the ciphertext field.
	ctChars := []rune(parts[2])
	if ctChars[0] == 'a' {
		ctChars[0] = 'b'
	} else {
		ctChars[0] = 'a'
	}
	parts[2] = string(ctChars)
	tampered := parts[0] + "$" + parts[1] + "$" + parts[2] + "$" + parts[3]

	if _, err := eng.decrypt(tampered, "subject"); !IsAuthenticationError(err) {
		t.Fatalf("decrypt tampered token: err = %v, want AuthenticationError", err)
	}
}

func TestEngineRejectsDifferentKeyMaterial(t *testing.T) {
	engA := newTestEngine(t, 0x44)
	defer engA.close()
	engB := newTestEngine(t, 0x55)
	defer engB.close()

	token, err := engA.encrypt([]rune("secret"), "subject")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := engB.decrypt(token, "subject"); !IsAuthenticationError(err) {
		t.Fatalf("decrypt under different key material: err = %v, want AuthenticationError", err)
	}
}

func TestEngineProducesDifferentTokensEachTime(t *testing.T) {
	eng := newTestEngine(t, 0x66)
	defer eng.close()

	a, err := eng.encrypt([]rune("same plaintext"), "subject")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	b, err := eng.encrypt([]rune("same plaintext"), "subject")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if a == b {
		t.Error("two encryptions of the same plaintext/subject produced identical tokens")
	}
}

func TestEngineDecryptCFB8Legacy(t *testing.T) {
	eng := newTestEngine(t, 0x77)
	defer eng.close()

	mfp, err := eng.masterFingerprint.bytes()
	if err != nil {
		t.Fatalf("masterFingerprint.bytes(): %v", err)
	}
	defer zeroize(mfp)

	keys, err := deriveSubKeys(mfp, nil)
	if err != nil {
		t.Fatalf("deriveSubKeys: %v", err)
	}
	defer keys.close()

	block, err := eng.blockCipher(keys)
	if err != nil {
		t.Fatalf("blockCipher: %v", err)
	}

	plain := []byte("legacy plaintext payload")
	blinded, err := blind(plain, blindingMinimumLength)
	if err != nil {
		t.Fatalf("blind: %v", err)
	}
	padded, err := addPadding(blinded, paddingMinLength, paddingMaxLength)
	if err != nil {
		t.Fatalf("addPadding: %v", err)
	}
	iv := bytes.Repeat([]byte{0x09}, 16)

	// Build a format-3 token by hand, the way a pre-format-6 deployment
	// would have: CFB8 cipher mode with no subject, but the same
	// blind/pad plaintext envelope every format shares.
	ct := make([]byte, len(padded))
	reg := append([]byte(nil), iv...)
	o := make([]byte, 16)
	for i, p := range padded {
		block.Encrypt(o, reg)
		c := p ^ o[0]
		ct[i] = c
		copy(reg, reg[1:])
		reg[15] = c
	}

	mac, err := eng.computeMAC(keys, formatLegacyCFB, iv, ct)
	if err != nil {
		t.Fatalf("computeMAC: %v", err)
	}

	token := formatToken(formatLegacyCFB, iv, ct, mac)
	got, err := eng.decrypt(token, "anything") // subject is ignored for format 3
	if err != nil {
		t.Fatalf("decrypt(format 3 token): %v", err)
	}
	if string(got) != string(plain) {
		t.Fatalf("decrypted = %q, want %q", string(got), string(plain))
	}
}
