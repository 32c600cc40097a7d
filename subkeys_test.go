package tupw

import (
	"bytes"
	"testing"
)

func TestDeriveSubKeysAreIndependent(t *testing.T) {
	mfp := bytes.Repeat([]byte{0x42}, 32)
	keys, err := deriveSubKeys(mfp, []byte("subject"))
	if err != nil {
		t.Fatalf("deriveSubKeys: %v", err)
	}
	defer keys.close()

	enc, err := keys.encryption.bytes()
	if err != nil {
		t.Fatalf("encryption.bytes(): %v", err)
	}
	hm, err := keys.hmac.bytes()
	if err != nil {
		t.Fatalf("hmac.bytes(): %v", err)
	}
	mask, err := keys.mask.bytes()
	if err != nil {
		t.Fatalf("mask.bytes(): %v", err)
	}
	iv, err := keys.ivSeed.bytes()
	if err != nil {
		t.Fatalf("ivSeed.bytes(): %v", err)
	}

	all := [][]byte{enc, hm, mask, iv}
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			if bytes.Equal(all[i], all[j]) {
				t.Errorf("sub-keys %d and %d are equal, want independent", i, j)
			}
		}
	}
}

func TestDeriveSubKeysBoundToSubject(t *testing.T) {
	mfp := bytes.Repeat([]byte{0x01}, 32)

	a, err := deriveSubKeys(mfp, []byte("alice"))
	if err != nil {
		t.Fatalf("deriveSubKeys: %v", err)
	}
	defer a.close()
	b, err := deriveSubKeys(mfp, []byte("bob"))
	if err != nil {
		t.Fatalf("deriveSubKeys: %v", err)
	}
	defer b.close()

	aEnc, _ := a.encryption.bytes()
	bEnc, _ := b.encryption.bytes()
	if bytes.Equal(aEnc, bEnc) {
		t.Error("different subjects produced the same encryption sub-key")
	}
}

func TestDeriveSubKeysDeterministic(t *testing.T) {
	mfp := bytes.Repeat([]byte{0x07}, 32)

	a, err := deriveSubKeys(mfp, []byte("same"))
	if err != nil {
		t.Fatalf("deriveSubKeys: %v", err)
	}
	defer a.close()
	b, err := deriveSubKeys(mfp, []byte("same"))
	if err != nil {
		t.Fatalf("deriveSubKeys: %v", err)
	}
	defer b.close()

	aEnc, _ := a.encryption.bytes()
	bEnc, _ := b.encryption.bytes()
	if !bytes.Equal(aEnc, bEnc) {
		t.Error("same master fingerprint + subject produced different encryption sub-keys")
	}
}
