// Package tupw protects short textual secrets — passwords, API tokens, and
// other credential-like strings — at rest and in transit between
// configuration-management and consuming systems.
//
// # Overview
//
// A Protector turns a clear string plus a caller-supplied "subject" label
// into a self-describing encoded token, and inverts that token back to the
// clear string when given the same key material and subject. A mismatched
// subject, tampered token, or altered key material is detected before any
// plaintext is returned.
//
// # Basic usage
//
//	p, err := tupw.New(hmacKey, tupw.WithKeyFile("/etc/myapp/keyfile.bin"))
//	if err != nil {
//	    panic(err)
//	}
//	defer p.Close()
//
//	token, err := p.EncryptData([]byte("s3cr3t-api-token"), "db_password")
//	if err != nil {
//	    panic(err)
//	}
//
//	clear, err := p.DecryptData(token, "db_password")
//	if err != nil {
//	    panic(err) // wrong subject, tampered token, or wrong key material
//	}
//
// # Token format
//
// Tokens are UTF-8 strings of the form "V$IV$CT$MAC", where V is a decimal
// format identifier. Formats 1 and 2 are retired and rejected outright;
// formats 3-5 use standard Base64 and are accepted for decoding only; format
// 6 is the only format this package emits, and uses a compact custom Base32
// alphabet (see base32.go) together with AES-256-CTR and HMAC-SHA256.
//
// # Key material
//
// Construction takes two independent secrets: an HMAC key (14-32 bytes,
// supplied directly by the caller) and a key file (read once, hashed, and
// discarded — never stored). The key file must contain at least 100,000
// bytes; its entropy, not the HMAC key's, is what makes the derived master
// fingerprint hard to guess. Four independent sub-keys (encryption, HMAC,
// obfuscation mask, IV seed) are derived per call from the master
// fingerprint and the caller's subject string, so the same key material
// produces unrelated sub-keys for different subjects.
//
// # What this protects against
//
// Authenticated: any single-bit change to the token, a mismatched subject,
// or an altered key file causes decryption to fail closed with a checksum
// error — never a wrong plaintext. Obfuscated: token length is blinded with
// random prefix/postfix bytes and arbitrary tail padding, so two encryptions
// of the same short secret do not produce tokens of a predictable length.
// Zeroized: secret buffers (keys, masks, intermediate plaintext) are
// overwritten with zeros as soon as they are no longer needed, and a closed
// Protector refuses to produce plaintext.
//
// # What this does not protect against
//
// Key file generation and distribution (the file is external input), key
// rotation automation (replace the file and re-encrypt), payloads beyond the
// package's size ceiling (~50MB input), and anything happening after a
// caller has a decrypted []byte in hand — memory dumps of a live process,
// compromised hosts, and side channels are out of scope.
package tupw
