package tupw

import (
	"encoding/base64"
	"strconv"
)

// formatID identifies a token's codec, cipher mode, and whether a subject is
// supported (spec §6). The façade only ever emits formatCurrent; the others
// exist purely so this package can decode tokens written by an older
// deployment.
type formatID int

const (
	formatRetiredV1 formatID = 1
	formatRetiredV2 formatID = 2
	formatLegacyCFB formatID = 3
	formatCTRBase64A formatID = 4
	formatCTRBase64B formatID = 5
	formatCurrent    formatID = 6
)

// cipherMode selects the block cipher mode a formatID uses.
type cipherMode int

const (
	modeCFB8 cipherMode = iota
	modeCTR
)

// formatSpec describes how to decode (and, for formatCurrent, encode) a
// token of a given formatID.
type formatSpec struct {
	mode           cipherMode
	subjectSupport bool
	encode         func([]byte) string
	decode         func(string) ([]byte, error)
}

var formatSpecs = map[formatID]formatSpec{
	formatLegacyCFB: {
		mode:           modeCFB8,
		subjectSupport: false,
		encode:         base64.StdEncoding.EncodeToString,
		decode:         base64.StdEncoding.DecodeString,
	},
	formatCTRBase64A: {
		mode:           modeCTR,
		subjectSupport: true,
		encode:         base64.StdEncoding.EncodeToString,
		decode:         base64.StdEncoding.DecodeString,
	},
	formatCTRBase64B: {
		mode:           modeCTR,
		subjectSupport: true,
		encode:         base64.StdEncoding.EncodeToString,
		decode:         base64.StdEncoding.DecodeString,
	},
	formatCurrent: {
		mode:           modeCTR,
		subjectSupport: true,
		encode:         base32Encode,
		decode:         base32Decode,
	},
}

// token is the parsed form of a "V$IV$CT$MAC" string (spec §3/§6).
type token struct {
	format formatID
	iv     []byte
	ct     []byte
	mac    []byte
}

// formatToken renders a token back into its "V$IV$CT$MAC" wire form.
func formatToken(format formatID, iv, ct, mac []byte) string {
	spec := formatSpecs[format]
	return strconv.Itoa(int(format)) + "$" + spec.encode(iv) + "$" + spec.encode(ct) + "$" + spec.encode(mac)
}

// parseToken splits and decodes a token string, validating the format id and
// the `$`-delimited part count before touching any field (spec §4.11 step
// 1-3).
func parseToken(s string) (*token, error) {
	parts := split(s, "$")
	if len(parts) != 4 {
		return nil, ErrWrongPartCount
	}

	formatNum, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, ErrInvalidFormatID
	}

	spec, ok := formatSpecs[formatID(formatNum)]
	if !ok {
		return nil, ErrUnknownFormatID
	}

	iv, err := spec.decode(parts[1])
	if err != nil {
		return nil, NewFormatError("token: malformed IV field", err)
	}
	ct, err := spec.decode(parts[2])
	if err != nil {
		return nil, NewFormatError("token: malformed ciphertext field", err)
	}
	mac, err := spec.decode(parts[3])
	if err != nil {
		return nil, NewFormatError("token: malformed MAC field", err)
	}

	return &token{format: formatID(formatNum), iv: iv, ct: ct, mac: mac}, nil
}
