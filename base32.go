package tupw

import (
	"strings"
)

// base32Alphabet is the fixed 32-character alphabet used by format-6 tokens
// (spec §4.8, C8). It is z-base-32 (Zooko's human-oriented base32 variant),
// frozen here as the canonical table: no reference token corpus survived
// prefiltering to extract a bit-compatible alphabet from (see SPEC_FULL.md
// §5), so this package picks one well-known, unambiguous 32-character
// alphabet and documents it as the contract. Changing this string is a
// format change — every byte position is load-bearing.
const base32Alphabet = "ybndrfg8ejkmcpqxot1uwisza345h769"

const base32PadChar = '='

// base32CharToValue maps each alphabet character to its 5-bit value; built
// once at package load.
var base32CharToValue = func() map[byte]byte {
	m := make(map[byte]byte, len(base32Alphabet))
	for i := 0; i < len(base32Alphabet); i++ {
		m[base32Alphabet[i]] = byte(i)
	}
	return m
}()

// base32SignificantCharsForBlockLen maps an input block length (1-5 bytes)
// to the number of non-pad output characters it produces.
var base32SignificantCharsForBlockLen = map[int]int{1: 2, 2: 4, 3: 5, 4: 7, 5: 8}

// base32BlockLenForSignificantChars is the inverse of the table above, used
// while decoding to recover how many bytes a group represents.
var base32BlockLenForSignificantChars = map[int]int{2: 1, 4: 2, 5: 3, 7: 4, 8: 5}

// base32Encode encodes data using the custom alphabet above, grouping input
// into 5-byte blocks that each produce exactly 8 output characters
// (short final blocks are padded with '=').
func base32Encode(data []byte) string {
	var sb strings.Builder
	sb.Grow(((len(data) + 4) / 5) * 8)

	for i := 0; i < len(data); i += 5 {
		end := i + 5
		if end > len(data) {
			end = len(data)
		}
		sb.WriteString(base32EncodeBlock(data[i:end]))
	}
	return sb.String()
}

func base32EncodeBlock(block []byte) string {
	var padded [5]byte
	copy(padded[:], block)

	var bits uint64
	for _, b := range padded {
		bits = bits<<8 | uint64(b)
	}

	sig := base32SignificantCharsForBlockLen[len(block)]
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		shift := uint(35 - i*5)
		out[i] = base32Alphabet[(bits>>shift)&0x1F]
	}
	for i := sig; i < 8; i++ {
		out[i] = base32PadChar
	}
	return string(out)
}

// base32Decode inverts base32Encode. It is strict: only exact-case alphabet
// characters and a correctly-placed run of trailing pad characters are
// accepted. Whitespace, case folding, and any character outside the
// alphabet are decoding errors.
func base32Decode(s string) ([]byte, error) {
	if len(s)%8 != 0 {
		return nil, NewFormatError("base32: input length must be a multiple of 8", nil)
	}

	out := make([]byte, 0, (len(s)/8)*5)
	for i := 0; i < len(s); i += 8 {
		block, err := base32DecodeGroup(s[i : i+8])
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
	}
	return out, nil
}

func base32DecodeGroup(group string) ([]byte, error) {
	sig := 8
	for sig > 0 && group[sig-1] == base32PadChar {
		sig--
	}

	nBytes, ok := base32BlockLenForSignificantChars[sig]
	if !ok {
		return nil, NewFormatError("base32: invalid padding length", nil)
	}

	var bits uint64
	for i := 0; i < 8; i++ {
		ch := group[i]
		var v byte
		if i >= sig {
			if ch != base32PadChar {
				return nil, NewFormatError("base32: data found after padding", nil)
			}
		} else {
			val, ok := base32CharToValue[ch]
			if !ok {
				return nil, NewFormatError("base32: character outside the alphabet", nil)
			}
			v = val
		}
		bits = bits<<5 | uint64(v)
	}

	buf := make([]byte, 5)
	for i := 0; i < 5; i++ {
		buf[i] = byte(bits >> uint(8*(4-i)))
	}
	return buf[:nBytes], nil
}
