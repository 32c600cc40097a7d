package tupw

// maxBlindingMinimumLength is the ceiling spec §4.7 places on the
// minimumLength argument to blind.
const maxBlindingMinimumLength = 256

// blind wraps source in a random prefix and postfix, recording source's
// length as a packed integer so unblind can find it again (spec §4.7, C7).
// Layout: [prefixLen(1)][postfixLen(1)][packedSourceLen(1-4)][prefix][source][postfix].
//
// If minimumLength is given and the natural combined length would be
// shorter, the deficit is split across the prefix and postfix so the total
// output is at least minimumLength bytes.
func blind(source []byte, minimumLength int) ([]byte, error) {
	if minimumLength < 0 || minimumLength > maxBlindingMinimumLength {
		return nil, NewValidationError("minimumLength", minimumLength, "blinding minimum length must be in [0, 256]")
	}

	packedLen, err := encodePackedUnsignedInteger(int64(len(source)))
	if err != nil {
		return nil, err
	}

	prefixLen := secureRandom.intn(16)
	postfixLen := secureRandom.intn(16)

	total := 2 + len(packedLen) + prefixLen + len(source) + postfixLen
	if total < minimumLength {
		diff := minimumLength - total
		half := diff / 2
		prefixLen += half
		postfixLen += half
		if diff%2 != 0 {
			if diff&2 != 0 {
				prefixLen++
			} else {
				postfixLen++
			}
		}
	}

	out := make([]byte, 2+len(packedLen)+prefixLen+len(source)+postfixLen)
	out[0] = byte(prefixLen)
	out[1] = byte(postfixLen)
	pos := 2
	pos += copy(out[pos:], packedLen)
	secureRandom.fillBytes(out[pos : pos+prefixLen])
	pos += prefixLen
	pos += copy(out[pos:], source)
	secureRandom.fillBytes(out[pos : pos+postfixLen])

	return out, nil
}

// unblind reverses blind, returning a fresh copy of the original source
// bytes. Fails with ErrInvalidBlindArray if the recorded lengths don't fit
// inside the buffer it was given.
func unblind(blinded []byte) ([]byte, error) {
	if len(blinded) < 2 {
		return nil, NewCorruptionError("Invalid blinded byte array", ErrInvalidBlindArray)
	}

	prefixLen := int(blinded[0])
	postfixLen := int(blinded[1])
	rest := blinded[2:]

	srcLen, consumed, err := decodePackedUnsignedInteger(rest)
	if err != nil {
		return nil, NewCorruptionError("Invalid blinded byte array", ErrInvalidBlindArray)
	}
	rest = rest[consumed:]

	if prefixLen+int(srcLen)+postfixLen > len(rest) {
		return nil, NewCorruptionError("Invalid blinded byte array", ErrInvalidBlindArray)
	}

	source := make([]byte, srcLen)
	copy(source, rest[prefixLen:prefixLen+int(srcLen)])
	return source, nil
}
