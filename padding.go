package tupw

// maxPaddingLength is the hard ceiling spec §4.6 places on both the minimum
// and maximum pad-count arguments.
const maxPaddingLength = 10000

// addPadding appends between min and max (inclusive, uniformly chosen)
// copies of a single random pad byte distinct from data's own last byte
// (spec §4.6, C6). Empty input is returned unchanged: there is no last byte
// to avoid, so the caller must blind an empty payload (C7) before padding.
func addPadding(data []byte, min, max int) ([]byte, error) {
	if min < 0 || max < min || max > maxPaddingLength {
		return nil, NewValidationError("min/max", [2]int{min, max}, "padding bounds must satisfy 0 <= min <= max <= 10000")
	}
	if len(data) == 0 {
		return data, nil
	}

	padByte := randomByteExcluding(data[len(data)-1])
	count := min + secureRandom.intn(max-min+1)

	out := make([]byte, len(data)+count)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = padByte
	}
	return out, nil
}

// removePadding scans padded from the end, finds the longest maximal run of
// the final byte, and truncates it. If the whole buffer is one repeated
// byte, the result is empty.
func removePadding(padded []byte) []byte {
	if len(padded) == 0 {
		return padded
	}
	last := padded[len(padded)-1]
	i := len(padded)
	for i > 0 && padded[i-1] == last {
		i--
	}
	return padded[:i]
}

// randomByteExcluding draws a uniform random byte from [0,255] that is not
// equal to avoid.
func randomByteExcluding(avoid byte) byte {
	for {
		b := byte(secureRandom.intn(256))
		if b != avoid {
			return b
		}
	}
}
