package tupw

import "testing"

func TestFormatTokenParseTokenRoundTrip(t *testing.T) {
	iv := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	ct := []byte("ciphertext-bytes-here")
	mac := []byte("0123456789abcdef0123456789abcdef")

	s := formatToken(formatCurrent, iv, ct, mac)
	parsed, err := parseToken(s)
	if err != nil {
		t.Fatalf("parseToken(%q): %v", s, err)
	}
	if parsed.format != formatCurrent {
		t.Errorf("format = %d, want %d", parsed.format, formatCurrent)
	}
	if string(parsed.iv) != string(iv) {
		t.Errorf("iv = %v, want %v", parsed.iv, iv)
	}
	if string(parsed.ct) != string(ct) {
		t.Errorf("ct = %v, want %v", parsed.ct, ct)
	}
	if string(parsed.mac) != string(mac) {
		t.Errorf("mac = %v, want %v", parsed.mac, mac)
	}
}

func TestParseTokenWrongPartCount(t *testing.T) {
	tests := []string{
		"",
		"6$AA$BB",
		"6$AA$BB$CC$DD",
		"nodollarsatall",
	}
	for _, s := range tests {
		if _, err := parseToken(s); err != ErrWrongPartCount {
			t.Errorf("parseToken(%q): err = %v, want %v", s, err, ErrWrongPartCount)
		}
	}
}

func TestParseTokenInvalidFormatID(t *testing.T) {
	if _, err := parseToken("abc$AA$BB$CC"); err != ErrInvalidFormatID {
		t.Errorf("err = %v, want %v", err, ErrInvalidFormatID)
	}
}

func TestParseTokenUnknownFormatID(t *testing.T) {
	tests := []string{"0$AA$BB$CC", "1$AA$BB$CC", "2$AA$BB$CC", "7$AA$BB$CC", "99$AA$BB$CC"}
	for _, s := range tests {
		if _, err := parseToken(s); err != ErrUnknownFormatID {
			t.Errorf("parseToken(%q): err = %v, want %v", s, err, ErrUnknownFormatID)
		}
	}
}

func TestParseTokenMalformedField(t *testing.T) {
	// formatCurrent decodes with base32, which requires a length that's a
	// multiple of 8.
	if _, err := parseToken("6$abc$BB$CC"); err == nil {
		t.Error("parseToken with malformed base32 field: want error, got nil")
	} else if !IsFormatError(err) {
		t.Errorf("want FormatError, got %T", err)
	}
}
