package tupw

import "strings"

// split divides s on every non-overlapping occurrence of sep, scanning left
// to right, and returns every part including empty ones in between (spec
// §4.13, C13). This differs from strings.Split in two edge cases the wire
// format depends on:
//
//   - split("", sep) returns an empty slice, not []string{""}.
//   - split(s, "") returns []string{s}: an empty separator never matches,
//     so the input is returned whole rather than split into runes.
func split(s, sep string) []string {
	if s == "" {
		return []string{}
	}
	if sep == "" {
		return []string{s}
	}

	var parts []string
	start := 0
	for {
		idx := strings.Index(s[start:], sep)
		if idx == -1 {
			parts = append(parts, s[start:])
			return parts
		}
		parts = append(parts, s[start:start+idx])
		start += idx + len(sep)
	}
}

// Split divides s on every occurrence of sep the same way the token parser
// does internally. Exported so callers building their own separator-delimited
// formats on top of this package can reuse the exact same edge-case
// behavior instead of reimplementing it against strings.Split.
func Split(s, sep string) []string {
	return split(s, sep)
}
