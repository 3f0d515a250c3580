package dom

import "unicode/utf16"

// Character data offsets count UTF-16 code units, as DOM offsets do.
// Splitting a surrogate pair leaves U+FFFD on both halves.

func utf16Length(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func toUTF16(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func fromUTF16(u []uint16) string {
	return string(utf16.Decode(u))
}

// utf16Slice returns the code units [start, end) of s. Callers validate
// the bounds.
func utf16Slice(s string, start, end int) string {
	return fromUTF16(toUTF16(s)[start:end])
}
