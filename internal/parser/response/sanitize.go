package response

import "strings"

// StripThousandsSeparators removes every comma that sits directly between two
// ASCII digits ("74,900.00" -> "74900.00"). Other commas are left alone.
func StripThousandsSeparators(s string) string {
	if !strings.Contains(s, ",") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ',' && i > 0 && i+1 < len(s) && isDigit(s[i-1]) && isDigit(s[i+1]) {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// joinAdjacentObjects inserts the missing comma between top-level objects
// written back to back ("{A}{B}" -> "{A},{B}"). String contents are skipped.
func joinAdjacentObjects(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	depth := 0
	inString := false
	escaped := false
	closedObject := false // last significant top-level byte was '}'

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			if depth == 0 && c == '{' && closedObject {
				b.WriteByte(',')
			}
			depth++
		case '}', ']':
			if depth > 0 {
				depth--
			}
		}
		b.WriteByte(c)

		if depth == 0 && !isSpace(c) {
			closedObject = c == '}'
		}
	}
	return b.String()
}

// topLevelIndex returns the index of the first c outside any {...} block,
// or -1. Inside a block string contents are skipped; prose outside blocks
// is not treated as JSON, so stray quotes there are ignored.
func topLevelIndex(s string, c byte) int {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		b := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}

		switch {
		case depth == 0 && b == c:
			return i
		case b == '"' && depth > 0:
			inString = true
		case b == '{':
			depth++
		case b == '}' && depth > 0:
			depth--
		}
	}
	return -1
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
