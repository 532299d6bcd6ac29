package model

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// ExtractStringField recovers the value of a string field from a
// possibly-truncated JSON document. Structured-output streams arrive as
// raw JSON text; this lets the growing field value be forwarded before
// the document is complete.
//
// Returns false until the opening quote of the field value has arrived.
// A dangling escape at the cut point is held back rather than decoded.
func ExtractStringField(data, field string) (string, bool) {
	key := `"` + field + `"`
	i := strings.Index(data, key)
	if i < 0 {
		return "", false
	}

	rest := strings.TrimLeft(data[i+len(key):], " \t\r\n")
	if !strings.HasPrefix(rest, ":") {
		return "", false
	}
	rest = strings.TrimLeft(rest[1:], " \t\r\n")
	if !strings.HasPrefix(rest, `"`) {
		return "", false
	}
	rest = rest[1:]

	var b strings.Builder
	for j := 0; j < len(rest); j++ {
		c := rest[j]
		if c == '"' {
			break
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}

		// Escape sequence. Incomplete at the cut point means stop here;
		// the next chunk completes it.
		if j+1 >= len(rest) {
			break
		}
		j++
		switch rest[j] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '"', '\\', '/':
			b.WriteByte(rest[j])
		case 'u':
			r, consumed, ok := decodeUnicodeEscape(rest[j+1:])
			if !ok {
				// Truncated \uXXXX, wait for more input.
				return b.String(), true
			}
			b.WriteRune(r)
			j += consumed
		default:
			// Unknown escape, keep it verbatim.
			b.WriteByte('\\')
			b.WriteByte(rest[j])
		}
	}
	return b.String(), true
}

// decodeUnicodeEscape decodes the hex digits following "\u", handling
// surrogate pairs ("😀"). consumed counts bytes taken after
// the 'u'.
func decodeUnicodeEscape(s string) (r rune, consumed int, ok bool) {
	if len(s) < 4 {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(s[:4], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	r1 := rune(v)
	if !utf16.IsSurrogate(r1) {
		return r1, 4, true
	}

	// High surrogate needs its low pair.
	if len(s) < 10 || s[4] != '\\' || s[5] != 'u' {
		return 0, 0, false
	}
	v2, err := strconv.ParseUint(s[6:10], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	combined := utf16.DecodeRune(r1, rune(v2))
	if combined == '�' {
		return '�', 10, true
	}
	return combined, 10, true
}
