package vcard

import (
	"encoding/base64"
	"strings"
)

// Escape character sets for EncodeEscapes. The RFC set is what vCard 3.0
// requires; the Outlook set omits the comma because some consumers
// mishandle escaped commas.
const (
	EscapeSetRFC     = ",;\\\r\n"
	EscapeSetOutlook = ";\\\r\n"
)

// DecodeEscapes expands backslash escape sequences in a vCard text value.
// Recognized sequences are \\ \, \; \n \N \r \R. An unrecognized escape
// is passed through literally, backslash included, and a lone trailing
// backslash is copied verbatim; malformed input never fails.
func DecodeEscapes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			sb.WriteByte('\\')
			break
		}
		i++
		switch next := s[i]; next {
		case '\\', ',', ';':
			sb.WriteByte(next)
		case 'n', 'N':
			sb.WriteByte('\n')
		case 'r', 'R':
			sb.WriteByte('\r')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(next)
		}
	}
	return sb.String()
}

// EncodeEscapes backslash-escapes every character of s that appears in
// set, writing LF and CR as \n and \r and any other set character as
// itself.
func EncodeEscapes(s, set string) string {
	if !strings.ContainsAny(s, set) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(set, c) < 0 {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('\\')
		switch c {
		case '\n':
			sb.WriteByte('n')
		case '\r':
			sb.WriteByte('r')
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// DecodeBase64 decodes standard base64 text to raw bytes.
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}

// EncodeBase64 encodes raw bytes as standard base64 text.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// hexDigit decodes one hexadecimal digit character. The second return
// value reports whether c was a hex digit.
func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}
