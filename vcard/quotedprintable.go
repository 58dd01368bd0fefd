package vcard

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// qpState is the state of the Quoted-Printable decoder.
type qpState int

const (
	// qpNone: not inside an escape sequence.
	qpNone qpState = iota
	// qpExpectHex1: saw '=', waiting for the first hex digit.
	qpExpectHex1
	// qpExpectHex2: saw '=' and one hex digit, waiting for the second.
	qpExpectHex2
	// qpExpectLineFeed: saw '=' CR, waiting for the LF that completes a
	// soft line break.
	qpExpectLineFeed
)

// qpDecoder is the Quoted-Printable decoding state machine. It consumes
// one input byte at a time and is total over its input: malformed escape
// sequences degrade to literal passthrough instead of erroring, which is
// deliberate acceptance of real-world malformed vCards.
type qpDecoder struct {
	state qpState
	hex1  byte // first hex character after '=', kept verbatim for passthrough
	out   bytes.Buffer
}

// feed advances the state machine by one input byte.
func (d *qpDecoder) feed(c byte) {
	switch d.state {
	case qpNone:
		if c == '=' {
			d.state = qpExpectHex1
			return
		}
		d.out.WriteByte(c)

	case qpExpectHex1:
		switch {
		case c == '\r':
			d.state = qpExpectLineFeed
		case c == '=':
			// Unexpected '=' starts a fresh escape; the first one was
			// literal.
			d.out.WriteByte('=')
		default:
			if _, ok := hexDigit(c); ok {
				d.hex1 = c
				d.state = qpExpectHex2
				return
			}
			d.out.WriteByte('=')
			d.out.WriteByte(c)
			d.state = qpNone
		}

	case qpExpectHex2:
		lo, ok := hexDigit(c)
		if ok {
			hi, _ := hexDigit(d.hex1)
			d.out.WriteByte(hi<<4 | lo)
		} else {
			d.out.WriteByte('=')
			d.out.WriteByte(d.hex1)
			d.out.WriteByte(c)
		}
		d.state = qpNone

	case qpExpectLineFeed:
		switch c {
		case '\n':
			// Soft line break completed, nothing emitted.
			d.state = qpNone
		case '=':
			// The LF never came; treat this as a new escape start.
			d.state = qpExpectHex1
		default:
			d.out.WriteByte(c)
			d.state = qpNone
		}
	}
}

// flush emits any partial pending sequence literally and returns the
// decoded bytes. No input data is ever lost.
func (d *qpDecoder) flush() []byte {
	switch d.state {
	case qpExpectHex1:
		d.out.WriteByte('=')
	case qpExpectHex2:
		d.out.WriteByte('=')
		d.out.WriteByte(d.hex1)
	case qpExpectLineFeed:
		d.out.WriteString("=\r")
	}
	d.state = qpNone
	return d.out.Bytes()
}

// DecodeQuotedPrintable decodes Quoted-Printable text and reinterprets the
// decoded byte sequence with the given character set. A nil charset means
// the bytes are used as-is (the UTF-8/ASCII fast path). The charset step
// runs once over the full decoded sequence, not per character.
func DecodeQuotedPrintable(s string, charset encoding.Encoding) string {
	var d qpDecoder
	for i := 0; i < len(s); i++ {
		d.feed(s[i])
	}
	decoded := d.flush()
	if charset == nil {
		return string(decoded)
	}
	converted, err := charset.NewDecoder().Bytes(decoded)
	if err != nil {
		// Lenient like the rest of the decoder: keep the raw bytes.
		return string(decoded)
	}
	return string(converted)
}

// EncodeQuotedPrintable encodes s as Quoted-Printable. TAB and the
// printable ASCII range pass through except '='; everything else becomes
// =XX with uppercase hex. Trailing whitespace is escaped as well so the
// value survives transports that trim line ends.
func EncodeQuotedPrintable(s string) string {
	// Everything after the last non-whitespace byte gets escaped.
	tail := len(s)
	for tail > 0 && (s[tail-1] == ' ' || s[tail-1] == '\t') {
		tail--
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if i < tail && (c == '\t' || (c >= 32 && c <= 60) || (c >= 62 && c <= 126)) {
			sb.WriteByte(c)
			continue
		}
		fmt.Fprintf(&sb, "=%02X", c)
	}
	return sb.String()
}

// ResolveCharset resolves a CHARSET subproperty value to a text encoding
// for the Quoted-Printable path. UTF-8 and ASCII are fast-pathed to nil
// (decoded bytes used as-is); anything else is looked up by IANA name.
// An unknown name is the one fatal error of the decode pipeline, since
// CHARSET values are expected to be valid IANA names.
func ResolveCharset(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "UTF-8", "UTF8", "US-ASCII", "ASCII":
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("vcard: unknown charset %q", name)
	}
	return enc, nil
}
