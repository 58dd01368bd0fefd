package vcard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeQP(s string) string {
	return DecodeQuotedPrintable(s, nil)
}

func TestQPDecoderTransitions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain passthrough", "hello", "hello"},
		{"simple escape", "=41", "A"},
		{"lowercase hex", "=e9", "\xe9"},
		{"two escapes", "=41=42", "AB"},
		{"soft line break", "foo=\r\nbar", "foobar"},
		{"double equals restarts escape", "==41", "=A"},
		{"equals then non-hex", "=zx", "=zx"},
		{"second hex invalid", "=4z", "=4z"},
		{"cr without lf emits char", "=\rx", "x"},
		{"cr then equals starts new escape", "=\r=41", "A"},
		{"dangling equals flushed", "abc=", "abc="},
		{"dangling equals hex flushed", "abc=4", "abc=4"},
		{"dangling soft break flushed", "abc=\r", "abc=\r"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeQP(tt.input))
		})
	}
}

func TestQPDecoderStateByState(t *testing.T) {
	var d qpDecoder
	require.Equal(t, qpNone, d.state)

	d.feed('=')
	assert.Equal(t, qpExpectHex1, d.state)

	d.feed('4')
	assert.Equal(t, qpExpectHex2, d.state)

	d.feed('1')
	assert.Equal(t, qpNone, d.state)
	assert.Equal(t, "A", string(d.flush()))

	d = qpDecoder{}
	d.feed('=')
	d.feed('\r')
	assert.Equal(t, qpExpectLineFeed, d.state)
	d.feed('\n')
	assert.Equal(t, qpNone, d.state)
	assert.Empty(t, d.flush())
}

func TestQPEncode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"printable ascii passes", "Hello, world", "Hello, world"},
		{"equals escaped", "a=b", "a=3Db"},
		{"newline escaped", "a\nb", "a=0Ab"},
		{"non-ascii escaped uppercase", "caf\xe9", "caf=E9"},
		{"tab inside passes", "a\tb", "a\tb"},
		{"trailing space escaped", "abc ", "abc=20"},
		{"trailing tab escaped", "abc\t", "abc=09"},
		{"trailing run escaped", "abc \t", "abc=20=09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeQuotedPrintable(tt.input))
		})
	}
}

func TestQPRoundTripASCII(t *testing.T) {
	inputs := []string{
		"plain text",
		"equals = signs == everywhere",
		"line\r\nbreaks",
		"tabs\tand spaces ",
		"",
	}
	for _, s := range inputs {
		assert.Equal(t, s, decodeQP(EncodeQuotedPrintable(s)), "input %q", s)
	}
}

func TestResolveCharset(t *testing.T) {
	t.Run("utf-8 fast path", func(t *testing.T) {
		enc, err := ResolveCharset("UTF-8")
		require.NoError(t, err)
		assert.Nil(t, enc)
	})

	t.Run("ascii fast path", func(t *testing.T) {
		enc, err := ResolveCharset("us-ascii")
		require.NoError(t, err)
		assert.Nil(t, enc)
	})

	t.Run("empty means default", func(t *testing.T) {
		enc, err := ResolveCharset("")
		require.NoError(t, err)
		assert.Nil(t, enc)
	})

	t.Run("latin1 by iana name", func(t *testing.T) {
		enc, err := ResolveCharset("ISO-8859-1")
		require.NoError(t, err)
		require.NotNil(t, enc)
		assert.Equal(t, "café", DecodeQuotedPrintable("caf=E9", enc))
	})

	t.Run("unknown name fails", func(t *testing.T) {
		_, err := ResolveCharset("X-NO-SUCH-CHARSET")
		assert.Error(t, err)
	})
}
