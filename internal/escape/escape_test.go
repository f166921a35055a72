package escape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	cases := []string{
		"plain",
		"has|pipe",
		"has,comma",
		"has>gt",
		"has*star",
		"has~tilde",
		"has$dollar",
		"has#hash",
		"has!bang",
		`has\backslash`,
		"",
		"multi|all,chars>in~one$string#here!done",
	}
	for _, s := range cases {
		enc := Escape(s)
		dec, err := Unescape(enc)
		require.NoError(t, err)
		assert.Equal(t, s, dec)
	}
}

func TestEscapeEscapesEveryMetachar(t *testing.T) {
	enc := Escape("|,>*~$#!")
	assert.Equal(t, `\|\,\>\*\~\$\#\!`, enc)
	for _, c := range enc {
		if c == '\\' {
			continue
		}
		assert.Contains(t, metachars, string(c))
	}
}

func TestUnescapeRejectsDanglingBackslash(t *testing.T) {
	_, err := Unescape(`abc\`)
	require.Error(t, err)
}

func TestUnescapeRejectsUnknownEscape(t *testing.T) {
	_, err := Unescape(`\z`)
	require.Error(t, err)
}

func TestReservedTokens(t *testing.T) {
	assert.True(t, IsNullToken(EncodeNull()))
	assert.True(t, IsEmptyToken(EncodeEmpty()))
	assert.False(t, IsNullToken(EncodeEmpty()))
}
