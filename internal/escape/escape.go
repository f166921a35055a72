// Package escape implements the reversible escaping of payload strings
// against ALS metacharacters, using a manual strings.Builder encoder.
package escape

import (
	"strings"

	"als/internal/alserr"
)

// metachars are the ALS grammar's reserved punctuation.
const metachars = "|,>*~$#!"

// nullToken and emptyToken are the reserved payload tokens representing
// Null and EmptyString unambiguously in a raw scalar position.
const (
	nullToken  = "\\N"
	emptyToken = "\\E"
)

func isMeta(b byte) bool {
	return strings.IndexByte(metachars, b) >= 0
}

// Escape returns e such that every reserved metacharacter, backslash, and
// occurrence of the literal token sequences \N / \E in s is prefixed by a
// single backslash. Whitespace and control characters pass through
// untouched.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			b.WriteString(`\\`)
		case isMeta(c):
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Unescape is the left inverse of Escape. It fails with AlsSyntaxError on a
// dangling trailing backslash or an escape sequence for a byte that Escape
// never produces (i.e. a backslash followed by something other than a
// metacharacter or another backslash).
func Unescape(e string) (string, error) {
	var b strings.Builder
	b.Grow(len(e))
	for i := 0; i < len(e); i++ {
		c := e[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(e) {
			return "", alserr.New(alserr.CodeAlsSyntax, "dangling trailing backslash").AtOffset(int64(i))
		}
		next := e[i+1]
		if next == '\\' || isMeta(next) {
			b.WriteByte(next)
			i++
			continue
		}
		return "", alserr.Newf(alserr.CodeAlsSyntax, "unknown escape sequence \\%c", next).AtOffset(int64(i))
	}
	return b.String(), nil
}

// EncodeNull returns the reserved token for a Null value in raw position.
func EncodeNull() string { return nullToken }

// EncodeEmpty returns the reserved token for an EmptyString value in raw
// position.
func EncodeEmpty() string { return emptyToken }

// IsNullToken reports whether the raw (already-unescaped-at-the-token-level)
// payload is the reserved Null token.
func IsNullToken(payload string) bool { return payload == nullToken }

// IsEmptyToken reports whether payload is the reserved EmptyString token.
func IsEmptyToken(payload string) bool { return payload == emptyToken }
