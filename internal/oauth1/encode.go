// Package oauth1 implements OAuth 1.0a request signing (HMAC-SHA1) as used by
// the Twitter API.
package oauth1

import "strings"

const upperhex = "0123456789ABCDEF"

// PercentEncode escapes every byte of s except the RFC 3986 unreserved
// characters (A-Z, a-z, 0-9, '-', '.', '_', '~'). Space becomes %20, never '+'.
// Input is treated as raw bytes, so already-escaped text is escaped again.
func PercentEncode(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}
