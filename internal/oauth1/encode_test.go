package oauth1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentEncode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"abcXYZ019", "abcXYZ019"},
		{"-._~", "-._~"},
		{"hello world", "hello%20world"},
		{"a+b", "a%2Bb"},
		{"Ladies + Gentlemen", "Ladies%20%2B%20Gentlemen"},
		{"!*'();:@&=$,/?#[]", "%21%2A%27%28%29%3B%3A%40%26%3D%24%2C%2F%3F%23%5B%5D"},
		{"%20", "%2520"},
		{"☃", "%E2%98%83"},
		{"テスト", "%E3%83%86%E3%82%B9%E3%83%88"},
		{"\x00\xff", "%00%FF"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, PercentEncode(tt.input))
		})
	}
}

func TestPercentEncode_UnreservedPassThrough(t *testing.T) {
	for c := 0; c < 256; c++ {
		s := string([]byte{byte(c)})
		got := PercentEncode(s)
		if unreserved(byte(c)) {
			assert.Equal(t, s, got)
		} else {
			assert.Len(t, got, 3, "byte %#x", c)
			assert.Equal(t, byte('%'), got[0])
		}
	}
}

func TestPercentEncode_NoDoubleDecoding(t *testing.T) {
	once := PercentEncode("a b")
	twice := PercentEncode(once)
	assert.Equal(t, "a%20b", once)
	assert.Equal(t, "a%2520b", twice)
}
