package oauth1

import (
	"strings"
	"sync"
	"testing"
	"time"

	dghubble "github.com/dghubble/oauth1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixture from Twitter's "Creating a signature" guide.
const (
	twConsumerKey    = "xvz1evFS4wEEPTGEFPHBog"
	twConsumerSecret = "kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw"
	twToken          = "370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb"
	twTokenSecret    = "LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE"
	twNonce          = "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg"
	twTimestamp      = 1318622958
	twURI            = "https://api.twitter.com/1.1/statuses/update.json"
	twSignature      = "hCtSmYh+iHYCEqBWrE7C7hYmtUk="
)

var twParams = Params{
	{Name: "status", Value: "Hello Ladies + Gentlemen, a signed OAuth request!"},
	{Name: "include_entities", Value: "true"},
}

func fixedSigner(nonce string, ts int64) *Signer {
	return NewSigner(SignerConfig{
		Nonce: StaticNonce(nonce),
		Now:   func() time.Time { return time.Unix(ts, 0) },
	})
}

// headerValues splits an OAuth header into its ordered name="value" pairs.
func headerValues(t *testing.T, header string) Params {
	t.Helper()
	require.True(t, strings.HasPrefix(header, "OAuth "))
	var out Params
	for _, part := range strings.Split(strings.TrimPrefix(header, "OAuth "), ", ") {
		name, quoted, ok := strings.Cut(part, "=")
		require.True(t, ok, part)
		require.True(t, len(quoted) >= 2 && quoted[0] == '"' && quoted[len(quoted)-1] == '"', part)
		out = append(out, Param{Name: name, Value: quoted[1 : len(quoted)-1]})
	}
	return out
}

func TestBaseString(t *testing.T) {
	t.Run("twitter guide", func(t *testing.T) {
		params := Params{
			{Name: "oauth_consumer_key", Value: twConsumerKey},
			{Name: "oauth_nonce", Value: twNonce},
			{Name: "oauth_signature_method", Value: "HMAC-SHA1"},
			{Name: "oauth_timestamp", Value: "1318622958"},
			{Name: "oauth_token", Value: twToken},
			{Name: "oauth_version", Value: "1.0"},
		}.Concat(twParams)

		expected := "POST&https%3A%2F%2Fapi.twitter.com%2F1.1%2Fstatuses%2Fupdate.json&" +
			"include_entities%3Dtrue%26oauth_consumer_key%3Dxvz1evFS4wEEPTGEFPHBog%26" +
			"oauth_nonce%3DkYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg%26" +
			"oauth_signature_method%3DHMAC-SHA1%26oauth_timestamp%3D1318622958%26" +
			"oauth_token%3D370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb%26" +
			"oauth_version%3D1.0%26" +
			"status%3DHello%2520Ladies%2520%252B%2520Gentlemen%252C%2520a%2520signed%2520OAuth%2520request%2521"

		assert.Equal(t, expected, BaseString("post", twURI, params))
	})

	t.Run("query string is dropped from uri", func(t *testing.T) {
		a := BaseString("GET", "https://example.com/a?x=1", Params{{Name: "x", Value: "1"}})
		b := BaseString("GET", "https://example.com/a", Params{{Name: "x", Value: "1"}})
		assert.Equal(t, b, a)
	})
}

func TestSigner_Sign(t *testing.T) {
	t.Run("twitter guide vector", func(t *testing.T) {
		s := fixedSigner(twNonce, twTimestamp)
		header := s.Sign(
			SigningKey(twConsumerSecret, twTokenSecret),
			twConsumerKey,
			Params{{Name: "oauth_token", Value: twToken}},
			"POST", twURI, twParams,
		)

		expected := `OAuth oauth_consumer_key="xvz1evFS4wEEPTGEFPHBog", ` +
			`oauth_nonce="kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg", ` +
			`oauth_signature="hCtSmYh%2BiHYCEqBWrE7C7hYmtUk%3D", ` +
			`oauth_signature_method="HMAC-SHA1", ` +
			`oauth_timestamp="1318622958", ` +
			`oauth_version="1.0", ` +
			`oauth_token="370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb"`
		assert.Equal(t, expected, header)
	})

	t.Run("oauth core appendix vector", func(t *testing.T) {
		s := fixedSigner("kllo9940pd9333jh", 1191242096)
		header := s.Sign(
			SigningKey("kd94hf93k423kf44", "pfkkdhi9sl3r4s00"),
			"dpf43f3p2l4k3l03",
			Params{{Name: "oauth_token", Value: "nnch734d00sl2jdk"}},
			"GET", "http://photos.example.net/photos",
			Params{{Name: "file", Value: "vacation.jpg"}, {Name: "size", Value: "original"}},
		)

		sig, ok := headerValues(t, header).Get("oauth_signature")
		require.True(t, ok)
		assert.Equal(t, PercentEncode("tR3+Ty81lMeYAr/Fid0kMTYa/WM="), sig)
	})

	t.Run("request params stay out of the header", func(t *testing.T) {
		s := fixedSigner("nonce", 1)
		header := s.Sign("cs&", "ck", nil, "POST", "https://example.com", Params{{Name: "status", Value: "hi"}})

		assert.NotContains(t, header, "status")
		names := make([]string, 0)
		for _, p := range headerValues(t, header) {
			names = append(names, p.Name)
		}
		assert.Equal(t, []string{
			"oauth_consumer_key", "oauth_nonce", "oauth_signature",
			"oauth_signature_method", "oauth_timestamp", "oauth_version",
		}, names)
	})

	t.Run("header params are encoded and appended in order", func(t *testing.T) {
		s := fixedSigner("nonce", 1)
		header := s.Sign("cs&", "ck", Params{
			{Name: "oauth_callback", Value: "http://localhost/cb?x=1"},
			{Name: "x_auth_access_type", Value: "read"},
		}, "POST", "https://api.twitter.com/oauth/request_token", nil)

		values := headerValues(t, header)
		require.Len(t, values, 8)
		assert.Equal(t, Param{Name: "oauth_callback", Value: "http%3A%2F%2Flocalhost%2Fcb%3Fx%3D1"}, values[6])
		assert.Equal(t, Param{Name: "x_auth_access_type", Value: "read"}, values[7])
	})

	t.Run("request token signature", func(t *testing.T) {
		s := fixedSigner(strings.Repeat("n", 32), twTimestamp)
		header := s.Sign(SigningKey("cs", ""), "ck",
			Params{{Name: "oauth_callback", Value: "http://localhost/cb?x=1"}},
			"POST", "https://api.twitter.com/oauth/request_token", nil)

		sig, _ := headerValues(t, header).Get("oauth_signature")
		assert.Equal(t, PercentEncode("ePh/w0NIfp3bI3u5vZh3OfX8mjs="), sig)
	})

	t.Run("deterministic with fixed nonce and clock", func(t *testing.T) {
		s := fixedSigner("abc", 42)
		a := s.Sign("k&s", "ck", nil, "GET", "https://example.com/x", Params{{Name: "q", Value: "go lang"}})
		b := s.Sign("k&s", "ck", nil, "GET", "https://example.com/x", Params{{Name: "q", Value: "go lang"}})
		assert.Equal(t, a, b)
	})

	t.Run("fresh nonce per request by default", func(t *testing.T) {
		s := NewSigner(SignerConfig{})
		a, _ := headerValues(t, s.Sign("k&", "ck", nil, "GET", "https://example.com", nil)).Get("oauth_nonce")
		b, _ := headerValues(t, s.Sign("k&", "ck", nil, "GET", "https://example.com", nil)).Get("oauth_nonce")
		assert.Len(t, a, 32)
		assert.NotEqual(t, a, b)
	})

	t.Run("timestamp is unix seconds", func(t *testing.T) {
		s := fixedSigner("n", 0)
		s.now = func() time.Time { return time.Unix(1700000000, 999_000_000) }
		ts, _ := headerValues(t, s.Sign("k&", "ck", nil, "GET", "https://example.com", nil)).Get("oauth_timestamp")
		assert.Equal(t, "1700000000", ts)
	})

	t.Run("safe for concurrent use", func(t *testing.T) {
		s := fixedSigner(twNonce, twTimestamp)
		want := s.Sign(SigningKey(twConsumerSecret, twTokenSecret), twConsumerKey,
			Params{{Name: "oauth_token", Value: twToken}}, "POST", twURI, twParams)

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got := s.Sign(SigningKey(twConsumerSecret, twTokenSecret), twConsumerKey,
					Params{{Name: "oauth_token", Value: twToken}}, "POST", twURI, twParams)
				assert.Equal(t, want, got)
			}()
		}
		wg.Wait()
	})
}

func TestHMACSHA1_MatchesReferenceSigner(t *testing.T) {
	base := BaseString("POST", twURI, Params{
		{Name: "oauth_consumer_key", Value: twConsumerKey},
		{Name: "oauth_nonce", Value: twNonce},
	}.Concat(twParams))

	ref := &dghubble.HMACSigner{ConsumerSecret: twConsumerSecret}
	want, err := ref.Sign(twTokenSecret, base)
	require.NoError(t, err)

	assert.Equal(t, want, HMACSHA1(base, SigningKey(twConsumerSecret, twTokenSecret)))
	assert.Equal(t, ref.Name(), SignatureMethod)
}

func TestSigningKey(t *testing.T) {
	assert.Equal(t, "secret&", SigningKey("secret", ""))
	assert.Equal(t, "a%26b&c%20d", SigningKey("a&b", "c d"))
}
