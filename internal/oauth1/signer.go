package oauth1

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

const (
	// SignatureMethod is the only method this package implements.
	SignatureMethod = "HMAC-SHA1"
	// Version is the oauth_version sent with every request.
	Version = "1.0"

	authorizationPrefix = "OAuth "
)

// SignerConfig holds the injectable sources of a Signer.
type SignerConfig struct {
	// Nonce generates oauth_nonce. Default: RandomNonce(nil).
	Nonce NonceFunc
	// Now supplies oauth_timestamp. Default: time.Now.
	Now func() time.Time
}

// Signer computes OAuth1 Authorization header values. It holds no mutable
// state and is safe for concurrent use.
type Signer struct {
	nonce NonceFunc
	now   func() time.Time
}

// NewSigner creates a signer, filling defaults for unset sources.
func NewSigner(cfg SignerConfig) *Signer {
	nonce := cfg.Nonce
	if nonce == nil {
		nonce = RandomNonce(nil)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Signer{nonce: nonce, now: now}
}

// Sign builds the Authorization header value for one request.
//
// headerParams (oauth_token, oauth_callback, ...) are signed and sent in the
// header. requestParams (query and form values) are signed but never put in
// the header.
func (s *Signer) Sign(signingKey, consumerKey string, headerParams Params, method, uri string, requestParams Params) string {
	fixed := Params{
		{Name: "oauth_consumer_key", Value: consumerKey},
		{Name: "oauth_nonce", Value: s.nonce()},
		{Name: "oauth_signature_method", Value: SignatureMethod},
		{Name: "oauth_timestamp", Value: strconv.FormatInt(s.now().Unix(), 10)},
		{Name: "oauth_version", Value: Version},
	}

	base := BaseString(method, uri, fixed.Concat(headerParams, requestParams))
	signature := HMACSHA1(base, signingKey)

	// The fixed pairs are already in byte order, so oauth_signature slots in
	// after oauth_nonce.
	header := make(Params, 0, len(fixed)+1+len(headerParams))
	header = append(header, fixed[:2]...)
	header = append(header, Param{Name: "oauth_signature", Value: signature})
	header = append(header, fixed[2:]...)
	header = append(header, headerParams...)

	return authorizationPrefix + join(header.encoded(), ", ", true)
}

// BaseString returns the signature base string
// METHOD&enc(uri)&enc(normalized parameters). The query part of uri is dropped;
// its values must be passed in params.
func BaseString(method, uri string, params Params) string {
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		uri = uri[:i]
	}
	return strings.ToUpper(method) + "&" + PercentEncode(uri) + "&" + PercentEncode(NormalizeParameters(params))
}

// SigningKey joins the encoded consumer and token secrets with '&'. An empty
// token secret yields "secret&".
func SigningKey(consumerSecret, tokenSecret string) string {
	return PercentEncode(consumerSecret) + "&" + PercentEncode(tokenSecret)
}

// HMACSHA1 returns base64(HMAC-SHA1(key, message)).
func HMACSHA1(message, key string) string {
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
