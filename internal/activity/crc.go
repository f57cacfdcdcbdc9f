// Package activity implements the Account Activity API: answering CRC
// challenges, validating delivered webhook payloads and managing webhook
// registrations and subscriptions.
package activity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// SignatureHeader carries the HMAC of every webhook delivery.
const SignatureHeader = "X-Twitter-Webhooks-Signature"

const signaturePrefix = "sha256="

// Sign returns base64(HMAC-SHA256(key, message)).
func Sign(key string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(message)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ResponseToken answers a crc_token challenge.
func ResponseToken(consumerSecret, crcToken string) string {
	return signaturePrefix + Sign(consumerSecret, []byte(crcToken))
}

type crcResponse struct {
	ResponseToken string `json:"response_token"`
}

// CRCResponse renders the JSON body returned to a CRC GET.
func CRCResponse(consumerSecret, crcToken string) ([]byte, error) {
	body, err := jsoniter.Marshal(crcResponse{ResponseToken: ResponseToken(consumerSecret, crcToken)})
	if err != nil {
		return nil, fmt.Errorf("encode crc response: %w", err)
	}
	return body, nil
}

// ValidSignature reports whether signature matches the body. The comparison
// is constant time.
func ValidSignature(signature, consumerSecret string, body []byte) bool {
	want := signaturePrefix + Sign(consumerSecret, body)
	return hmac.Equal([]byte(signature), []byte(want))
}
