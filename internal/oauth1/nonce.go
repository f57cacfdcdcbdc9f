package oauth1

import (
	"crypto/rand"
	"io"
	"strings"

	"github.com/google/uuid"
)

// NonceFunc returns a fresh oauth_nonce for every call.
type NonceFunc func() string

// RandomNonce returns a NonceFunc producing 32 lowercase hex characters per
// call from a random UUID read out of r. A nil r uses crypto/rand.
func RandomNonce(r io.Reader) NonceFunc {
	if r == nil {
		r = rand.Reader
	}
	return func() string {
		id, err := uuid.NewRandomFromReader(r)
		if err != nil {
			// Exhausted or broken readers fall back to the package source.
			id = uuid.New()
		}
		return strings.ReplaceAll(id.String(), "-", "")
	}
}

// StaticNonce always returns the same nonce. Meant for tests and fixtures.
func StaticNonce(nonce string) NonceFunc {
	return func() string { return nonce }
}
