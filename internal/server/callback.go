package server

import (
	"errors"
	"fmt"
	"net/http"
)

var errDenied = errors.New("user denied authorization")

// Callback is what Twitter hands back after the user acts on the
// authorize page. Denied holds the request token when the user refused.
// The receiving channel must be buffered; a callback nobody is waiting
// for is answered with 409.
type Callback struct {
	Token    string
	Verifier string
	Denied   string
}

const callbackPage = `<!doctype html>
<html><body><p>%s You can close this window and return to the terminal.</p></body></html>
`

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cb := Callback{
		Token:    q.Get("oauth_token"),
		Verifier: q.Get("oauth_verifier"),
		Denied:   q.Get("denied"),
	}

	if cb.Denied == "" && (cb.Token == "" || cb.Verifier == "") {
		http.Error(w, "missing oauth_token or oauth_verifier", http.StatusBadRequest)
		return
	}

	select {
	case s.callbacks <- cb:
	default:
		http.Error(w, "no login in progress", http.StatusConflict)
		return
	}

	msg := "Authorization received."
	if cb.Denied != "" {
		msg = "Authorization was denied."
		s.health.SetUnhealthy(ComponentCallback, errDenied)
	} else {
		s.health.SetHealthy(ComponentCallback, "verifier received")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w, callbackPage, msg)
}
