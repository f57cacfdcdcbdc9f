// Package transporttest provides a scripted Transport for tests.
package transporttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/abdulachik/twapi/internal/oauth1"
	"github.com/abdulachik/twapi/internal/transport"
)

// Call is one recorded request.
type Call struct {
	Method        string
	URI           string
	Authorization string
	Query         oauth1.Params
	Form          oauth1.Params
	JSON          any
	Multipart     *transport.Multipart
}

// Reply is a scripted outcome. Err takes precedence over the response.
type Reply struct {
	StatusCode int
	Body       string
	Err        error
}

// Recorder replays replies in order and records every call. When the script
// runs out, Fallback handles the call if set.
type Recorder struct {
	mu       sync.Mutex
	replies  []Reply
	calls    []Call
	Fallback func(Call) Reply
}

// New creates a recorder with the given script.
func New(replies ...Reply) *Recorder {
	return &Recorder{replies: replies}
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

func (r *Recorder) record(c Call) (*transport.Response, error) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	var reply Reply
	switch {
	case len(r.replies) > 0:
		reply = r.replies[0]
		r.replies = r.replies[1:]
	case r.Fallback != nil:
		fallback := r.Fallback
		r.mu.Unlock()
		reply = fallback(c)
		r.mu.Lock()
	default:
		r.mu.Unlock()
		return nil, &transport.Error{Method: c.Method, URI: c.URI, Err: fmt.Errorf("unexpected call %d", len(r.calls))}
	}
	r.mu.Unlock()

	if reply.Err != nil {
		return nil, &transport.Error{Method: c.Method, URI: c.URI, Err: reply.Err}
	}
	return &transport.Response{StatusCode: reply.StatusCode, Body: []byte(reply.Body)}, nil
}

func (r *Recorder) Get(_ context.Context, uri string, authorize transport.Authorizer, query oauth1.Params) (*transport.Response, error) {
	return r.record(Call{Method: "GET", URI: uri, Authorization: value(authorize), Query: query})
}

func (r *Recorder) Post(_ context.Context, uri string, authorize transport.Authorizer, query, form oauth1.Params) (*transport.Response, error) {
	return r.record(Call{Method: "POST", URI: uri, Authorization: value(authorize), Query: query, Form: form})
}

func (r *Recorder) Put(_ context.Context, uri string, authorize transport.Authorizer, query oauth1.Params) (*transport.Response, error) {
	return r.record(Call{Method: "PUT", URI: uri, Authorization: value(authorize), Query: query})
}

func (r *Recorder) Delete(_ context.Context, uri string, authorize transport.Authorizer, query oauth1.Params) (*transport.Response, error) {
	return r.record(Call{Method: "DELETE", URI: uri, Authorization: value(authorize), Query: query})
}

func (r *Recorder) PostJSON(_ context.Context, uri string, authorize transport.Authorizer, query oauth1.Params, body any) (*transport.Response, error) {
	return r.record(Call{Method: "POST", URI: uri, Authorization: value(authorize), Query: query, JSON: body})
}

func (r *Recorder) PostMultipart(_ context.Context, uri string, authorize transport.Authorizer, query oauth1.Params, form *transport.Multipart) (*transport.Response, error) {
	return r.record(Call{Method: "POST", URI: uri, Authorization: value(authorize), Query: query, Multipart: form})
}

// value resolves the header once, as a single attempt would.
func value(authorize transport.Authorizer) string {
	if authorize == nil {
		return ""
	}
	return authorize()
}

var _ transport.Transport = (*Recorder)(nil)
