// Package transport performs the network I/O behind every API call. Callers
// supply an Authorizer; a Transport only attaches its value.
package transport

import (
	"context"

	"github.com/abdulachik/twapi/internal/oauth1"
)

// Authorizer returns the Authorization header value for one attempt. A
// transport that retries calls it again before every attempt, so OAuth1
// signatures never repeat a nonce. A nil Authorizer sends no header.
type Authorizer func() string

// Static returns an Authorizer that always yields value.
func Static(value string) Authorizer {
	return func() string { return value }
}

// Transport is the contract the signing and upload code depends on. Every
// method returns the raw response, or an *Error for connection-level failures.
type Transport interface {
	Get(ctx context.Context, uri string, authorize Authorizer, query oauth1.Params) (*Response, error)
	Post(ctx context.Context, uri string, authorize Authorizer, query, form oauth1.Params) (*Response, error)
	Put(ctx context.Context, uri string, authorize Authorizer, query oauth1.Params) (*Response, error)
	Delete(ctx context.Context, uri string, authorize Authorizer, query oauth1.Params) (*Response, error)
	PostJSON(ctx context.Context, uri string, authorize Authorizer, query oauth1.Params, body any) (*Response, error)
	PostMultipart(ctx context.Context, uri string, authorize Authorizer, query oauth1.Params, form *Multipart) (*Response, error)
}

// FilePart is a binary part of a multipart form.
type FilePart struct {
	Field    string
	FileName string
	Data     []byte
}

// Multipart is a multipart/form-data body. Text fields are written before
// file parts, each group in insertion order.
type Multipart struct {
	Fields oauth1.Params
	Files  []FilePart
}

// NewMultipart creates an empty form.
func NewMultipart() *Multipart {
	return &Multipart{}
}

// Text adds a text field.
func (m *Multipart) Text(name, value string) *Multipart {
	m.Fields = m.Fields.Add(name, value)
	return m
}

// File adds a binary part.
func (m *Multipart) File(field, fileName string, data []byte) *Multipart {
	m.Files = append(m.Files, FilePart{Field: field, FileName: fileName, Data: data})
	return m
}

// TextValue returns the first text field named name.
func (m *Multipart) TextValue(name string) string {
	v, _ := m.Fields.Get(name)
	return v
}
