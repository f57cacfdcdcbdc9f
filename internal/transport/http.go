package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/abdulachik/twapi/internal/oauth1"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "twapi"

	contentTypeForm = "application/x-www-form-urlencoded"
	contentTypeJSON = "application/json"
)

// HTTPConfig holds configuration for the HTTP transport.
type HTTPConfig struct {
	Timeout time.Duration
	// RetryMax is the number of retries on connection errors and 5xx
	// responses. Zero disables retries. Every attempt is re-authorized.
	RetryMax int
	// RetryWaitMin and RetryWaitMax bound the backoff between attempts.
	// Zero keeps the retryablehttp defaults.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string
	Logger       *slog.Logger
}

// HTTPTransport implements Transport over net/http.
type HTTPTransport struct {
	client    *retryablehttp.Client
	userAgent string
}

// NewHTTPTransport creates a new HTTP transport.
func NewHTTPTransport(cfg HTTPConfig) *HTTPTransport {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = timeout
	client.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		client.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		client.RetryWaitMax = cfg.RetryWaitMax
	}
	client.Logger = logger
	// Hand the final response back instead of an opaque "giving up" error so
	// callers can report the status and body.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.RequestLogHook = authorizeAttempt

	return &HTTPTransport{client: client, userAgent: userAgent}
}

// Get performs a GET with query appended to uri.
func (t *HTTPTransport) Get(ctx context.Context, uri string, authorize Authorizer, query oauth1.Params) (*Response, error) {
	return t.do(ctx, http.MethodGet, uri, authorize, query, nil, "")
}

// Post sends form as an urlencoded body.
func (t *HTTPTransport) Post(ctx context.Context, uri string, authorize Authorizer, query, form oauth1.Params) (*Response, error) {
	var body []byte
	contentType := ""
	if len(form) > 0 {
		body = []byte(EncodeParams(form))
		contentType = contentTypeForm
	}
	return t.do(ctx, http.MethodPost, uri, authorize, query, body, contentType)
}

// Put performs a PUT with query appended to uri.
func (t *HTTPTransport) Put(ctx context.Context, uri string, authorize Authorizer, query oauth1.Params) (*Response, error) {
	return t.do(ctx, http.MethodPut, uri, authorize, query, nil, "")
}

// Delete performs a DELETE with query appended to uri.
func (t *HTTPTransport) Delete(ctx context.Context, uri string, authorize Authorizer, query oauth1.Params) (*Response, error) {
	return t.do(ctx, http.MethodDelete, uri, authorize, query, nil, "")
}

// PostJSON sends body marshalled as JSON.
func (t *HTTPTransport) PostJSON(ctx context.Context, uri string, authorize Authorizer, query oauth1.Params, body any) (*Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return t.do(ctx, http.MethodPost, uri, authorize, query, data, contentTypeJSON)
}

// PostMultipart sends form as multipart/form-data.
func (t *HTTPTransport) PostMultipart(ctx context.Context, uri string, authorize Authorizer, query oauth1.Params, form *Multipart) (*Response, error) {
	body, contentType, err := encodeMultipart(form)
	if err != nil {
		return nil, fmt.Errorf("encode multipart: %w", err)
	}
	return t.do(ctx, http.MethodPost, uri, authorize, query, body, contentType)
}

func (t *HTTPTransport) do(ctx context.Context, method, uri string, authorize Authorizer, query oauth1.Params, body []byte, contentType string) (*Response, error) {
	if strings.Contains(uri, "?") {
		return nil, &Error{Method: method, URI: uri, Err: ErrQueryInURI}
	}
	target := uri
	if len(query) > 0 {
		target = uri + "?" + EncodeParams(query)
	}

	var raw any
	if body != nil {
		raw = body
	}
	req, err := retryablehttp.NewRequest(method, target, raw)
	if err != nil {
		return nil, &Error{Method: method, URI: uri, Err: err}
	}
	if authorize != nil {
		ctx = context.WithValue(ctx, authorizerKey{}, authorize)
	}
	req = req.WithContext(ctx)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &Error{Method: method, URI: uri, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Method: method, URI: uri, Err: fmt.Errorf("read body: %w", err)}
	}

	slog.Debug("http request completed",
		"method", method,
		"uri", uri,
		"status", resp.StatusCode,
		"bytes", len(data),
	)

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

type authorizerKey struct{}

// authorizeAttempt runs before every attempt, including the first, and sets
// a freshly computed Authorization header.
func authorizeAttempt(_ retryablehttp.Logger, req *http.Request, attempt int) {
	authorize, ok := req.Context().Value(authorizerKey{}).(Authorizer)
	if !ok {
		return
	}
	req.Header.Set("Authorization", authorize())
	if attempt > 0 {
		slog.Debug("retrying request", "method", req.Method, "uri", req.URL.Redacted(), "attempt", attempt)
	}
}

// EncodeParams renders params in order using the same percent-encoding the
// signature is computed over.
func EncodeParams(params oauth1.Params) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(oauth1.PercentEncode(p.Name))
		b.WriteByte('=')
		b.WriteString(oauth1.PercentEncode(p.Value))
	}
	return b.String()
}

func encodeMultipart(form *Multipart) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if form != nil {
		for _, f := range form.Fields {
			if err := w.WriteField(f.Name, f.Value); err != nil {
				return nil, "", err
			}
		}
		for _, f := range form.Files {
			part, err := w.CreateFormFile(f.Field, f.FileName)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(f.Data); err != nil {
				return nil, "", err
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// ParseQuery decodes an urlencoded body such as a token exchange response.
func ParseQuery(body []byte) (url.Values, error) {
	values, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse query body: %w", err)
	}
	return values, nil
}
