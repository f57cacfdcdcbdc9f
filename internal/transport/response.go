package transport

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Response is the status and fully read body of one call.
type Response struct {
	StatusCode int
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Has reports whether the JSON body holds a non-null value at path.
func (r *Response) Has(path ...any) bool {
	t := jsoniter.Get(r.Body, path...).ValueType()
	return t != jsoniter.InvalidValue && t != jsoniter.NilValue
}

// String returns the string at path, or a *MalformedResponseError when the
// body is not JSON or the value is absent or of another type.
func (r *Response) String(path ...any) (string, error) {
	v := jsoniter.Get(r.Body, path...)
	if v.ValueType() != jsoniter.StringValue {
		return "", r.malformed(path)
	}
	return v.ToString(), nil
}

// Int returns the integer at path, or a *MalformedResponseError.
func (r *Response) Int(path ...any) (int64, error) {
	v := jsoniter.Get(r.Body, path...)
	if v.ValueType() != jsoniter.NumberValue {
		return 0, r.malformed(path)
	}
	return v.ToInt64(), nil
}

func (r *Response) malformed(path []any) error {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = fmt.Sprint(p)
	}
	return &MalformedResponseError{Field: strings.Join(parts, "."), Body: string(r.Body)}
}
