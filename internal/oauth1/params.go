package oauth1

import (
	"net/url"
	"sort"
	"strings"
)

// Param is a single name/value pair of a request.
type Param struct {
	Name  string
	Value string
}

// Params is an ordered parameter list. Names may repeat.
type Params []Param

// Add appends a pair and returns the extended list.
func (p Params) Add(name, value string) Params {
	return append(p, Param{Name: name, Value: value})
}

// Get returns the first value for name.
func (p Params) Get(name string) (string, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return "", false
}

// Values converts the list to url.Values, keeping per-name order.
func (p Params) Values() url.Values {
	v := make(url.Values, len(p))
	for _, param := range p {
		v.Add(param.Name, param.Value)
	}
	return v
}

// Concat returns a new list holding p followed by others.
func (p Params) Concat(others ...Params) Params {
	n := len(p)
	for _, o := range others {
		n += len(o)
	}
	out := make(Params, 0, n)
	out = append(out, p...)
	for _, o := range others {
		out = append(out, o...)
	}
	return out
}

// encoded returns a copy with both name and value percent-encoded.
func (p Params) encoded() Params {
	out := make(Params, len(p))
	for i, param := range p {
		out[i] = Param{Name: PercentEncode(param.Name), Value: PercentEncode(param.Value)}
	}
	return out
}

// sortCanonical orders already-encoded pairs by name, then value, byte-wise.
func sortCanonical(p Params) {
	sort.SliceStable(p, func(i, j int) bool {
		if p[i].Name != p[j].Name {
			return p[i].Name < p[j].Name
		}
		return p[i].Value < p[j].Value
	})
}

func join(p Params, sep string, quote bool) string {
	var b strings.Builder
	for i, param := range p {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(param.Name)
		b.WriteByte('=')
		if quote {
			b.WriteByte('"')
		}
		b.WriteString(param.Value)
		if quote {
			b.WriteByte('"')
		}
	}
	return b.String()
}

// NormalizeParameters percent-encodes every pair, sorts them and joins them
// as name=value with '&'. This is the parameter string of the signature base.
func NormalizeParameters(params Params) string {
	enc := params.encoded()
	sortCanonical(enc)
	return join(enc, "&", false)
}
