package m3u

import (
	"strconv"
	"strings"
)

// Value is a single tag value. Quote is true if the value
// was (or should be) written between double quotes.
type Value struct {
	V     string
	Quote bool
}

func (v Value) String() string {
	if v.Quote {
		return `"` + v.V + `"`
	}
	return v.V
}

// Attr is one comma separated element of a tag payload. Positional
// values, like the duration in an #EXTINF, have an empty Key.
type Attr struct {
	Key string
	Value

	// raw is the source text of the element when it differs from
	// the canonical form, e.g. it had spaces around the '='
	raw string
}

func (a Attr) String() string {
	if a.raw != "" {
		return a.raw
	}
	if a.Key == "" {
		return a.Value.String()
	}
	return a.Key + "=" + a.Value.String()
}

// Values is the ordered list of values in a tag payload. The zero value
// is an empty list. Values is immutable, the set and remove methods
// return a modified copy.
type Values struct {
	attr []Attr
}

// ParseValues splits a payload into its values. Commas inside double
// quotes are literal. Each element is split on its first '=' only, so
// base64 padding in a value survives, and whitespace around keys and
// values is ignored. Elements without a valid key are stored as
// positional values. If the first element is positional the rest of the
// payload is positional too, since titles and URLs may contain '='.
func ParseValues(payload string) Values {
	if payload == "" {
		return Values{}
	}
	v := Values{}
	keyless := false
	for n, f := range split(payload) {
		a := Attr{}
		if k, val, ok := keyed(f); ok && !keyless {
			a.Key, a.Value = k, unquote(val)
		} else {
			// this is an abuse of the m3u standard but some tags
			// have no key value pairs with trailing base64 padding
			a.Value = unquote(strings.TrimSpace(f))
			keyless = keyless || n == 0
		}
		if a.String() != f {
			a.raw = f
		}
		v.attr = append(v.attr, a)
	}
	return v
}

// keyed splits f into a key and a value. A value consisting only of '='
// padding, like the end of a base64 string, has no key.
func keyed(f string) (key, val string, ok bool) {
	i := strings.IndexByte(f, '=')
	if i < 0 {
		return "", "", false
	}
	key, val = strings.TrimSpace(f[:i]), strings.TrimSpace(f[i+1:])
	if key == "" || !iskey(key) || strings.Trim(val, "=") == "" {
		return "", "", false
	}
	return key, val, true
}

func iskey(s string) bool {
	return !strings.ContainsAny(s, "\" \t")
}

func split(s string) (a []string) {
	quote := false
	j := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			quote = !quote
		case ',':
			if !quote {
				a = append(a, s[j:i])
				j = i + 1
			}
		}
	}
	return append(a, s[j:])
}

func unquote(s string) Value {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return Value{V: s[1 : len(s)-1], Quote: true}
	}
	return Value{V: s}
}

// String serializes the values. For values returned by ParseValues
// this is the original payload.
func (v Values) String() string {
	switch len(v.attr) {
	case 0:
		return ""
	case 1:
		return v.attr[0].String()
	}
	b := strings.Builder{}
	for i, a := range v.attr {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(a.String())
	}
	return b.String()
}

// Len returns the number of values, keyed and positional
func (v Values) Len() int {
	return len(v.attr)
}

// Attrs returns a copy of the values in order
func (v Values) Attrs() []Attr {
	return append([]Attr(nil), v.attr...)
}

// Keys returns the keys of the keyed values in order
func (v Values) Keys() (k []string) {
	for _, a := range v.attr {
		if a.Key != "" {
			k = append(k, a.Key)
		}
	}
	return k
}

// Args returns the positional values in order
func (v Values) Args() (arg []Value) {
	for _, a := range v.attr {
		if a.Key == "" {
			arg = append(arg, a.Value)
		}
	}
	return arg
}

// Get looks up a value by key. Keys of the form $1, $2, ... address the
// positional values.
func (v Values) Get(key string) (Value, bool) {
	i := v.index(key)
	if i < 0 {
		return Value{}, false
	}
	return v.attr[i].Value, true
}

// Has reports whether the key is present
func (v Values) Has(key string) bool {
	return v.index(key) >= 0
}

// Equal reports whether both lists hold the same values in the same order
func (v Values) Equal(w Values) bool {
	if len(v.attr) != len(w.attr) {
		return false
	}
	for i := range v.attr {
		if v.attr[i] != w.attr[i] {
			return false
		}
	}
	return true
}

func (v Values) index(key string) int {
	if n, ok := positional(key); ok {
		for i, a := range v.attr {
			if a.Key != "" {
				continue
			}
			if n--; n == 0 {
				return i
			}
		}
		return -1
	}
	for i, a := range v.attr {
		if a.Key == key {
			return i
		}
	}
	return -1
}

// positional parses $n
func positional(key string) (n int, ok bool) {
	if len(key) < 2 || key[0] != '$' {
		return 0, false
	}
	n, err := strconv.Atoi(key[1:])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// set returns a copy of v with key set to val. An existing value keeps
// its quoting unless quote is forced, a new value is unquoted unless forced.
func (v Values) set(key, val string, force bool) Values {
	w := Values{attr: make([]Attr, len(v.attr), len(v.attr)+1)}
	copy(w.attr, v.attr)
	if i := w.index(key); i >= 0 {
		w.attr[i].V = val
		w.attr[i].Quote = w.attr[i].Quote || force
		w.attr[i].raw = ""
		return w
	}
	if n, ok := positional(key); ok {
		for have := len(v.Args()); have < n-1; have++ {
			w.attr = append(w.attr, Attr{})
		}
		key = ""
	}
	w.attr = append(w.attr, Attr{Key: key, Value: Value{V: val, Quote: force}})
	return w
}

func (v Values) remove(key string) Values {
	i := v.index(key)
	if i < 0 {
		return v
	}
	w := Values{attr: make([]Attr, 0, len(v.attr)-1)}
	w.attr = append(w.attr, v.attr[:i]...)
	w.attr = append(w.attr, v.attr[i+1:]...)
	return w
}
