// Package m3u tokenizes m3u playlists into tags and implements the tag
// payload codec. It knows nothing about playlist structure beyond what
// the descriptor registry says about each tag type.
package m3u

import (
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Tag is one line of a playlist: a tag, a location (URI) or a comment.
//
// Tag is a value type. The payload is a view into the source buffer and
// the parsed values are computed on first use and shared between copies.
// The Set methods never modify shared state, they replace the tag's
// values with a modified copy.
type Tag struct {
	desc Descriptor
	name string
	raw  string

	// text is the source line as read, and eol the line terminator plus
	// any blank lines that followed. text is empty once the tag is modified.
	text string
	eol  string

	val *lazy
	dur float64
	// hasdur is true if dur was parsed from the payload
	hasdur bool
}

type lazy struct {
	once sync.Once
	kind Kind
	raw  string
	v    Values
}

func (l *lazy) get() Values {
	l.once.Do(func() {
		switch l.kind {
		case KindLocation, KindComment:
			l.v = Values{attr: []Attr{{Value: Value{V: l.raw}}}}
		default:
			l.v = ParseValues(l.raw)
		}
	})
	return l.v
}

func done(v Values) *lazy {
	l := &lazy{v: v}
	l.once.Do(func() {})
	return l
}

// NewTag returns a tag with the given name (including the '#') and
// payload, described by the Default registry
func NewTag(name, payload string) Tag {
	return Default.NewTag(name, payload)
}

// NewTag returns a tag with the given name and payload described by r
func (r *Registry) NewTag(name, payload string) Tag {
	return newtag(r.Lookup(name), name, payload, "", "\n")
}

// NewLocation returns a location (URI line)
func NewLocation(uri string) Tag {
	return newtag(Location, "", uri, "", "\n")
}

// NewComment returns a comment line. The text excludes the leading '#'.
func NewComment(text string) Tag {
	return newtag(Comment, "", text, "", "\n")
}

func newtag(d Descriptor, name, raw, text, eol string) Tag {
	t := Tag{
		desc: d,
		name: name,
		raw:  raw,
		text: text,
		eol:  eol,
		val:  &lazy{kind: d.Kind(), raw: raw},
	}
	t.duration()
	return t
}

// duration parses $1 of a duration-bearing tag without touching the value cache
func (t *Tag) duration() {
	t.dur, t.hasdur = 0, false
	if t.desc == nil || t.desc.Role()&RoleDuration == 0 {
		return
	}
	s := t.raw
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return
	}
	t.dur, t.hasdur = f, true
}

// Descriptor returns the tag type. The zero Tag returns Unknown.
func (t Tag) Descriptor() Descriptor {
	if t.desc == nil {
		return Unknown
	}
	return t.desc
}

// Kind is shorthand for t.Descriptor().Kind()
func (t Tag) Kind() Kind {
	return t.Descriptor().Kind()
}

// Name returns the tag name including the leading '#', or the empty
// string for locations and comments
func (t Tag) Name() string {
	return t.name
}

// Payload returns the raw text after the ':'. For a location this is the
// URI and for a comment it is the text after the '#'.
func (t Tag) Payload() string {
	return t.raw
}

// Values returns the parsed payload
func (t Tag) Values() Values {
	if t.val == nil {
		return Values{}
	}
	return t.val.get()
}

// Lookup looks up a value by key, see Values.Get
func (t Tag) Lookup(key string) (Value, bool) {
	return t.Values().Get(key)
}

// Value returns the value for key without quotes, or the empty
// string. An empty key is the same as $1.
func (t Tag) Value(key string) string {
	if key == "" {
		key = "$1"
	}
	v, _ := t.Lookup(key)
	return v.V
}

// Duration returns the duration in seconds carried by a duration-bearing tag
func (t Tag) Duration() (float64, bool) {
	return t.dur, t.hasdur
}

// IsLocation returns true if the tag is a URI line
func (t Tag) IsLocation() bool {
	return t.Kind() == KindLocation
}

// IsComment returns true if the tag is a plain comment
func (t Tag) IsComment() bool {
	return t.Kind() == KindComment
}

// Is returns true if the tag has the given name
func (t Tag) Is(name string) bool {
	return t.name == name
}

// Modified returns true if the tag wasn't produced by the tokenizer or
// was changed since
func (t Tag) Modified() bool {
	return t.text == ""
}

// SetValue sets the value for key. An existing value keeps its quoting,
// a new one is written unquoted.
func (t *Tag) SetValue(key, v string) {
	t.setValues(t.Values().set(key, v, false))
}

// SetQuotedValue is like SetValue, but the value is always quoted
func (t *Tag) SetQuotedValue(key, v string) {
	t.setValues(t.Values().set(key, v, true))
}

// RemoveValue removes the value for key, if present
func (t *Tag) RemoveValue(key string) {
	v := t.Values()
	if !v.Has(key) {
		return
	}
	t.setValues(v.remove(key))
}

func (t *Tag) setValues(v Values) {
	switch t.Kind() {
	case KindLocation, KindComment:
		a := v.Args()
		t.raw = ""
		if len(a) > 0 {
			t.raw = a[0].V
		}
		v = Values{attr: []Attr{{Value: Value{V: t.raw}}}}
	default:
		t.raw = v.String()
	}
	t.val = done(v)
	t.text = ""
	t.duration()
}

// WithPayload returns a copy of t with a new raw payload. The line
// terminator is kept.
func (t Tag) WithPayload(payload string) Tag {
	u := newtag(t.Descriptor(), t.name, payload, "", t.eol)
	return u
}

// String returns the canonical line for the tag, without a terminator
func (t Tag) String() string {
	switch t.Kind() {
	case KindLocation:
		return t.raw
	case KindComment:
		return "#" + t.raw
	}
	if t.raw == "" {
		return t.name
	}
	return t.name + ":" + t.raw
}

// Text returns the source line if the tag is unmodified, otherwise the
// canonical line
func (t Tag) Text() string {
	if t.text != "" {
		return t.text
	}
	return t.String()
}

// Terminator returns the line terminator read with the tag, including
// any blank lines that followed it. It is empty for the last line of an
// input without a trailing newline.
func (t Tag) Terminator() string {
	return t.eol
}

// Equal returns true if both tags have the same descriptor,
// name, payload and values
func (t Tag) Equal(u Tag) bool {
	return t.Descriptor() == u.Descriptor() &&
		t.name == u.name &&
		t.raw == u.raw &&
		t.Values().Equal(u.Values())
}

// Hash returns a hash of the tag consistent with Equal
func (t Tag) Hash() uint64 {
	d := xxhash.New()
	desc := t.Descriptor()
	d.Write([]byte{byte(desc.Kind())})
	d.WriteString(desc.Name())
	d.Write([]byte{0})
	d.WriteString(t.name)
	d.Write([]byte{0})
	d.WriteString(t.raw)
	return d.Sum64()
}
