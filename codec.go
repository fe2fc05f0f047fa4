package hls

import (
	"reflect"
	"strings"

	"github.com/as/hlsedit/m3u"
)

// Unmarshal decodes the tags into the struct pointed to by v. Fields are
// matched by their hls struct tag, which names the tag without the '#'.
// A URI line is stored in the $file field of the most recently decoded
// value that has one. Tags matching no field are appended to the field
// labeled "*", if there is one.
func Unmarshal(v interface{}, tags ...m3u.Tag) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrUnmarshal
	}
	s := rv.Elem()
	sym := register(s.Type())

	var file reflect.Value
	for _, t := range tags {
		if t.IsLocation() {
			if file.IsValid() {
				file.Field(register(file.Type()).file).SetString(t.Payload())
				file = reflect.Value{}
			}
			continue
		}
		f, ok := sym.field[fieldname(t)]
		if !ok || f.set == nil {
			if x, ok := sym.field["*"]; ok && x.set != nil {
				x.set(s.Field(x.index), t, "")
			}
			continue
		}
		fv := s.Field(f.index)
		f.set(fv, t, "")
		if fv.Kind() == reflect.Slice && fv.Len() > 0 {
			fv = fv.Index(fv.Len() - 1)
		}
		if fv.Kind() == reflect.Struct && register(fv.Type()).file >= 0 {
			file = fv
		}
	}
	return nil
}

// Marshal returns the tags for the struct v in field order. Zero fields
// labeled omitempty and false flags are skipped.
func Marshal(v interface{}) ([]m3u.Tag, error) {
	s := reflect.Indirect(reflect.ValueOf(v))
	if s.Kind() != reflect.Struct {
		return nil, ErrUnmarshal
	}
	sym := register(s.Type())
	tags := []m3u.Tag{}
	for _, l := range sym.names {
		if l.name == "$file" {
			continue
		}
		val := s.Field(sym.field[l.name].index)
		if l.omitempty && val.IsZero() {
			continue
		}
		switch {
		case l.name == "*":
			extra, _ := val.Interface().([]m3u.Tag)
			tags = append(tags, extra...)
		case l.aggr:
			for i := 0; i < val.Len(); i++ {
				tags = append(tags, marshalField(l, val.Index(i))...)
			}
		default:
			tags = append(tags, marshalField(l, val)...)
		}
	}
	return tags, nil
}

// MarshalTag returns a tag with the given name whose values are taken
// from v, as if v were a field labeled with the name
func MarshalTag(name string, v interface{}) m3u.Tag {
	rf := reflect.Indirect(reflect.ValueOf(v))
	l := label{name: strings.TrimPrefix(name, "#")}
	if rf.Kind() == reflect.String {
		l.quote = true
	}
	if t := marshalField(l, rf); len(t) > 0 {
		return t[0]
	}
	return m3u.NewTag(name, "")
}

// fieldname returns the struct label matching t
func fieldname(t m3u.Tag) string {
	if t.IsComment() {
		return "#"
	}
	return strings.TrimPrefix(t.Name(), "#")
}
