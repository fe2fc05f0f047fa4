package hls

import (
	"fmt"
	"image"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/as/hlsedit/m3u"
)

// symtab is the symbol table. Symbols are compiled the first time a type
// is seen and never change afterwards.
var symtab = struct {
	sync.RWMutex
	m map[reflect.Type]sym
}{m: map[reflect.Type]sym{}}

type sfield struct {
	// index of this field in the parent struct
	index int

	// set knows how to set the value to the contents of the tag. The
	// final argument is the attribute key, or empty for the whole tag.
	set func(reflect.Value, m3u.Tag, string)
}

// sym is a compiled struct type
type sym struct {
	field map[string]sfield
	names []label

	// file is the index of the $file field, or -1. A struct with
	// a $file field takes the URI line that follows its tag.
	file int
}

var (
	tagType     = reflect.TypeOf(m3u.Tag{})
	timeType    = reflect.TypeOf(time.Time{})
	durType     = reflect.TypeOf(time.Duration(0))
	pointType   = reflect.TypeOf(image.Point{})
	decoderType = reflect.TypeOf((*tagdecoder)(nil)).Elem()
)

// tagdecoder is implemented by pointers to types that decode
// themselves from a tag
type tagdecoder interface {
	decodetag(t m3u.Tag)
}

// tagsetter is implemented by types that encode themselves as a tag's values
type tagsetter interface {
	settag(t *m3u.Tag)
}

// register compiles the struct type t exactly once and returns the result
func register(t reflect.Type) sym {
	symtab.RLock()
	s, ok := symtab.m[t]
	symtab.RUnlock()
	if ok {
		return s
	}
	s = sym{field: map[string]sfield{}, file: -1}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			label := parselabel(t.Field(i))
			if label == nil {
				continue
			}
			if label.name == "$file" {
				s.file = i
			}
			s.field[label.name] = sfield{index: i, set: compileDec(t.Field(i).Type)}
			s.names = append(s.names, *label)
		}
	}
	symtab.Lock()
	symtab.m[t] = s
	symtab.Unlock()
	return s
}

type label struct {
	name      string
	omitempty bool
	quote     bool
	aggr      bool
}

func parselabel(sf reflect.StructField) *label {
	v, ok := sf.Tag.Lookup("hls")
	if !ok {
		return nil
	}
	a := strings.Split(v, ",")
	l := label{name: a[0]}
	crc := 0
	for _, extra := range a[1:] {
		switch extra {
		case "omitempty":
			l.omitempty = true
		case "aggr":
			l.aggr = true
		case "quote":
			crc++
			l.quote = true
		case "noquote":
			crc++
			l.quote = false
		}
	}
	if crc > 1 {
		panic(fmt.Sprintf("hls tag in struct field %s: quote/noquote specified more than once", sf.Name))
	}
	if crc == 0 {
		switch sf.Type.Kind() {
		case reflect.Slice, reflect.String:
			l.quote = true
		default:
			l.quote = false
		}
	}
	return &l
}

// compileDec returns a func that can decode an m3u.Tag into a value of type rt
func compileDec(rt reflect.Type) func(reflect.Value, m3u.Tag, string) {
	if reflect.PtrTo(rt).Implements(decoderType) {
		return func(rf reflect.Value, t m3u.Tag, key string) {
			rf.Addr().Interface().(tagdecoder).decodetag(t)
		}
	}
	switch rt {
	case tagType:
		return func(rf reflect.Value, t m3u.Tag, key string) {
			rf.Set(reflect.ValueOf(t))
		}
	case timeType:
		return func(rf reflect.Value, t m3u.Tag, key string) {
			tm, _ := time.Parse(time.RFC3339Nano, t.Value(key))
			rf.Set(reflect.ValueOf(tm))
		}
	case durType:
		return func(rf reflect.Value, t m3u.Tag, key string) {
			d, _ := time.ParseDuration(t.Value(key) + "s")
			rf.SetInt(int64(d))
		}
	case pointType:
		return func(rf reflect.Value, t m3u.Tag, key string) {
			p := image.Point{}
			fmt.Sscanf(t.Value(key), "%dx%d", &p.X, &p.Y)
			rf.Set(reflect.ValueOf(p))
		}
	}

	switch rt.Kind() {
	case reflect.Bool:
		return func(rf reflect.Value, t m3u.Tag, key string) {
			if key == "" {
				rf.SetBool(true)
				return
			}
			val := t.Value(key)
			rf.SetBool(val != "NO" && val != "FALSE" && val != "")
		}
	case reflect.Float32, reflect.Float64:
		return func(rf reflect.Value, t m3u.Tag, key string) {
			f, _ := strconv.ParseFloat(t.Value(key), 64)
			rf.SetFloat(f)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(rf reflect.Value, t m3u.Tag, key string) {
			i, _ := strconv.ParseInt(t.Value(key), 10, 64)
			rf.SetInt(i)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(rf reflect.Value, t m3u.Tag, key string) {
			i, _ := strconv.ParseUint(t.Value(key), 10, 64)
			rf.SetUint(i)
		}
	case reflect.String:
		return func(rf reflect.Value, t m3u.Tag, key string) {
			rf.SetString(t.Value(key))
		}
	case reflect.Struct:
		return func(rf reflect.Value, t m3u.Tag, key string) {
			unmarshalAttr(rf, t)
		}
	case reflect.Slice:
		switch elem := rt.Elem(); {
		case elem.Kind() == reflect.String:
			return func(rf reflect.Value, t m3u.Tag, key string) {
				rf.Set(reflect.ValueOf(setSlice(t.Value(key))))
			}
		case elem == tagType:
			return func(slice reflect.Value, t m3u.Tag, key string) {
				slice.Set(reflect.Append(slice, reflect.ValueOf(t)))
			}
		case elem.Kind() == reflect.Struct:
			return func(slice reflect.Value, t m3u.Tag, key string) {
				v := reflect.New(elem).Elem()
				unmarshalAttr(v, t)
				slice.Set(reflect.Append(slice, v))
			}
		}
	}
	return nil
}

func unmarshalAttr(s reflect.Value, t m3u.Tag) {
	if reflect.PtrTo(s.Type()).Implements(decoderType) && s.CanAddr() {
		s.Addr().Interface().(tagdecoder).decodetag(t)
		return
	}
	sym := register(s.Type())
	for _, l := range sym.names {
		f := sym.field[l.name]
		if l.name == "$file" || f.set == nil {
			continue
		}
		f.set(s.Field(f.index), t, l.name)
	}
}

func setSlice(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// marshalField returns the tag for the value of a field with label l,
// followed by its URI line if the value has one
func marshalField(l label, rf reflect.Value) []m3u.Tag {
	name := "#" + l.name
	switch val := rf.Interface().(type) {
	case m3u.Tag:
		if rf.IsZero() {
			return nil
		}
		return []m3u.Tag{val}
	case bool:
		if !val {
			return nil
		}
		return []m3u.Tag{m3u.NewTag(name, "")}
	}
	if l.name == "#" {
		return []m3u.Tag{m3u.NewComment(tostring(rf))}
	}

	t := m3u.NewTag(name, "")
	if ts, ok := rf.Interface().(tagsetter); ok {
		ts.settag(&t)
	} else if rf.Kind() == reflect.Struct && !special(rf.Type()) {
		settag(rf, &t)
	} else if l.quote {
		t.SetQuotedValue("$1", tostring(rf))
	} else {
		t.SetValue("$1", tostring(rf))
	}

	tags := []m3u.Tag{t}
	if rf.Kind() == reflect.Struct {
		if sym := register(rf.Type()); sym.file >= 0 {
			if file := rf.Field(sym.file).String(); file != "" {
				tags = append(tags, m3u.NewLocation(file))
			}
		}
	}
	return tags
}

// settag sets the attributes of t from the fields of the struct rf
func settag(rf reflect.Value, t *m3u.Tag) {
	sym := register(rf.Type())
	for _, l := range sym.names {
		av := rf.Field(sym.field[l.name].index)
		if l.omitempty && av.IsZero() {
			continue
		}
		val := tostring(av)
		switch {
		case l.name == "$file":
		case l.name == "":
			t.SetValue("$1", val)
		case strings.HasPrefix(l.name, "$"):
			t.SetValue(l.name, val)
		case l.quote:
			t.SetQuotedValue(l.name, val)
		default:
			t.SetValue(l.name, val)
		}
	}
}

func special(t reflect.Type) bool {
	return t == timeType || t == pointType || t == tagType
}

func tostring(rf reflect.Value) string {
	switch t := rf.Interface().(type) {
	case bool:
		if t {
			return "YES"
		}
		return "NO"
	case []string:
		return strings.Join(t, ",")
	case image.Point:
		return fmt.Sprintf("%dx%d", t.X, t.Y)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case time.Duration:
		return strconv.FormatFloat(t.Seconds(), 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(rf.Interface())
}
