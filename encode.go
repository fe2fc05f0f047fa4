package hls

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/as/hlsedit/m3u"
)

// WriteError is returned by WriteTo when a modified tag lacks a value its
// type requires. The tags before it have been written.
type WriteError struct {
	Index int
	Name  string
	Key   string
	Err   error
}

func (e *WriteError) Error() string {
	name := e.Name
	if name == "" {
		name = "location"
	}
	return fmt.Sprintf("hls: write tag %d (%s): %s: %v", e.Index, name, e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// WriteTo writes the playlist to w. Unmodified tags are written exactly
// as read. A modified tag is written in canonical form after checking it
// carries the values its type requires.
func (p *Playlist) WriteTo(w io.Writer) (n int64, err error) {
	bw := bufio.NewWriter(w)
	tags := p.store.tags
	for i, t := range tags {
		if t.Modified() {
			if key, ok := missing(t); !ok {
				if err := bw.Flush(); err != nil {
					return n, err
				}
				return n, &WriteError{Index: i, Name: t.Name(), Key: key, Err: ErrMissingValue}
			}
		}
		m, err := bw.WriteString(t.Text())
		n += int64(m)
		if err != nil {
			return n, err
		}
		eol := t.Terminator()
		if eol == "" && i < len(tags)-1 {
			eol = "\n"
		}
		m, err = bw.WriteString(eol)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// Encode writes the playlist to w
func (p *Playlist) Encode(w io.Writer) error {
	_, err := p.WriteTo(w)
	return err
}

// String returns the encoded playlist. If encoding fails, the
// output stops before the offending tag.
func (p *Playlist) String() string {
	sb := &strings.Builder{}
	p.WriteTo(sb)
	return sb.String()
}

// missing returns the first required key t lacks
func missing(t m3u.Tag) (key string, ok bool) {
	for _, k := range t.Descriptor().Required() {
		if v, ok := t.Lookup(k); !ok || v.V == "" {
			return k, false
		}
	}
	return "", true
}
