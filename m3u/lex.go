package m3u

import (
	"io"
	"strings"
)

// Parse reads the playlist in r and tokenizes it into a list of tags
// described by the Default registry
func Parse(r io.Reader) (t []Tag, err error) {
	return Default.Parse(r)
}

// ParseString is like Parse, but tokenizes s. The returned tags refer
// to s instead of copying it.
func ParseString(s string) []Tag {
	return Default.ParseString(s)
}

// Parse reads the playlist in r and tokenizes it with r's descriptors
func (r *Registry) Parse(rd io.Reader) (t []Tag, err error) {
	b, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	return r.ParseString(string(b)), nil
}

// ParseString tokenizes s with r's descriptors
func (r *Registry) ParseString(s string) []Tag {
	return New(r, s).Parse()
}

// Lexer tokenizes a playlist held in a string. It can be reused with Reset.
type Lexer struct {
	reg *Registry
	src string
	pos int
}

// New returns a lexer over src. A nil registry is the Default.
func New(reg *Registry, src string) *Lexer {
	l := &Lexer{}
	l.Reset(reg, src)
	return l
}

func (l *Lexer) Reset(reg *Registry, src string) {
	if reg == nil {
		reg = Default
	}
	l.reg, l.src, l.pos = reg, src, 0
}

// Parse returns every line of the source as a tag. Leading blank lines
// are kept in the first tag's text, other blank lines in the previous
// tag's terminator, so writing Text and Terminator of each tag in order
// reproduces the source exactly. A source holding nothing but whitespace
// has no tags.
func (l *Lexer) Parse() (t []Tag) {
	lead := l.blank()
	for l.pos < len(l.src) {
		t = append(t, l.lexTag())
	}
	if lead > 0 && len(t) > 0 {
		t[0].text = l.src[:lead+len(t[0].text)]
	}
	return t
}

func (l *Lexer) lexTag() Tag {
	start := l.pos
	end := strings.IndexByte(l.src[start:], '\n')
	if end < 0 {
		end = len(l.src)
	} else {
		end += start
	}
	text := l.src[start:end]
	if n := len(text); n > 0 && text[n-1] == '\r' {
		text = text[:n-1]
	}
	l.pos = end
	if l.pos < len(l.src) {
		l.pos++ // newline
	}
	l.blank()
	eol := l.src[start+len(text) : l.pos]

	s := strings.TrimSpace(text)
	switch {
	case s[0] != '#':
		return newtag(Location, "", s, text, eol)
	case strings.HasPrefix(s, "#EXT"):
		name, payload := s, ""
		if i := strings.IndexByte(s, ':'); i >= 0 {
			name, payload = s[:i], s[i+1:]
		}
		return newtag(l.reg.Lookup(name), name, payload, text, eol)
	}
	return newtag(Comment, "", s[1:], text, eol)
}

// blank skips whitespace-only lines and returns the
// number of bytes skipped
func (l *Lexer) blank() int {
	start := l.pos
	for l.pos < len(l.src) {
		end := strings.IndexByte(l.src[l.pos:], '\n')
		line := l.src[l.pos:]
		if end >= 0 {
			line = line[:end+1]
		}
		if strings.TrimSpace(line) != "" {
			break
		}
		l.pos += len(line)
	}
	return l.pos - start
}
