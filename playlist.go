package hls

import (
	"sync/atomic"

	"github.com/apex/log"
	"github.com/as/hlsedit/m3u"
)

// tagStore is the tag sequence shared by a playlist and its clones. It is
// copied by the first clone to write while refs > 1.
type tagStore struct {
	tags []m3u.Tag
	refs int32
}

// Playlist is an ordered, editable sequence of tags with a lazily
// maintained Structure.
//
// Clone is cheap: clones share the tag sequence until one of them writes.
// A single Playlist is not safe for concurrent use, but distinct clones
// may be used from different goroutines.
type Playlist struct {
	store *tagStore

	cache  *Structure
	state  State
	change []Change

	log log.Interface
}

// New returns a playlist holding a copy of t
func New(t ...m3u.Tag) *Playlist {
	return newPlaylist(append([]m3u.Tag(nil), t...))
}

func newPlaylist(t []m3u.Tag) *Playlist {
	return &Playlist{
		store: &tagStore{tags: t, refs: 1},
		state: StateRebuild,
		log:   log.Log,
	}
}

// SetLogger sets the logger that receives structure maintenance events
// at debug level. A nil logger restores the default.
func (p *Playlist) SetLogger(l log.Interface) {
	if l == nil {
		l = log.Log
	}
	p.log = l
}

// Clone returns a playlist with the same tags and structure. The tag
// sequence is copied by the first of the two to be modified.
func (p *Playlist) Clone() *Playlist {
	atomic.AddInt32(&p.store.refs, 1)
	q := *p
	q.change = append([]Change(nil), p.change...)
	return &q
}

// own makes the tag store exclusive to p
func (p *Playlist) own() {
	if atomic.LoadInt32(&p.store.refs) <= 1 {
		return
	}
	tags := make([]m3u.Tag, len(p.store.tags), cap(p.store.tags))
	copy(tags, p.store.tags)
	atomic.AddInt32(&p.store.refs, -1)
	p.store = &tagStore{tags: tags, refs: 1}
}

// Len returns the number of tags
func (p *Playlist) Len() int {
	return len(p.store.tags)
}

// At returns tag i
func (p *Playlist) At(i int) (m3u.Tag, bool) {
	if i < 0 || i >= p.Len() {
		return m3u.Tag{}, false
	}
	return p.store.tags[i], true
}

// Tag returns tag i, or the zero tag if i is out of range
func (p *Playlist) Tag(i int) m3u.Tag {
	t, _ := p.At(i)
	return t
}

// Tags returns a copy of the tags in r, clipped to the playlist
func (p *Playlist) Tags(r Range) []m3u.Tag {
	r = p.clip(r)
	if r.Len() == 0 {
		return nil
	}
	return append([]m3u.Tag(nil), p.store.tags[r.Start:r.End+1]...)
}

// All returns a copy of every tag
func (p *Playlist) All() []m3u.Tag {
	return append([]m3u.Tag(nil), p.store.tags...)
}

// Each calls fn for each tag in order until fn returns false
func (p *Playlist) Each(fn func(i int, t m3u.Tag) bool) {
	for i, t := range p.store.tags {
		if !fn(i, t) {
			return
		}
	}
}

// IsMaster returns true if the playlist looks like a master playlist
func (p *Playlist) IsMaster() bool {
	return IsMaster(p.store.tags)
}

// Header returns the header group
func (p *Playlist) Header() TagGroup {
	return p.Structure().Header
}

// Footer returns the footer group, if there is one
func (p *Playlist) Footer() (TagGroup, bool) {
	f := p.Structure().Footer
	if f == nil {
		return TagGroup{}, false
	}
	return *f, true
}

// Groups returns the media segment groups. The slice must not be modified.
func (p *Playlist) Groups() []MediaSegmentGroup {
	return p.Structure().Groups
}

// Spans returns the tag spans. The slice must not be modified.
func (p *Playlist) Spans() []TagSpan {
	return p.Structure().Spans
}

func (p *Playlist) clip(r Range) Range {
	if r.Start < 0 {
		r.Start = 0
	}
	if r.End >= p.Len() {
		r.End = p.Len() - 1
	}
	return r
}
