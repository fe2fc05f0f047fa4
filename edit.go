package hls

import (
	"sort"

	"github.com/apex/log"
	"github.com/as/hlsedit/m3u"
)

// State is the validity of a playlist's cached structure
type State int

const (
	StateRebuild State = iota // the cache is unusable
	StateClean                // the cache matches the tags
	StatePatch                // the cache is valid after applying the pending changes
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StatePatch:
		return "patch"
	}
	return "rebuild"
}

// Change is a single-tag insertion (Delta 1) or deletion (Delta -1)
// at Pos, in the coordinates in effect when it happened
type Change struct {
	Pos, Delta int
}

// maxChanges is the number of pending changes after which a rebuild is
// cheaper than the patch
const maxChanges = 64

// State returns the validity of the cached structure
func (p *Playlist) State() State {
	return p.state
}

// Structure returns the structure of the playlist, patching or rebuilding
// the cached one as needed. It always equals Build(p.All()).
func (p *Playlist) Structure() *Structure {
	switch p.state {
	case StateClean:
		return p.cache
	case StatePatch:
		p.cache = p.cache.patch(p.change)
		p.log.WithField("changes", len(p.change)).Debug("structure patched")
	default:
		s, err := Analyze(p.store.tags)
		ctx := p.log.WithFields(log.Fields{
			"tags":   p.Len(),
			"groups": len(s.Groups),
			"spans":  len(s.Spans),
		})
		if err != nil && p.Len() > 0 {
			ctx.WithError(err).Debug("structure degraded to header")
		} else {
			ctx.Debug("structure rebuilt")
		}
		p.cache = s
	}
	p.state, p.change = StateClean, nil
	return p.cache
}

// Insert inserts the tags before index i. An index out of range is
// clamped to the nearest end.
func (p *Playlist) Insert(i int, t ...m3u.Tag) {
	if len(t) == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i > p.Len() {
		i = p.Len()
	}
	patch := len(t) == 1 && p.interior(i, t[0], true)

	p.own()
	s := p.store.tags
	n := len(s)
	s = append(s, t...)
	copy(s[i+len(t):], s[i:n])
	copy(s[i:], t)
	p.store.tags = s

	if patch {
		p.record(Change{Pos: i, Delta: 1})
	} else {
		p.invalidate("insert")
	}
}

// Append is shorthand for inserting t after the last tag
func (p *Playlist) Append(t ...m3u.Tag) {
	p.Insert(p.Len(), t...)
}

// Delete removes tag i. An index out of range does nothing.
func (p *Playlist) Delete(i int) {
	p.DeleteRange(Range{i, i})
}

// DeleteRange removes the tags in r. The range is clipped to the playlist.
func (p *Playlist) DeleteRange(r Range) {
	r = p.clip(r)
	if r.Len() == 0 {
		return
	}
	patch := r.Len() == 1 && p.interior(r.Start, p.store.tags[r.Start], false)

	p.own()
	s := p.store.tags
	n := copy(s[r.Start:], s[r.End+1:])
	for j := r.Start + n; j < len(s); j++ {
		s[j] = m3u.Tag{}
	}
	p.store.tags = s[:r.Start+n]

	if patch {
		p.record(Change{Pos: r.Start, Delta: -1})
	} else {
		p.invalidate("delete")
	}
}

// Set replaces tag i. An index out of range does nothing. Replacing a
// tag with one that has no structural meaning keeps the structure.
func (p *Playlist) Set(i int, t m3u.Tag) {
	old, ok := p.At(i)
	if !ok {
		return
	}
	p.own()
	p.store.tags[i] = t
	if !neutral(old) || !neutral(t) || opens(old) != opens(t) {
		p.invalidate("set")
	}
}

// Transform replaces every tag with fn's result. The structure is
// always rebuilt.
func (p *Playlist) Transform(fn func(i int, t m3u.Tag) m3u.Tag) {
	p.own()
	for i, t := range p.store.tags {
		p.store.tags[i] = fn(i, t)
	}
	p.invalidate("transform")
}

func (p *Playlist) record(c Change) {
	p.state = StatePatch
	p.change = append(p.change, c)
}

func (p *Playlist) invalidate(op string) {
	if p.state != StateRebuild {
		p.log.WithField("op", op).Debug("structure invalidated")
	}
	p.state, p.change, p.cache = StateRebuild, nil, nil
}

// interior returns true if a single tag edit at i stays strictly inside
// one media segment group of the projected layout. An insertion may land
// just before the location, a deletion may not remove the first tag of
// a group or its location.
func (p *Playlist) interior(i int, t m3u.Tag, insert bool) bool {
	if p.state == StateRebuild || len(p.change) >= maxChanges || !neutral(t) {
		return false
	}
	g, ok := p.groupAt(i)
	if !ok {
		return false
	}
	if insert {
		return g.Start < i && i <= g.End
	}
	return g.Start < i && i < g.End
}

// groupAt returns the projected bounds of the group containing tag i
func (p *Playlist) groupAt(i int) (Range, bool) {
	g := p.cache.Groups
	k := sort.Search(len(g), func(k int) bool {
		return p.project(g[k].End) >= i
	})
	if k == len(g) {
		return Range{}, false
	}
	r := Range{p.project(g[k].Start), p.project(g[k].End)}
	return r, r.Start <= i
}

// project maps a cached index through the pending changes
func (p *Playlist) project(x int) int {
	for _, c := range p.change {
		if x >= c.Pos {
			x += c.Delta
		}
	}
	return x
}

// neutral returns true if t plays no part in deriving the structure
// beyond its position
func neutral(t m3u.Tag) bool {
	d := t.Descriptor()
	return d.Kind() != m3u.KindLocation && d.Role() == 0 && d.Span() == ""
}

// opens returns true if t can't be part of the header or footer
func opens(t m3u.Tag) bool {
	d := t.Descriptor()
	return d.Kind() == m3u.KindLocation || d.Scope() == m3u.ScopeSegment
}
