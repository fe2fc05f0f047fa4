package hls

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/as/hlsedit/m3u"
)

// Range is an inclusive interval of indices. An empty range has End < Start.
type Range struct {
	Start, End int
}

// Len returns the number of indices in r
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains returns true if i is in r
func (r Range) Contains(i int) bool {
	return i >= r.Start && i <= r.End
}

// shift moves the bounds at or after pos by delta
func (r Range) shift(c Change) Range {
	if r.Start >= c.Pos {
		r.Start += c.Delta
	}
	if r.End >= c.Pos {
		r.End += c.Delta
	}
	return r
}

// TimeRange is the half-open interval [Start, Start+Duration) in seconds
type TimeRange struct {
	Start    float64
	Duration float64
}

// End returns the first instant after the range
func (t TimeRange) End() float64 {
	return t.Start + t.Duration
}

// Contains returns true if sec falls inside the range
func (t TimeRange) Contains(sec float64) bool {
	return sec >= t.Start && sec < t.End()
}

// TagGroup is a contiguous run of tags
type TagGroup struct {
	Range
}

// MediaSegmentGroup is the run of tags describing one media segment. It
// ends with the segment's location and holds exactly one duration tag.
type MediaSegmentGroup struct {
	TagGroup
	Sequence              int
	Time                  TimeRange
	Discontinuity         bool
	DiscontinuitySequence int
}

// TagSpan is a tag that stays in effect for a run of media segment
// groups, until the next tag of the same span class or the end of the
// playlist. Groups indexes Structure.Groups, not tags.
type TagSpan struct {
	Parent      m3u.Tag
	ParentIndex int
	Groups      Range
}

// Structure is derived from a tag sequence. It is immutable once built;
// callers must not modify its slices.
type Structure struct {
	Header TagGroup
	Footer *TagGroup
	Groups []MediaSegmentGroup
	Spans  []TagSpan
}

// StructureError says why a tag sequence has no media segment structure
type StructureError struct {
	Index  int // tag index, or -1
	Reason string
}

func (e *StructureError) Error() string {
	if e.Index < 0 {
		return "hls: structure: " + e.Reason
	}
	return fmt.Sprintf("hls: structure: tag %d: %s", e.Index, e.Reason)
}

const (
	reasonNoSegments    = "no media segments"
	reasonNoDuration    = "location without a duration tag"
	reasonManyDurations = "more than one duration tag in a segment"
)

// Build derives the structure of t in one pass. It never fails: a tag
// sequence without a well formed segment structure is all header.
func Build(t []m3u.Tag) *Structure {
	s, _ := Analyze(t)
	return s
}

// Analyze is like Build but also returns a *StructureError when the
// structure degraded to all header.
func Analyze(t []m3u.Tag) (*Structure, error) {
	b := builder{start: -1, header: -1, open: map[string]int{}}
	for i := range t {
		if !b.add(i, t[i]) {
			break
		}
	}
	return b.finish(t)
}

type builder struct {
	inbody bool
	header int // last header index
	start  int // start of the open group, or -1

	durs int
	dur  float64
	disc bool
	at   float64

	seq, skip, dseq int

	groups []MediaSegmentGroup
	spans  []TagSpan
	open   map[string]int
	err    *StructureError
}

// add processes tag i and returns false if the structure is malformed
func (b *builder) add(i int, t m3u.Tag) bool {
	d := t.Descriptor()
	loc := d.Kind() == m3u.KindLocation
	if !b.inbody {
		if !loc && d.Scope() != m3u.ScopeSegment {
			b.header = i
		} else {
			b.inbody = true
		}
	}
	if b.inbody && b.start < 0 {
		b.start = i
	}

	role := d.Role()
	if len(b.groups) == 0 {
		switch {
		case role&m3u.RoleMediaSequence != 0:
			b.seq = atoi(t.Value("$1"))
		case role&m3u.RoleDiscontinuitySequence != 0:
			b.dseq = atoi(t.Value("$1"))
		case role&m3u.RoleSkip != 0:
			b.skip += atoi(m3u.KeySkippedSegments.Get(t))
		}
	}
	if b.inbody {
		if role&m3u.RoleDuration != 0 {
			b.durs++
			b.dur, _ = t.Duration()
		}
		if role&m3u.RoleDiscontinuity != 0 {
			b.disc = true
		}
	}
	if class := d.Span(); class != "" {
		g := len(b.groups)
		if j, ok := b.open[class]; ok {
			b.spans[j].Groups.End = g - 1
		}
		b.open[class] = len(b.spans)
		b.spans = append(b.spans, TagSpan{Parent: t, ParentIndex: i, Groups: Range{g, -1}})
	}
	if !loc {
		return true
	}

	switch {
	case b.durs == 0:
		b.err = &StructureError{Index: i, Reason: reasonNoDuration}
		return false
	case b.durs > 1:
		b.err = &StructureError{Index: i, Reason: reasonManyDurations}
		return false
	}
	b.groups = append(b.groups, MediaSegmentGroup{
		TagGroup:      TagGroup{Range{b.start, i}},
		Time:          TimeRange{Start: b.at, Duration: b.dur},
		Discontinuity: b.disc,
	})
	b.at += b.dur
	b.start, b.durs, b.dur, b.disc = -1, 0, 0, false
	return true
}

func (b *builder) finish(t []m3u.Tag) (*Structure, error) {
	if b.err == nil && len(b.groups) == 0 {
		b.err = &StructureError{Index: -1, Reason: reasonNoSegments}
	}
	if b.err != nil {
		return &Structure{Header: TagGroup{Range{0, len(t) - 1}}}, b.err
	}

	s := &Structure{
		Header: TagGroup{Range{0, b.header}},
		Groups: b.groups,
	}
	dseq := b.dseq
	for i := range s.Groups {
		g := &s.Groups[i]
		g.Sequence = b.seq + b.skip + i
		if g.Discontinuity {
			dseq++
		}
		g.DiscontinuitySequence = dseq
	}

	last := len(s.Groups) - 1
	for _, v := range b.spans {
		if v.Groups.End < 0 {
			v.Groups.End = last
		}
		if v.Groups.Start <= v.Groups.End {
			s.Spans = append(s.Spans, v)
		}
	}

	// the footer stops at the first tag that would open another group
	end := s.Groups[last].End
	j := end + 1
	for ; j < len(t); j++ {
		d := t[j].Descriptor()
		if d.Kind() == m3u.KindLocation || d.Scope() == m3u.ScopeSegment {
			break
		}
	}
	if j > end+1 {
		s.Footer = &TagGroup{Range{end + 1, j - 1}}
	}
	return s, nil
}

// Tags returns the number of tags covered by the structure's regions
func (s *Structure) Tags() (n int) {
	n = s.Header.Len()
	for _, g := range s.Groups {
		n += g.Len()
	}
	if s.Footer != nil {
		n += s.Footer.Len()
	}
	return n
}

// patch returns a copy of s with the changes applied in order
func (s *Structure) patch(c []Change) *Structure {
	t := &Structure{
		Header: s.Header,
		Groups: append([]MediaSegmentGroup(nil), s.Groups...),
		Spans:  append([]TagSpan(nil), s.Spans...),
	}
	var footer TagGroup
	if s.Footer != nil {
		footer = *s.Footer
	}
	for _, c := range c {
		for i := range t.Groups {
			t.Groups[i].Range = t.Groups[i].shift(c)
		}
		for i := range t.Spans {
			if t.Spans[i].ParentIndex >= c.Pos {
				t.Spans[i].ParentIndex += c.Delta
			}
		}
		if s.Footer != nil {
			footer.Range = footer.shift(c)
		}
	}
	if s.Footer != nil {
		t.Footer = &footer
	}
	return t
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
