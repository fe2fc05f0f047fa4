package hls

import "sort"

// CanQueryTimeline returns true if the structure has media segment groups
func (s *Structure) CanQueryTimeline() bool {
	return len(s.Groups) > 0
}

// Duration returns the sum of the segment durations
func (s *Structure) Duration() float64 {
	if len(s.Groups) == 0 {
		return 0
	}
	return s.Groups[len(s.Groups)-1].Time.End()
}

// group returns the group with the media sequence number seq
func (s *Structure) group(seq int) (*MediaSegmentGroup, bool) {
	if len(s.Groups) == 0 {
		return nil, false
	}
	k := seq - s.Groups[0].Sequence
	if k < 0 || k >= len(s.Groups) {
		return nil, false
	}
	return &s.Groups[k], true
}

// groupAt returns the group containing tag i
func (s *Structure) groupAt(i int) (*MediaSegmentGroup, bool) {
	k := sort.Search(len(s.Groups), func(k int) bool {
		return s.Groups[k].End >= i
	})
	if k == len(s.Groups) || s.Groups[k].Start > i {
		return nil, false
	}
	return &s.Groups[k], true
}

// groupAtTime returns the group whose time range contains sec. Groups
// with no duration are never found.
func (s *Structure) groupAtTime(sec float64) (*MediaSegmentGroup, bool) {
	k := sort.Search(len(s.Groups), func(k int) bool {
		return s.Groups[k].Time.End() > sec
	})
	if k == len(s.Groups) || !s.Groups[k].Time.Contains(sec) {
		return nil, false
	}
	return &s.Groups[k], true
}

// TimeRangeForSequence returns the time range of segment seq
func (s *Structure) TimeRangeForSequence(seq int) (TimeRange, bool) {
	g, ok := s.group(seq)
	if !ok {
		return TimeRange{}, false
	}
	return g.Time, true
}

// TagRangeForSequence returns the tag indices of segment seq
func (s *Structure) TagRangeForSequence(seq int) (Range, bool) {
	g, ok := s.group(seq)
	if !ok {
		return Range{}, false
	}
	return g.Range, true
}

// SequenceForTagIndex returns the sequence number of the segment that tag i belongs to
func (s *Structure) SequenceForTagIndex(i int) (int, bool) {
	g, ok := s.groupAt(i)
	if !ok {
		return 0, false
	}
	return g.Sequence, true
}

// TimeRangeForTagIndex returns the time range of the segment that tag i belongs to
func (s *Structure) TimeRangeForTagIndex(i int) (TimeRange, bool) {
	g, ok := s.groupAt(i)
	if !ok {
		return TimeRange{}, false
	}
	return g.Time, true
}

// SequenceForTime returns the sequence number of the segment playing at sec
func (s *Structure) SequenceForTime(sec float64) (int, bool) {
	g, ok := s.groupAtTime(sec)
	if !ok {
		return 0, false
	}
	return g.Sequence, true
}

// TagRangeForTime returns the tag indices of the segment playing at sec
func (s *Structure) TagRangeForTime(sec float64) (Range, bool) {
	g, ok := s.groupAtTime(sec)
	if !ok {
		return Range{}, false
	}
	return g.Range, true
}

// The playlist forms bring the structure up to date first

func (p *Playlist) CanQueryTimeline() bool {
	return p.Structure().CanQueryTimeline()
}

func (p *Playlist) Duration() float64 {
	return p.Structure().Duration()
}

func (p *Playlist) TimeRangeForSequence(seq int) (TimeRange, bool) {
	return p.Structure().TimeRangeForSequence(seq)
}

func (p *Playlist) TagRangeForSequence(seq int) (Range, bool) {
	return p.Structure().TagRangeForSequence(seq)
}

func (p *Playlist) SequenceForTagIndex(i int) (int, bool) {
	return p.Structure().SequenceForTagIndex(i)
}

func (p *Playlist) TimeRangeForTagIndex(i int) (TimeRange, bool) {
	return p.Structure().TimeRangeForTagIndex(i)
}

func (p *Playlist) SequenceForTime(sec float64) (int, bool) {
	return p.Structure().SequenceForTime(sec)
}

func (p *Playlist) TagRangeForTime(sec float64) (Range, bool) {
	return p.Structure().TagRangeForTime(sec)
}
