package hls

import (
	"strconv"
	"time"

	"github.com/as/hlsedit/m3u"
)

// EXT-X-SPLICEPOINT-SCTE35 and EXT-OATCLS-SCTE35 are also supported
// and are contained in hls.File as base64-encoded strings. They are in binary splice
// insert format.
//
// For reference, Google DAI supports the following binary messages
// under the EXT-OATCLS-SCTE35 tag:
//
// SCTE35 Binary Time Signal: Break Start/End (34/35)
// SCTE35 Binary Time Signal: Provider Ad Start/End (48/49)
// SCTE35 Binary Time Signal: Provider Placement Opportunity (52/53)
// SCTE35 Binary Splice Insert
//
// As well as these tagged HLS messages:
//
// EXT-X-CUE-IN (Cue)
// EXT-X-CUE-OUT (Cue)
// EXT-X-CUE (CueAdobe) [Adobe Prime Time]
// EXT-X-DATERANGE (Official HLS Standard)

type SCTE35 struct {
	ID       string        `hls:"ID,omitempty" json:",omitempty"`
	Cue      string        `hls:"CUE,omitempty" json:",omitempty"`
	Duration time.Duration `hls:"DURATION,omitempty" json:",omitempty"`
	Elapsed  time.Duration `hls:"ELAPSED,omitempty" json:",omitempty"`
	Time     time.Duration `hls:"TIME,omitempty" json:",omitempty"`
	Type     int           `hls:"TYPE,omitempty" json:",omitempty"`
	UPID     string        `hls:"UPID,omitempty" json:",omitempty"`
	Blackout string        `hls:"BLACKOUT,omitempty" json:",omitempty"`
	CueIn    string        `hls:"CUE-IN,omitempty" json:",omitempty"`
	CueOut   string        `hls:"CUE-OUT,omitempty" json:",omitempty"`
	SegNE    string        `hls:"SEGNE,omitempty" json:",omitempty"`
}

// IsAD returns true if the cue is a cue-in or cue-out point
func (c SCTE35) IsAD() bool {
	return c.CueIn != "" || c.CueOut != ""
}

// DateRange is part of the official HLS specification, located here:
//
// https://datatracker.ietf.org/doc/html/draft-pantos-hls-rfc8216bis#section-4.4.5.1
type DateRange struct {
	ID       string        `hls:"ID,omitempty" json:",omitempty"`
	Class    string        `hls:"CLASS,omitempty" json:",omitempty"`
	Start    time.Time     `hls:"START-DATE,quote,omitempty" json:",omitempty"`
	Cue      string        `hls:"CUE,omitempty" json:",omitempty"`
	End      time.Time     `hls:"END-DATE,quote,omitempty" json:",omitempty"`
	Duration time.Duration `hls:"DURATION,omitempty" json:",omitempty"`
	Planned  time.Duration `hls:"PLANNED-DURATION,omitempty" json:",omitempty"`
	CueIn    string        `hls:"SCTE35-IN,noquote,omitempty" json:",omitempty"`
	CueOut   string        `hls:"SCTE35-OUT,noquote,omitempty" json:",omitempty"`
	Cmd      string        `hls:"SCTE35-CMD,noquote,omitempty" json:",omitempty"`
	EndNext  bool          `hls:"END-ON-NEXT,omitempty" json:",omitempty"`
}

// IsAD returns true if the cue is a cue-in or cue-out point
func (c DateRange) IsAD() bool {
	return c.CueIn != "" || c.CueOut != ""
}

// Cue is used by EXT-X-CUE-IN / EXT-X-CUE-OUT pairs
// the ID field is supported by Google Ad Manager for CUE-OUTs
type Cue struct {
	Duration time.Duration `hls:"$1" json:",omitempty"`
	Elapsed  time.Duration `hls:"ELAPSEDTIME" json:",omitempty"`
	ID       string        `hls:"BREAKID" json:",omitempty"`
	SCTE35   string        `hls:"SCTE35" json:",omitempty"`
	Set      bool          `json:",omitempty"`
}

// IsAD returns true if the cue is a cue-in or cue-out point
func (c Cue) IsAD() bool {
	return c.Set || c.Duration != 0
}

func (c Cue) settag(t *m3u.Tag) {
	if c.Duration != 0 {
		t.SetValue("DURATION", seconds(c.Duration))
	}
	if c.ID != "" {
		t.SetValue("BREAKID", c.ID)
	}
	if c.Elapsed != 0 {
		t.SetValue("ELAPSEDTIME", seconds(c.Elapsed))
	}
	if c.SCTE35 != "" {
		t.SetValue("SCTE35", c.SCTE35)
	}
}

// decodetag accepts both the bare duration and the DURATION attribute
func (c *Cue) decodetag(t m3u.Tag) {
	dur := time.Duration(0)
	for _, v := range t.Values().Args() {
		dur, _ = time.ParseDuration(v.V + "s")
		if dur != 0 {
			break
		}
	}
	if dur == 0 {
		dur, _ = time.ParseDuration(m3u.KeyDuration.Get(t) + "s")
	}
	c.Duration = dur
	c.Elapsed, _ = time.ParseDuration(m3u.KeyElapsedTime.Get(t) + "s")
	c.Set = true
	c.ID = m3u.KeyBreakID.Get(t)
	c.SCTE35 = m3u.KeySCTE35.Get(t)
}

// CueAdobe is used by Adobe Prime Time in EXT-X-CUE tags
type CueAdobe struct {
	ID       string        `hls:"ID" json:",omitempty"`
	Type     string        `hls:"TYPE" json:",omitempty"`
	Duration time.Duration `hls:"DURATION" json:",omitempty"`
	Time     time.Duration `hls:"TIME" json:",omitempty"`
	Elapsed  time.Duration `hls:"ELAPSED" json:",omitempty"`
}

// IsAdMarker returns true if the tag signals the start, continuation or
// end of an ad break
func IsAdMarker(t m3u.Tag) bool {
	switch t.Name() {
	case "#EXT-X-CUE-OUT", "#EXT-X-CUE-OUT-CONT", "#EXT-X-CUE-IN", "#EXT-X-CUE",
		"#EXT-OATCLS-SCTE35", "#EXT-X-SPLICEPOINT-SCTE35",
		"#EXT-X-ASSET", "#EXT-X-PLACEMENT-OPPORTUNITY":
		return true
	case "#EXT-X-DATERANGE":
		v := t.Values()
		return v.Has("SCTE35-OUT") || v.Has("SCTE35-IN") || v.Has("SCTE35-CMD")
	}
	return false
}

// CueOut returns an EXT-X-CUE-OUT tag for a break of the given duration
func CueOut(dur time.Duration, id string) m3u.Tag {
	return MarshalTag("#EXT-X-CUE-OUT", Cue{Duration: dur, ID: id})
}

// CueIn returns an EXT-X-CUE-IN tag
func CueIn() m3u.Tag {
	return m3u.NewTag("#EXT-X-CUE-IN", "")
}

// InsertAdMarker inserts t as the last tag before the location of the
// segment with sequence number seq. It returns false if there is no such
// segment.
func (p *Playlist) InsertAdMarker(seq int, t m3u.Tag) bool {
	r, ok := p.TagRangeForSequence(seq)
	if !ok {
		return false
	}
	p.Insert(r.End, t)
	return true
}

// RemoveAdMarkers deletes every ad marker and returns the number removed
func (p *Playlist) RemoveAdMarkers() (n int) {
	for i := p.Len() - 1; i >= 0; i-- {
		if IsAdMarker(p.Tag(i)) {
			p.Delete(i)
			n++
		}
	}
	if n > 0 {
		p.log.WithField("markers", n).Debug("removed ad markers")
	}
	return n
}

// AdBreaks returns the sequence numbers of the segments carrying ad markers
func (p *Playlist) AdBreaks() (seq []int) {
	s := p.Structure()
	for _, g := range s.Groups {
		for _, t := range p.store.tags[g.Start : g.End+1] {
			if IsAdMarker(t) {
				seq = append(seq, g.Sequence)
				break
			}
		}
	}
	return seq
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
