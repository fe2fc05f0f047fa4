package hls

import (
	"strconv"
	"strings"
	"time"

	"github.com/as/hlsedit/m3u"
)

// File is an HLS segment in a media playlist and all of its associated tags
type File struct {
	Comment       string    `hls:"#,omitempty" json:",omitempty"`
	Discontinuous bool      `hls:"EXT-X-DISCONTINUITY,omitempty" json:",omitempty"`
	Time          time.Time `hls:"EXT-X-PROGRAM-DATE-TIME,omitempty" json:",omitempty"`
	TimeMap       TimeMap   `hls:"EXT-X-TIMESTAMP-MAP,omitempty" json:",omitempty"`
	Range         ByteRange `hls:"EXT-X-BYTERANGE,omitempty" json:",omitempty"`
	Map           Map       `hls:"EXT-X-MAP,omitempty" json:",omitempty"`
	Key           Key       `hls:"EXT-X-KEY,omitempty" json:",omitempty"`
	Bitrate       int       `hls:"EXT-X-BITRATE,omitempty" json:",omitempty"`
	Gap           bool      `hls:"EXT-X-GAP,omitempty" json:",omitempty"`

	// Asset and other AD-related insertion fields. Most of these can be used to signal
	// AD-insertion and many are redundant.
	Asset        m3u.Tag     `hls:"EXT-X-ASSET,omitempty" json:"-"`
	PlacementOpp bool        `hls:"EXT-X-PLACEMENT-OPPORTUNITY,omitempty" json:",omitempty"`
	CueOut       Cue         `hls:"EXT-X-CUE-OUT,omitempty" json:",omitempty"`
	CueCont      Cue         `hls:"EXT-X-CUE-OUT-CONT,omitempty" json:",omitempty"`
	CueIn        bool        `hls:"EXT-X-CUE-IN,omitempty" json:",omitempty"`
	CueAdobe     CueAdobe    `hls:"EXT-X-CUE,omitempty" json:",omitempty"`
	SCTE35       string      `hls:"EXT-OATCLS-SCTE35,noquote,omitempty" json:",omitempty"`
	Splice       SCTE35      `hls:"EXT-X-SPLICEPOINT-SCTE35,omitempty" json:",omitempty"`
	DateRange    []DateRange `hls:"EXT-X-DATERANGE,aggr,omitempty" json:",omitempty"`

	Extra []m3u.Tag `hls:"*,omitempty" json:"-"`
	Inf   Inf       `hls:"EXTINF" json:",omitempty"`

	// Sequence and At are computed from the playlist structure
	Sequence              int       `json:",omitempty"`
	DiscontinuitySequence int       `json:",omitempty"`
	At                    TimeRange `json:"-"`
}

// IsAD returns true if the segment looks like an AD-break. This currently
// handles the cue tags and SCTE35 date ranges. Examine the SCTE35 fields
// manually to handle other formats.
func (f *File) IsAD() bool {
	if f.CueOut.IsAD() || f.CueCont.IsAD() || f.CueIn {
		return true
	}
	for _, d := range f.DateRange {
		if d.IsAD() {
			return true
		}
	}
	return false
}

// Path returns the segment location relative to the playlist at parent
func (f File) Path(parent string) string {
	return pathof(parent, f.Inf.URL)
}

// Duration returns the segment duration. An optional target can
// be provided as a fallback in case the duration was not set.
func (f File) Duration(target time.Duration) time.Duration {
	if f.Inf.Duration == 0 {
		return target
	}
	return f.Inf.Duration
}

type Key struct {
	Method   string `hls:"METHOD,noquote" json:",omitempty"`
	URI      string `hls:"URI,omitempty" json:",omitempty"`
	IV       string `hls:"IV,noquote,omitempty" json:",omitempty"`
	Format   string `hls:"KEYFORMAT,omitempty" json:",omitempty"`
	Versions string `hls:"KEYFORMATVERSIONS,omitempty" json:",omitempty"`
}

func (m Key) Path(parent string) string {
	return pathof(parent, m.URI)
}

type Map struct {
	URI       string `hls:"URI,omitempty" json:",omitempty"`
	Byterange string `hls:"BYTERANGE,omitempty" json:",omitempty"`
}

func (m Map) Path(parent string) string {
	return pathof(parent, m.URI)
}

type Start struct {
	Offset  time.Duration `hls:"TIME-OFFSET" json:",omitempty"`
	Precise bool          `hls:"PRECISE,omitempty" json:",omitempty"`
}

type TimeMap struct {
	MPEG  int       `hls:"MPEGTS" json:",omitempty"`
	Local time.Time `hls:"LOCAL" json:",omitempty"`
}

type Inf struct {
	Duration    time.Duration `hls:"$1" json:",omitempty"`
	Description string        `hls:"$2" json:",omitempty"`

	URL string `hls:"$file" json:",omitempty"`
}

// settag always writes the title, so an untitled segment keeps its comma
func (h Inf) settag(t *m3u.Tag) {
	t.SetValue("$1", strconv.FormatFloat(h.Duration.Seconds(), 'f', -1, 64))
	t.SetValue("$2", h.Description)
}

// ByteRange is the value of an EXT-X-BYTERANGE tag: <n>[@<o>]
type ByteRange struct {
	V string `hls:"" json:",omitempty"`
}

// Value returns the offset and size of the range. If the range has
// no offset, n is returned as the offset.
func (r ByteRange) Value(n int) (at, size int, err error) {
	a := strings.Split(r.V, "@")
	if size, err = strconv.Atoi(a[0]); err != nil {
		return at, size, err
	}
	if len(a) == 1 {
		return n, size, nil
	}
	at, err = strconv.Atoi(a[1])
	return at, size, err
}
