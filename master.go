package hls

import (
	"image"
	"io"

	"github.com/as/hlsedit/m3u"
)

// Master is a master playlist. It contains a list of streams (variants) and
// media information associated by group id. By convention, the master playlist is immutable.
type Master struct {
	M3U         bool         `hls:"EXTM3U" json:",omitempty"`
	Version     int          `hls:"EXT-X-VERSION,omitempty" json:",omitempty"`
	Independent bool         `hls:"EXT-X-INDEPENDENT-SEGMENTS,omitempty" json:",omitempty"`
	Steering    Steering     `hls:"EXT-X-CONTENT-STEERING,omitempty" json:",omitempty"`
	Media       []MediaInfo  `hls:"EXT-X-MEDIA,aggr,omitempty" json:",omitempty"`
	Stream      []StreamInfo `hls:"EXT-X-STREAM-INF,aggr,omitempty" json:",omitempty"`
	IFrame      []StreamInfo `hls:"EXT-X-I-FRAME-STREAM-INF,aggr,omitempty" json:",omitempty"`

	URL string `json:",omitempty"`
}

// Decode decodes the master playlist into m.
func (m *Master) Decode(r io.Reader) error {
	p, err := Decode(r)
	if err != nil {
		return err
	}
	return m.DecodePlaylist(p)
}

// DecodePlaylist decodes the playlist as a master playlist. It returns
// ErrEmpty if the playlist is well-formed, but contains no variant streams.
func (m *Master) DecodePlaylist(p *Playlist) error {
	if !p.IsMaster() {
		return ErrType
	}
	return m.DecodeTag(p.All()...)
}

func (m *Master) DecodeTag(t ...m3u.Tag) error {
	if err := Unmarshal(m, t...); err != nil {
		return err
	}
	if !m.M3U {
		return ErrHeader
	}
	if len(m.Stream) == 0 {
		return ErrEmpty
	}
	return nil
}

// Encode encodes the master
func (m Master) Encode(w io.Writer) (err error) {
	t, err := m.EncodeTag()
	if err != nil {
		return err
	}
	return newPlaylist(t).Encode(w)
}

func (m Master) EncodeTag() (t []m3u.Tag, err error) {
	return Marshal(m)
}

// Len returns the number of variant streams
func (m *Master) Len() int {
	return len(m.Stream)
}

// Paths returns the distinct locations the master playlist refers to:
// the steering manifest, renditions, variants and I-frame streams. Parent
// defaults to m.URL.
func (m *Master) Paths(parent string) []string {
	if parent == "" {
		parent = m.URL
	}
	u := uniq{}
	u.add(m.Steering.Path(parent))
	for _, v := range m.Media {
		u.add(v.Path(parent))
	}
	for _, v := range m.Stream {
		u.add(v.Path(parent))
	}
	for _, v := range m.IFrame {
		u.add(v.Path(parent))
	}
	return u.list
}

type Steering struct {
	URI     string `hls:"SERVER-URI,omitempty" json:",omitempty"`
	Pathway string `hls:"PATHWAY-ID,omitempty" json:",omitempty"`
}

type MediaInfo struct {
	Type       string   `hls:"TYPE,noquote,omitempty" json:",omitempty"`
	Group      string   `hls:"GROUP-ID,omitempty" json:",omitempty"`
	Name       string   `hls:"NAME,omitempty" json:",omitempty"`
	StableID   string   `hls:"STABLE-RENDITION-ID,omitempty" json:",omitempty"`
	Default    bool     `hls:"DEFAULT" json:",omitempty"`
	Autoselect bool     `hls:"AUTOSELECT" json:",omitempty"`
	Character  []string `hls:"CHARACTERISTICS" json:",omitempty"`
	Codecs     []string `hls:"CODECS,omitempty" json:",omitempty"`
	Lang       string   `hls:"LANGUAGE,omitempty" json:",omitempty"`
	Instream   string   `hls:"INSTREAM-ID,omitempty" json:",omitempty"`
	Bitdepth   int      `hls:"BIT-DEPTH,omitempty" json:",omitempty"`
	Samplerate int      `hls:"SAMPLE-RATE,omitempty" json:",omitempty"`
	Channels   string   `hls:"CHANNELS,omitempty" json:",omitempty"`
	URI        string   `hls:"URI,omitempty" json:",omitempty"`
}

type StreamInfo struct {
	URL string `hls:"$file" json:",omitempty"`

	Index        int         `hls:"PROGRAM-ID,omitempty" json:",omitempty"`
	Framerate    float64     `hls:"FRAME-RATE,omitempty" json:",omitempty"`
	Bandwidth    int         `hls:"BANDWIDTH,omitempty" json:",omitempty"`
	BandwidthAvg int         `hls:"AVERAGE-BANDWIDTH,omitempty" json:",omitempty"`
	Codecs       []string    `hls:"CODECS,omitempty" json:",omitempty"`
	Resolution   image.Point `hls:"RESOLUTION,omitempty" json:",omitempty"`
	VideoRange   string      `hls:"VIDEO-RANGE,noquote,omitempty" json:",omitempty"`
	HDCP         string      `hls:"HDCP-LEVEL,noquote,omitempty" json:",omitempty"`

	Audio    string `hls:"AUDIO,omitempty" json:",omitempty"`
	Video    string `hls:"VIDEO,omitempty" json:",omitempty"`
	Subtitle string `hls:"SUBTITLES,omitempty" json:",omitempty"`
	Pathway  string `hls:"PATHWAY-ID,omitempty" json:",omitempty"`

	// Caption is unquoted if the value is NONE. Decoding keeps the source
	// quoting; encoding always quotes.
	Caption string `hls:"CLOSED-CAPTIONS,omitempty" json:",omitempty"`

	// URI is only set in IFrame stream infos
	URI string `hls:"URI,omitempty" json:",omitempty"`
}

// Path is Path
func (m MediaInfo) Path(parent string) string {
	return pathof(parent, m.URI)
}

// Path returns the path to the stream given an optional parent master path. If parent ends in a slash
// we assume parent is just the current working directory, otherwise the base
// name is stripped.
func (s StreamInfo) Path(parent string) string {
	if s.URI != "" {
		return pathof(parent, s.URI)
	}
	return pathof(parent, s.URL)
}

// Path is Path
func (s Steering) Path(parent string) string {
	return pathof(parent, s.URI)
}

// Variants returns the tag range of each variant stream in the playlist,
// from its EXT-X-STREAM-INF tag through its URI line. A stream tag with no
// URI line after it is not a variant.
func (p *Playlist) Variants() (r []Range) {
	open := -1
	p.Each(func(i int, t m3u.Tag) bool {
		switch {
		case t.Is("#EXT-X-STREAM-INF"):
			open = i
		case t.IsLocation() && open >= 0:
			r = append(r, Range{open, i})
			open = -1
		}
		return true
	})
	return r
}

// FilterVariants deletes every variant stream for which keep returns
// false and returns the number deleted. The last variant is never deleted.
func (p *Playlist) FilterVariants(keep func(StreamInfo) bool) (n int) {
	v := p.Variants()
	for i := len(v) - 1; i >= 0; i-- {
		if n == len(v)-1 {
			break
		}
		m := Master{}
		Unmarshal(&m, p.Tags(v[i])...)
		if len(m.Stream) == 1 && !keep(m.Stream[0]) {
			p.DeleteRange(v[i])
			n++
		}
	}
	if n > 0 {
		p.log.WithField("variants", n).Debug("filtered variants")
	}
	return n
}
