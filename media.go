package hls

import (
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/as/hlsedit/m3u"
)

// Media is a media playlist. It consists of a header and one or more files. A file
// is EXTINF and the content of any additional tags that apply to that EXTINF tag.
type Media struct {
	MediaHeader
	File []File `hls:"" json:",omitempty"`

	URL string `json:",omitempty"`
}

type MediaHeader struct {
	M3U           bool          `hls:"EXTM3U" json:",omitempty"`
	Version       int           `hls:"EXT-X-VERSION,omitempty" json:",omitempty"`
	Independent   bool          `hls:"EXT-X-INDEPENDENT-SEGMENTS,omitempty" json:",omitempty"`
	Type          string        `hls:"EXT-X-PLAYLIST-TYPE,noquote,omitempty" json:",omitempty"`
	Target        time.Duration `hls:"EXT-X-TARGETDURATION,omitempty" json:",omitempty"`
	Start         Start         `hls:"EXT-X-START,omitempty" json:",omitempty"`
	Sequence      int           `hls:"EXT-X-MEDIA-SEQUENCE,omitempty" json:",omitempty"`
	Discontinuity int           `hls:"EXT-X-DISCONTINUITY-SEQUENCE,omitempty" json:",omitempty"`
	End           bool          `hls:"EXT-X-ENDLIST,omitempty" json:",omitempty"`
}

// Decode decodes the playlist in r and stores the
// result in m. It returns ErrEmpty if the playlist is
// well-formed, but contains no segments.
func (m *Media) Decode(r io.Reader) error {
	p, err := Decode(r)
	if err != nil {
		return err
	}
	return m.DecodePlaylist(p)
}

// DecodePlaylist decodes the playlist's structure as a media playlist.
// Each file carries the key and map in effect for its segment, even if
// the tags precede it.
func (m *Media) DecodePlaylist(p *Playlist) error {
	if p.IsMaster() {
		return ErrType
	}
	s := p.Structure()
	head := p.Tags(s.Header.Range)
	if s.Footer != nil {
		head = append(head, p.Tags(s.Footer.Range)...)
	}
	if err := Unmarshal(&m.MediaHeader, head...); err != nil {
		return err
	}
	if !m.M3U {
		return ErrHeader
	}
	if !s.CanQueryTimeline() {
		return ErrEmpty
	}

	span := 0
	for i, g := range s.Groups {
		file := File{}
		for span < len(s.Spans) && s.Spans[span].Groups.End < i {
			span++
		}
		for _, v := range s.Spans[span:] {
			if v.Groups.Start > i {
				break
			}
			if v.Groups.Contains(i) {
				Unmarshal(&file, v.Parent)
			}
		}
		if err := Unmarshal(&file, p.Tags(g.Range)...); err != nil {
			return err
		}
		file.Sequence = g.Sequence
		file.DiscontinuitySequence = g.DiscontinuitySequence
		file.At = g.Time
		m.File = append(m.File, file)
	}
	return nil
}

// Encode writes the media playlist to w
func (m Media) Encode(w io.Writer) error {
	p, err := m.Playlist()
	if err != nil {
		return err
	}
	return p.Encode(w)
}

// Playlist returns an editable playlist holding m's tags
func (m Media) Playlist() (*Playlist, error) {
	t, err := m.EncodeTag()
	if err != nil {
		return nil, err
	}
	return newPlaylist(t), nil
}

// EncodeTag returns the tags of the media playlist. Keys and maps are
// only written when they change.
func (m Media) EncodeTag() (t []m3u.Tag, err error) {
	if t, err = Marshal(m.MediaHeader); err != nil {
		return t, err
	}
	var trailer []m3u.Tag
	if len(t) > 0 && t[len(t)-1].Is("#EXT-X-ENDLIST") {
		trailer = append(trailer, t[len(t)-1])
		t = t[:len(t)-1]
	}
	var key Key
	var init Map
	for _, v := range m.File {
		if v.Key == key {
			v.Key = Key{}
		} else {
			key = v.Key
		}
		if v.Map == init {
			v.Map = Map{}
		} else {
			init = v.Map
		}
		tmp, err := Marshal(v)
		t = append(t, tmp...)
		if err != nil {
			return t, err
		}
	}
	return append(t, trailer...), err
}

// Current returns the most-recent segment in the stream
func (m *Media) Current() (f File) {
	if len(m.File) == 0 {
		return
	}
	return m.File[len(m.File)-1]
}

// Len returns the number of segments visibile to the playlist
func (m *Media) Len() int {
	return len(m.File)
}

// Runtime returns the sum of the segment durations
func (m *Media) Runtime() (d time.Duration) {
	for _, f := range m.File {
		d += f.Duration(m.Target)
	}
	return d
}

// Trunc returns a copy of m without the leading segments that would
// leave more than dur of media. The media sequence number and the keys
// and maps in effect are carried over.
func (m Media) Trunc(dur time.Duration) (Media, error) {
	p, err := m.Playlist()
	if err != nil {
		return m, err
	}
	p.Trim(dur.Seconds())
	t := Media{URL: m.URL}
	return t, t.DecodePlaylist(p)
}

// Paths returns the distinct segment, key and map locations in
// playback order. Parent defaults to m.URL.
func (m *Media) Paths(parent string) []string {
	if parent == "" {
		parent = m.URL
	}
	u := uniq{}
	for _, f := range m.File {
		u.add(f.Key.Path(parent))
		u.add(f.Map.Path(parent))
		u.add(f.Path(parent))
	}
	return u.list
}

// AppendSegment adds a segment with the given duration in seconds after
// the last segment. The extra tags are placed before its EXTINF.
func (p *Playlist) AppendSegment(dur float64, title, uri string, extra ...m3u.Tag) {
	s := p.Structure()
	at := p.Len()
	if n := len(s.Groups); n > 0 {
		at = s.Groups[n-1].End + 1
	}
	inf := m3u.NewTag("#EXTINF", strconv.FormatFloat(dur, 'f', -1, 64)+","+title)
	tags := append(append([]m3u.Tag(nil), extra...), inf, m3u.NewLocation(uri))
	p.Insert(at, tags...)
}

// Trim removes segments from the start of the playlist until the rest
// lasts at most keep seconds, and returns the number removed. The media
// and discontinuity sequence numbers are advanced, and keys or maps that
// were declared in removed segments are carried into the first one kept.
func (p *Playlist) Trim(keep float64) int {
	s := p.Structure()
	if !s.CanQueryTimeline() {
		return 0
	}
	k, total := 0, s.Duration()
	for k < len(s.Groups)-1 && total > keep {
		total -= s.Groups[k].Time.Duration
		k++
	}
	if k == 0 {
		return 0
	}
	first := s.Groups[k]
	var carry []m3u.Tag
	for _, v := range s.Spans {
		if v.Groups.Contains(k) && v.ParentIndex < first.Start {
			carry = append(carry, v.Parent)
		}
	}
	disc := first.DiscontinuitySequence
	if first.Discontinuity {
		disc--
	}
	seq := first.Sequence - s.Groups[0].Sequence + p.mediaSequence(s)

	p.DeleteRange(Range{s.Groups[0].Start, s.Groups[k-1].End})
	p.Insert(s.Groups[0].Start, carry...)
	p.setHeader(m3u.RoleMediaSequence, "#EXT-X-MEDIA-SEQUENCE", seq)
	if disc > 0 {
		p.setHeader(m3u.RoleDiscontinuitySequence, "#EXT-X-DISCONTINUITY-SEQUENCE", disc)
	}
	p.log.WithField("segments", k).Debug("trimmed playlist")
	return k
}

// mediaSequence returns the declared media sequence number
func (p *Playlist) mediaSequence(s *Structure) int {
	for _, t := range p.store.tags[s.Header.Start : s.Header.End+1] {
		if t.Descriptor().Role()&m3u.RoleMediaSequence != 0 {
			return atoi(t.Value("$1"))
		}
	}
	return 0
}

// setHeader sets the value of the header tag with the given role, adding
// a tag with the given name after the first header tag if there is none
func (p *Playlist) setHeader(role m3u.Role, name string, n int) {
	s := p.Structure()
	for i := s.Header.Start; i <= s.Header.End; i++ {
		t := p.Tag(i)
		if t.Descriptor().Role()&role != 0 {
			t.SetValue("$1", strconv.Itoa(n))
			p.Set(i, t)
			return
		}
	}
	at := 0
	if s.Header.Len() > 0 {
		at = 1
	}
	p.Insert(at, m3u.NewTag(name, strconv.Itoa(n)))
}

// Rebase resolves every location and URI attribute against base
func (p *Playlist) Rebase(base string) error {
	u, err := url.Parse(base)
	if err != nil {
		return err
	}
	p.Transform(func(i int, t m3u.Tag) m3u.Tag {
		if t.IsLocation() {
			return t.WithPayload(resolve(u, t.Payload()))
		}
		if v, ok := t.Lookup("URI"); ok && v.V != "" {
			t.SetValue("URI", resolve(u, v.V))
		}
		return t
	})
	return nil
}
