package hls

import (
	"strings"
	"testing"
	"time"

	"github.com/as/hlsedit/m3u"
	"github.com/stretchr/testify/require"
)

func TestTrimCarry(t *testing.T) {
	p := DecodeString(sampleLive)
	require.Equal(t, 2, p.Trim(12))
	require.Equal(t, `#EXTM3U
#EXT-X-VERSION:6
#EXT-X-TARGETDURATION:6
#EXT-X-MEDIA-SEQUENCE:102
#EXT-X-DISCONTINUITY-SEQUENCE:3
#EXT-X-MAP:URI="init.mp4"
#EXT-X-KEY:METHOD=AES-128,URI="k2.key"
#EXT-X-DISCONTINUITY
#EXTINF:5.5,
s102.m4s
#EXTINF:6.0,
s103.m4s
#EXT-X-KEY:METHOD=NONE
`, p.String())
	requireFresh(t, p)

	g := p.Groups()
	require.Len(t, g, 2)
	require.Equal(t, 102, g[0].Sequence)
	require.Equal(t, 4, g[0].DiscontinuitySequence)
	require.Equal(t, TimeRange{0, 5.5}, g[0].Time)

	m := Media{}
	require.NoError(t, m.DecodePlaylist(p))
	require.Equal(t, "init.mp4", m.File[0].Map.URI)
	require.Equal(t, "k2.key", m.File[0].Key.URI)
	require.Equal(t, "init.mp4", m.File[1].Map.URI)
}

func TestTrimBounds(t *testing.T) {
	p := DecodeString(sampleLive)
	require.Equal(t, 0, p.Trim(100))
	require.Equal(t, sampleLive, p.String())

	require.Equal(t, 3, p.Trim(0))
	require.Len(t, p.Groups(), 1)
	require.Equal(t, 103, p.Groups()[0].Sequence)
	requireFresh(t, p)

	require.Equal(t, 0, DecodeString("#EXTM3U\n#EXT-X-TARGETDURATION:2\n").Trim(0))
}

func TestTrimAddsSequence(t *testing.T) {
	p := DecodeString(sampleVOD)
	require.Equal(t, 1, p.Trim(2.5))
	require.Equal(t, "#EXTM3U\n#EXT-X-MEDIA-SEQUENCE:1\n#EXT-X-TARGETDURATION:2\n#EXTINF:2.002,\nseg2.ts\n#EXT-X-ENDLIST\n", p.String())
	require.Equal(t, 1, p.Groups()[0].Sequence)
	requireFresh(t, p)
}

func TestTrunc(t *testing.T) {
	m := Media{URL: "live/index.m3u8"}
	require.NoError(t, m.Decode(strings.NewReader(sampleLive)))
	require.Equal(t, 4, m.Len())

	w, err := m.Trunc(12 * time.Second)
	require.NoError(t, err)
	require.Equal(t, 2, w.Len())
	require.Equal(t, 4, m.Len())
	require.Equal(t, "live/index.m3u8", w.URL)
	require.Equal(t, 102, w.Sequence)
	require.Equal(t, 102, w.File[0].Sequence)
	require.Equal(t, "k2.key", w.File[0].Key.URI)
	require.Equal(t, "init.mp4", w.File[0].Map.URI)
	require.Equal(t, "s103.m4s", w.Current().Inf.URL)
	require.Equal(t, 11500*time.Millisecond, w.Runtime())

	w, err = m.Trunc(0)
	require.NoError(t, err)
	require.Equal(t, 1, w.Len())
	require.Equal(t, 103, w.Current().Sequence)

	require.Equal(t, File{}, (&Media{}).Current())
}

func TestMediaPaths(t *testing.T) {
	m := Media{URL: "https://cdn.example.com/live/index.m3u8"}
	require.NoError(t, m.Decode(strings.NewReader(sampleLive)))
	require.Equal(t, []string{
		"https://cdn.example.com/live/k1.key",
		"https://cdn.example.com/live/init.mp4",
		"https://cdn.example.com/live/s100.m4s",
		"https://cdn.example.com/live/s101.m4s",
		"https://cdn.example.com/live/k2.key",
		"https://cdn.example.com/live/s102.m4s",
		"https://cdn.example.com/live/s103.m4s",
	}, m.Paths(""))
	require.Equal(t, "other/s100.m4s", m.Paths("other/")[2])
}

func TestRebase(t *testing.T) {
	p := DecodeString(sampleLive)
	require.NoError(t, p.Rebase("https://cdn.example.com/live/index.m3u8"))
	s := p.String()
	for _, want := range []string{
		"\nhttps://cdn.example.com/live/s100.m4s\n",
		"\nhttps://cdn.example.com/live/s103.m4s\n",
		`#EXT-X-KEY:METHOD=AES-128,URI="https://cdn.example.com/live/k1.key"`,
		`#EXT-X-MAP:URI="https://cdn.example.com/live/init.mp4"`,
		"\n#EXT-X-KEY:METHOD=NONE\n",
	} {
		require.Contains(t, s, want)
	}
	require.Len(t, p.Groups(), 4)

	// absolute references are kept
	p = DecodeString("#EXTM3U\n#EXTINF:1,\nhttp://origin/a.ts\n")
	require.NoError(t, p.Rebase("https://cdn/"))
	require.Equal(t, "#EXTM3U\n#EXTINF:1,\nhttp://origin/a.ts\n", p.String())

	require.Error(t, p.Rebase("%zz"))

	// a malformed reference is left as is
	p = DecodeString("#EXTM3U\n#EXT-X-KEY:METHOD=AES-128,URI=\"k%zz\"\n#EXTINF:2,\nseg%zz.ts\n#EXTINF:2,\nok.ts\n")
	require.NoError(t, p.Rebase("http://cdn.example/"))
	require.Equal(t, "#EXTM3U\n#EXT-X-KEY:METHOD=AES-128,URI=\"k%zz\"\n#EXTINF:2,\nseg%zz.ts\n#EXTINF:2,\nhttp://cdn.example/ok.ts\n", p.String())
}

func TestAppendSegment(t *testing.T) {
	p := DecodeString(sampleLive)
	p.AppendSegment(2, "tail", "s104.m4s", m3u.NewTag("#EXT-X-DISCONTINUITY", ""))
	require.True(t, strings.HasSuffix(p.String(), "s103.m4s\n#EXT-X-DISCONTINUITY\n#EXTINF:2,tail\ns104.m4s\n#EXT-X-KEY:METHOD=NONE\n"))

	g := p.Groups()
	require.Len(t, g, 5)
	last := g[4]
	require.Equal(t, 104, last.Sequence)
	require.True(t, last.Discontinuity)
	require.Equal(t, 5, last.DiscontinuitySequence)
	require.Equal(t, TimeRange{21.5, 2}, last.Time)
	requireFresh(t, p)
}
