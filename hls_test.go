package hls

import (
	"bytes"
	"image"
	"reflect"
	"strings"
	"testing"
	"time"
)

const sampleMaster = `
	#EXTM3U
	#EXT-X-VERSION:3
	#EXT-X-INDEPENDENT-SEGMENTS
	#EXT-X-STREAM-INF:BANDWIDTH=1111,AVERAGE-BANDWIDTH=1000,RESOLUTION=1x1,FRAME-RATE=29.970,CODECS="avc1.4D401F,mp4a.40.2"
	m1.m3u8
	#EXT-X-STREAM-INF:BANDWIDTH=2222,AVERAGE-BANDWIDTH=2000,RESOLUTION=2x2,FRAME-RATE=29.970,CODECS="avc1.4D401F,mp4a.40.2"
	m2.m3u8
	#EXT-X-STREAM-INF:BANDWIDTH=3333,AVERAGE-BANDWIDTH=3000,RESOLUTION=3x3,FRAME-RATE=29.970,CODECS="avc1.4D401F,mp4a.40.2"
	m3.m3u8
	#EXT-X-STREAM-INF:BANDWIDTH=4444,AVERAGE-BANDWIDTH=4000,RESOLUTION=4x4,FRAME-RATE=29.970,CODECS="avc1.4D401E,mp4a.40.2"
	m4.m3u8
	#EXT-X-STREAM-INF:BANDWIDTH=5555,AVERAGE-BANDWIDTH=5000,RESOLUTION=5x5,FRAME-RATE=29.970,CODECS="avc1.4D401E,mp4a.40.2"
	m5.m3u8
	#EXT-X-STREAM-INF:BANDWIDTH=6666,AVERAGE-BANDWIDTH=6000,RESOLUTION=6x6,FRAME-RATE=29.970,CODECS="avc1.4D400D,mp4a.40.2"
	m6.m3u8
	`

const sampleMedia = `
	#EXTM3U
	#EXT-X-VERSION:3
	#EXT-X-INDEPENDENT-SEGMENTS
	#EXT-X-PLAYLIST-TYPE:EVENT
	#EXT-X-START:TIME-OFFSET=25,PRECISE=YES
	#EXT-X-TARGETDURATION:10
	#EXT-X-MEDIA-SEQUENCE:1
	#EXT-X-DISCONTINUITY-SEQUENCE:2
	#EXTINF:10.0,
	ad0.ts
	#EXTINF:8.0,
	ad1.ts?m=142
	#EXT-X-DISCONTINUITY
	#EXT-X-PROGRAM-DATE-TIME:2021-01-11T07:59:41.005Z
	#EXTINF:10.0,
	movieA.ts
	#EXTINF:10.0,
	movieB.ts
	#EXT-X-ENDLIST
	`

func TestDecodeMaster(t *testing.T) {
	want := Master{
		M3U:         true,
		Version:     3,
		Independent: true,
		Stream: []StreamInfo{
			{URL: "m1.m3u8", Bandwidth: 1111, BandwidthAvg: 1000, Resolution: image.Pt(1, 1), Codecs: []string{"avc1.4D401F", "mp4a.40.2"}, Framerate: 29.97},
			{URL: "m2.m3u8", Bandwidth: 2222, BandwidthAvg: 2000, Resolution: image.Pt(2, 2), Codecs: []string{"avc1.4D401F", "mp4a.40.2"}, Framerate: 29.97},
			{URL: "m3.m3u8", Bandwidth: 3333, BandwidthAvg: 3000, Resolution: image.Pt(3, 3), Codecs: []string{"avc1.4D401F", "mp4a.40.2"}, Framerate: 29.97},
			{URL: "m4.m3u8", Bandwidth: 4444, BandwidthAvg: 4000, Resolution: image.Pt(4, 4), Codecs: []string{"avc1.4D401E", "mp4a.40.2"}, Framerate: 29.97},
			{URL: "m5.m3u8", Bandwidth: 5555, BandwidthAvg: 5000, Resolution: image.Pt(5, 5), Codecs: []string{"avc1.4D401E", "mp4a.40.2"}, Framerate: 29.97},
			{URL: "m6.m3u8", Bandwidth: 6666, BandwidthAvg: 6000, Resolution: image.Pt(6, 6), Codecs: []string{"avc1.4D400D", "mp4a.40.2"}, Framerate: 29.97},
		},
	}

	m := Master{}
	if err := m.Decode(strings.NewReader(sampleMaster)); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(m, want) {
		t.Fatalf("mismatch:\n\t\thave: %+v\n\t\twant: %+v", m, want)
	}
	if m.Stream[0].Path("http://example.com/video/master.m3u8") != "http://example.com/video/m1.m3u8" {
		t.Fatalf("bad path: %q", m.Stream[0].Path("http://example.com/video/master.m3u8"))
	}
}

func TestDecodeMedia(t *testing.T) {
	tm, _ := time.Parse("2006-01-02T15:04:05.000Z", "2021-01-11T07:59:41.005Z")
	want := Media{
		MediaHeader: MediaHeader{
			M3U:           true,
			Version:       3,
			Independent:   true,
			Type:          "EVENT",
			Target:        10 * time.Second,
			Sequence:      1,
			Discontinuity: 2,
			Start:         Start{Offset: 25 * time.Second, Precise: true},
			End:           true,
		},
		File: []File{
			{Inf: Inf{10 * time.Second, "", "ad0.ts"}, Sequence: 1, DiscontinuitySequence: 2, At: TimeRange{0, 10}},
			{Inf: Inf{8 * time.Second, "", "ad1.ts?m=142"}, Sequence: 2, DiscontinuitySequence: 2, At: TimeRange{10, 8}},
			{Inf: Inf{10 * time.Second, "", "movieA.ts"}, Discontinuous: true, Time: tm, Sequence: 3, DiscontinuitySequence: 3, At: TimeRange{18, 10}},
			{Inf: Inf{10 * time.Second, "", "movieB.ts"}, Sequence: 4, DiscontinuitySequence: 3, At: TimeRange{28, 10}},
		},
	}

	m := Media{}
	if err := m.Decode(strings.NewReader(sampleMedia)); err != nil {
		t.Fatal(err)
	}
	if m.Version != 3 {
		t.Fatalf("version: %v", m.Version)
	}
	if !reflect.DeepEqual(m, want) {
		t.Fatalf("mismatch:\n\t\thave: %#v\n\t\twant: %#v", m, want)
	}
	if m.Runtime() != 38*time.Second {
		t.Fatalf("runtime: %v", m.Runtime())
	}
}

func TestDecodeSticky(t *testing.T) {
	m := Media{}
	if err := m.Decode(strings.NewReader(sampleLive)); err != nil {
		t.Fatal(err)
	}
	keys := []string{}
	for _, f := range m.File {
		keys = append(keys, f.Key.URI)
		if f.Map.URI != "init.mp4" {
			t.Fatalf("seq %d: map %q", f.Sequence, f.Map.URI)
		}
	}
	if want := []string{"k1.key", "k1.key", "k2.key", "k2.key"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys: have %q want %q", keys, want)
	}
	if f := m.File[1]; !f.IsAD() || f.CueOut.Duration != 30*time.Second {
		t.Fatalf("cue: %+v", f.CueOut)
	}
	if m.File[0].IsAD() {
		t.Fatalf("file 0 is not an ad")
	}
}

func TestDecodeType(t *testing.T) {
	if err := (&Media{}).Decode(strings.NewReader(sampleMaster)); err != ErrType {
		t.Fatalf("media from master: %v", err)
	}
	if err := (&Master{}).Decode(strings.NewReader(sampleMedia)); err != ErrType {
		t.Fatalf("master from media: %v", err)
	}
	if err := (&Media{}).Decode(strings.NewReader("#EXT-X-VERSION:3\n#EXTINF:1,\na.ts\n")); err != ErrHeader {
		t.Fatalf("no header: %v", err)
	}
	if err := (&Media{}).Decode(strings.NewReader("#EXTM3U\n#EXT-X-TARGETDURATION:2\n")); err != ErrEmpty {
		t.Fatalf("empty: %v", err)
	}
}

func TestEncodeMedia(t *testing.T) {
	m := Media{}
	if err := m.Decode(strings.NewReader(sampleMedia)); err != nil {
		t.Fatal(err)
	}
	buf := &bytes.Buffer{}
	if err := m.Encode(buf); err != nil {
		t.Fatal(err)
	}
	want := `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-INDEPENDENT-SEGMENTS
#EXT-X-PLAYLIST-TYPE:EVENT
#EXT-X-TARGETDURATION:10
#EXT-X-START:TIME-OFFSET=25,PRECISE=YES
#EXT-X-MEDIA-SEQUENCE:1
#EXT-X-DISCONTINUITY-SEQUENCE:2
#EXTINF:10,
ad0.ts
#EXTINF:8,
ad1.ts?m=142
#EXT-X-DISCONTINUITY
#EXT-X-PROGRAM-DATE-TIME:2021-01-11T07:59:41.005Z
#EXTINF:10,
movieA.ts
#EXTINF:10,
movieB.ts
#EXT-X-ENDLIST
`
	if have := buf.String(); have != want {
		t.Fatalf("encode:\n\t\thave: %q\n\t\twant: %q", have, want)
	}

	m2 := Media{}
	if err := m2.Decode(buf); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(m, m2) {
		t.Fatalf("round trip:\n\t\thave: %#v\n\t\twant: %#v", m2, m)
	}
}

func TestEncodeMaster(t *testing.T) {
	m := Master{}
	if err := m.Decode(strings.NewReader(sampleMaster)); err != nil {
		t.Fatal(err)
	}
	buf := &bytes.Buffer{}
	if err := m.Encode(buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-INDEPENDENT-SEGMENTS\n#EXT-X-STREAM-INF:FRAME-RATE=29.97,BANDWIDTH=1111,AVERAGE-BANDWIDTH=1000,CODECS=\"avc1.4D401F,mp4a.40.2\",RESOLUTION=1x1\nm1.m3u8\n") {
		t.Fatalf("encode: %q", buf.String())
	}
	m2 := Master{}
	if err := m2.Decode(buf); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(m, m2) {
		t.Fatalf("round trip:\n\t\thave: %+v\n\t\twant: %+v", m2, m)
	}
}

func TestPathof(t *testing.T) {
	for _, tc := range []struct {
		parent, ref, want string
	}{
		{"", "", ""},
		{"a/b/index.m3u8", "seg.ts", "a/b/seg.ts"},
		{"a/b/", "seg.ts", "a/b/seg.ts"},
		{"a/b/index.m3u8", "/seg.ts", "/seg.ts"},
		{"a/b/index.m3u8", "http://cdn/seg.ts", "http://cdn/seg.ts"},
		{"https://x.com/v/index.m3u8", "../seg.ts", "https://x.com/seg.ts"},
		{"https://x.com/v/index.m3u8", "seg%zz.ts", "seg%zz.ts"},
	} {
		if have := pathof(tc.parent, tc.ref); have != tc.want {
			t.Fatalf("pathof(%q, %q): have %q want %q", tc.parent, tc.ref, have, tc.want)
		}
	}
}
