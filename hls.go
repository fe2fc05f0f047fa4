// Package hls models HLS playlists as an editable sequence of tags.
//
// A Playlist holds the tags of a playlist in order and lazily derives its
// Structure: the header, the media segment groups, the footer, and the
// spans of tags like EXT-X-KEY that stay in effect across segments. Edits
// go through the playlist, which patches the cached structure for small
// edits inside a segment and rebuilds it otherwise. Encoding walks the
// tags directly, so an unmodified playlist is written back byte for byte.
package hls

import (
	"errors"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/as/hlsedit/m3u"
)

// Media playlist types
const (
	Vod   = "VOD"   // immutable
	Event = "EVENT" // append-only
	Live  = ""      // sliding-window
)

var (
	ErrHeader       = errors.New("hls: no m3u8 tag")
	ErrEmpty        = errors.New("hls: empty playlist")
	ErrType         = errors.New("hls: playlist type mismatch")
	ErrMissingValue = errors.New("hls: missing required value")
	ErrUnmarshal    = errors.New("hls: unmarshal target must be a pointer to a struct")
)

// Decode reads an HLS playlist from the reader and tokenizes it into
// a playlist.
func Decode(r io.Reader) (*Playlist, error) {
	t, err := m3u.Parse(r)
	if err != nil {
		return nil, err
	}
	return newPlaylist(t), nil
}

// DecodeString is like Decode, but the tags refer to s instead of a copy
func DecodeString(s string) *Playlist {
	return newPlaylist(m3u.ParseString(s))
}

// IsMaster returns true if and only if the tags look like a master playlist
func IsMaster(t []m3u.Tag) bool {
	for _, v := range t {
		switch v.Name() {
		case "#EXT-X-MEDIA", "#EXT-X-STREAM-INF", "#EXT-X-I-FRAME-STREAM-INF":
			return true // master
		case "#EXTINF":
			return false // media
		}
	}
	// may be empty live media
	return false
}

// uniq is an ordered set of non-empty strings
type uniq struct {
	seen map[string]bool
	list []string
}

func (u *uniq) add(s string) {
	if s == "" || u.seen[s] {
		return
	}
	if u.seen == nil {
		u.seen = map[string]bool{}
	}
	u.seen[s] = true
	u.list = append(u.list, s)
}

// resolve returns ref resolved against base. A ref that is not a valid
// URL reference is returned unchanged.
func resolve(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// pathof returns the path to ref relative to parent. If parent ends in a
// slash it is the directory, otherwise its base name is stripped.
func pathof(parent, ref string) string {
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	if u, err := url.Parse(parent); err == nil && u.IsAbs() {
		return resolve(u, ref)
	}
	if strings.HasPrefix(ref, "/") {
		return ref
	}
	if !strings.HasSuffix(parent, "/") {
		parent = path.Dir(parent)
	}
	return path.Join(parent, ref)
}
