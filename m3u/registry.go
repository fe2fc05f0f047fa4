package m3u

import "sync"

// Kind is the coarse classification of a descriptor
type Kind int

const (
	KindTag      Kind = iota // a well-known tag
	KindLocation             // a bare URI line
	KindComment              // a # line that isn't a tag
	KindUnknown              // an unrecognized #EXT tag
)

// Scope is the part of the playlist a tag applies to
type Scope int

const (
	ScopeNone Scope = iota
	ScopePlaylist
	ScopeSegment
)

// Role is a set of structural capabilities of a tag type. The structure
// builder in package hls reads these instead of tag names.
type Role uint

const (
	RoleDuration              Role = 1 << iota // carries a segment duration in $1
	RoleDiscontinuity                          // marks its segment as discontinuous
	RoleMediaSequence                          // declares the first media sequence number
	RoleDiscontinuitySequence                  // declares the first discontinuity sequence number
	RoleSkip                                   // delta update: SKIPPED-SEGMENTS precede the body
)

// Descriptor describes a kind of tag.
type Descriptor interface {
	// Name is the literal tag name including the leading '#', or
	// empty for locations and comments
	Name() string
	Kind() Kind
	Scope() Scope
	Role() Role

	// Span is the span class of the tag. Tags of a span class stay
	// in effect for following segments until the next tag of the same
	// class. Empty if the tag has no span semantics.
	Span() string

	// Required lists the value keys a tag must carry when it is
	// re-serialized after modification. Positional values are $1, $2...
	Required() []string
}

// Type is the built-in Descriptor implementation. Types are compared by
// identity, so always pass around the pointer.
type Type struct {
	TagName   string
	TagKind   Kind
	TagScope  Scope
	TagRole   Role
	SpanClass string
	Needs     []string
}

func (t *Type) Name() string       { return t.TagName }
func (t *Type) Kind() Kind         { return t.TagKind }
func (t *Type) Scope() Scope       { return t.TagScope }
func (t *Type) Role() Role         { return t.TagRole }
func (t *Type) Span() string       { return t.SpanClass }
func (t *Type) Required() []string { return t.Needs }

func (t *Type) String() string {
	switch t.TagKind {
	case KindLocation:
		return "location"
	case KindComment:
		return "comment"
	}
	return t.TagName
}

// Special descriptors for lines that aren't well-known tags
var (
	Location = &Type{TagKind: KindLocation, TagScope: ScopeSegment, Needs: []string{"$1"}}
	Comment  = &Type{TagKind: KindComment}
	Unknown  = &Type{TagKind: KindUnknown}
)

// Family is a group of descriptors that can be looked up by tag name
type Family interface {
	Lookup(name string) (Descriptor, bool)
}

// Table is a Family backed by a map
type Table map[string]Descriptor

func (t Table) Lookup(name string) (Descriptor, bool) {
	d, ok := t[name]
	return d, ok
}

// NewTable returns a table of the given types keyed by name
func NewTable(types ...*Type) Table {
	t := Table{}
	for _, v := range types {
		t[v.TagName] = v
	}
	return t
}

// Registry resolves tag names to descriptors. Families are consulted
// newest first, so a registered family can override the built-ins.
// A Registry is safe for concurrent use.
type Registry struct {
	mu  sync.RWMutex
	fam []Family
}

// NewRegistry returns a registry consulting the given families, the
// last one having the highest priority
func NewRegistry(f ...Family) *Registry {
	return &Registry{fam: append([]Family(nil), f...)}
}

// Register adds a family with priority over every family already present
func (r *Registry) Register(f Family) {
	r.mu.Lock()
	r.fam = append(r.fam, f)
	r.mu.Unlock()
}

// Lookup returns the descriptor for a tag name (with the leading '#'). Names
// unknown to every family resolve to Unknown.
func (r *Registry) Lookup(name string) Descriptor {
	if r == nil {
		r = Default
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.fam) - 1; i >= 0; i-- {
		if d, ok := r.fam[i].Lookup(name); ok {
			return d
		}
	}
	return Unknown
}

// Register adds a family to the Default registry
func Register(f Family) {
	Default.Register(f)
}

// Builtin is the family of well-known HLS tags
var Builtin = NewTable(
	// basic
	&Type{TagName: "#EXTM3U", TagScope: ScopePlaylist},
	&Type{TagName: "#EXT-X-VERSION", TagScope: ScopePlaylist, Needs: []string{"$1"}},

	// media segment
	&Type{TagName: "#EXTINF", TagScope: ScopeSegment, TagRole: RoleDuration, Needs: []string{"$1"}},
	&Type{TagName: "#EXT-X-BYTERANGE", TagScope: ScopeSegment, Needs: []string{"$1"}},
	&Type{TagName: "#EXT-X-DISCONTINUITY", TagScope: ScopeSegment, TagRole: RoleDiscontinuity},
	&Type{TagName: "#EXT-X-KEY", TagScope: ScopeSegment, SpanClass: "key", Needs: []string{"METHOD"}},
	&Type{TagName: "#EXT-X-MAP", TagScope: ScopeSegment, SpanClass: "map", Needs: []string{"URI"}},
	&Type{TagName: "#EXT-X-PROGRAM-DATE-TIME", TagScope: ScopeSegment, Needs: []string{"$1"}},
	&Type{TagName: "#EXT-X-GAP", TagScope: ScopeSegment},
	&Type{TagName: "#EXT-X-BITRATE", TagScope: ScopeSegment, SpanClass: "bitrate", Needs: []string{"$1"}},
	&Type{TagName: "#EXT-X-PART", TagScope: ScopeSegment, Needs: []string{"URI", "DURATION"}},
	&Type{TagName: "#EXT-X-DATERANGE", TagScope: ScopeSegment, Needs: []string{"ID"}},
	&Type{TagName: "#EXT-X-CUE-OUT", TagScope: ScopeSegment},
	&Type{TagName: "#EXT-X-CUE-OUT-CONT", TagScope: ScopeSegment},
	&Type{TagName: "#EXT-X-CUE-IN", TagScope: ScopeSegment},
	&Type{TagName: "#EXT-X-CUE", TagScope: ScopeSegment},
	&Type{TagName: "#EXT-OATCLS-SCTE35", TagScope: ScopeSegment},
	&Type{TagName: "#EXT-X-SPLICEPOINT-SCTE35", TagScope: ScopeSegment},
	&Type{TagName: "#EXT-X-ASSET", TagScope: ScopeSegment},
	&Type{TagName: "#EXT-X-PLACEMENT-OPPORTUNITY", TagScope: ScopeSegment},
	&Type{TagName: "#EXT-X-TIMESTAMP-MAP", TagScope: ScopeSegment},

	// media playlist
	&Type{TagName: "#EXT-X-TARGETDURATION", TagScope: ScopePlaylist, Needs: []string{"$1"}},
	&Type{TagName: "#EXT-X-MEDIA-SEQUENCE", TagScope: ScopePlaylist, TagRole: RoleMediaSequence, Needs: []string{"$1"}},
	&Type{TagName: "#EXT-X-DISCONTINUITY-SEQUENCE", TagScope: ScopePlaylist, TagRole: RoleDiscontinuitySequence, Needs: []string{"$1"}},
	&Type{TagName: "#EXT-X-ENDLIST", TagScope: ScopePlaylist},
	&Type{TagName: "#EXT-X-PLAYLIST-TYPE", TagScope: ScopePlaylist, Needs: []string{"$1"}},
	&Type{TagName: "#EXT-X-I-FRAMES-ONLY", TagScope: ScopePlaylist},
	&Type{TagName: "#EXT-X-PART-INF", TagScope: ScopePlaylist, Needs: []string{"PART-TARGET"}},
	&Type{TagName: "#EXT-X-SERVER-CONTROL", TagScope: ScopePlaylist},
	&Type{TagName: "#EXT-X-SKIP", TagScope: ScopePlaylist, TagRole: RoleSkip, Needs: []string{"SKIPPED-SEGMENTS"}},
	&Type{TagName: "#EXT-X-PRELOAD-HINT", TagScope: ScopePlaylist, Needs: []string{"TYPE", "URI"}},
	&Type{TagName: "#EXT-X-RENDITION-REPORT", TagScope: ScopePlaylist, Needs: []string{"URI"}},

	// master playlist
	&Type{TagName: "#EXT-X-MEDIA", TagScope: ScopePlaylist, Needs: []string{"TYPE", "GROUP-ID", "NAME"}},
	&Type{TagName: "#EXT-X-STREAM-INF", TagScope: ScopePlaylist, Needs: []string{"BANDWIDTH"}},
	&Type{TagName: "#EXT-X-I-FRAME-STREAM-INF", TagScope: ScopePlaylist, Needs: []string{"BANDWIDTH", "URI"}},
	&Type{TagName: "#EXT-X-SESSION-DATA", TagScope: ScopePlaylist, Needs: []string{"DATA-ID"}},
	&Type{TagName: "#EXT-X-SESSION-KEY", TagScope: ScopePlaylist, Needs: []string{"METHOD"}},
	&Type{TagName: "#EXT-X-CONTENT-STEERING", TagScope: ScopePlaylist, Needs: []string{"SERVER-URI"}},

	// both
	&Type{TagName: "#EXT-X-INDEPENDENT-SEGMENTS", TagScope: ScopePlaylist},
	&Type{TagName: "#EXT-X-START", TagScope: ScopePlaylist, Needs: []string{"TIME-OFFSET"}},
	&Type{TagName: "#EXT-X-DEFINE", TagScope: ScopePlaylist},
)

// Default is the registry used when none is given
var Default = NewRegistry(Builtin)
