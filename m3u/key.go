package m3u

// Key is a symbolic value key. Its String method returns the literal
// key used in tag payloads.
type Key int

const (
	KeyNone Key = iota
	KeyArg1
	KeyArg2
	KeyURI
	KeyMethod
	KeyIV
	KeyKeyFormat
	KeyID
	KeyClass
	KeyStartDate
	KeyEndDate
	KeyDuration
	KeyPlannedDuration
	KeySkippedSegments
	KeyBandwidth
	KeyAverageBandwidth
	KeyCodecs
	KeyResolution
	KeyFrameRate
	KeyType
	KeyGroupID
	KeyName
	KeyTimeOffset
	KeyPrecise
	KeyByterange
	KeyElapsedTime
	KeyBreakID
	KeySCTE35
	KeySCTE35Out
	KeySCTE35In
	KeySCTE35Cmd
)

var keyname = [...]string{
	KeyNone:             "",
	KeyArg1:             "$1",
	KeyArg2:             "$2",
	KeyURI:              "URI",
	KeyMethod:           "METHOD",
	KeyIV:               "IV",
	KeyKeyFormat:        "KEYFORMAT",
	KeyID:               "ID",
	KeyClass:            "CLASS",
	KeyStartDate:        "START-DATE",
	KeyEndDate:          "END-DATE",
	KeyDuration:         "DURATION",
	KeyPlannedDuration:  "PLANNED-DURATION",
	KeySkippedSegments:  "SKIPPED-SEGMENTS",
	KeyBandwidth:        "BANDWIDTH",
	KeyAverageBandwidth: "AVERAGE-BANDWIDTH",
	KeyCodecs:           "CODECS",
	KeyResolution:       "RESOLUTION",
	KeyFrameRate:        "FRAME-RATE",
	KeyType:             "TYPE",
	KeyGroupID:          "GROUP-ID",
	KeyName:             "NAME",
	KeyTimeOffset:       "TIME-OFFSET",
	KeyPrecise:          "PRECISE",
	KeyByterange:        "BYTERANGE",
	KeyElapsedTime:      "ELAPSEDTIME",
	KeyBreakID:          "BREAKID",
	KeySCTE35:           "SCTE35",
	KeySCTE35Out:        "SCTE35-OUT",
	KeySCTE35In:         "SCTE35-IN",
	KeySCTE35Cmd:        "SCTE35-CMD",
}

var keylut = func() map[string]Key {
	m := make(map[string]Key, len(keyname))
	for k, s := range keyname {
		if s != "" {
			m[s] = Key(k)
		}
	}
	return m
}()

func (k Key) String() string {
	if k < 0 || int(k) >= len(keyname) {
		return ""
	}
	return keyname[k]
}

// LookupKey returns the symbolic key for a literal key
func LookupKey(s string) (Key, bool) {
	k, ok := keylut[s]
	return k, ok
}

// Get is shorthand for t.Value(k.String())
func (k Key) Get(t Tag) string {
	return t.Value(k.String())
}
