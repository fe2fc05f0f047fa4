package hls

/*
	https://tools.ietf.org/html/draft-pantos-http-live-streaming-23#page-7

	NOTES

	Although implied by implementations, the HLS spec does not require some tags to appear in
	a specific position in the playlist. For example, the EXT-X-ENDLIST tag can appear anywhere
	in the playlist, and this is explicit in the RFC. The structure keeps every tag where it
	was found: a playlist tag between two segments belongs to the second segment's group.

	VOD playlist are immutable,
	EVENT playlists are an append-only.
	LIVE playlists are a sliding window.

	The server can only increment sequence tags and EXT-X-ENDLIST, as well as push and pop segments.
	Trim and AppendSegment do exactly that.

	Any timing information and play order in the media playlists are coincidental. The RFC says
	that the order of the segments dictates which order they are played in. Segment times are
	the running sum of the EXTINF durations from the first segment in the playlist, not wall
	clock time.

	Each segment has a sequence and discontinuity sequence number. Both properties are
	computed. EXT-X-SKIP in a delta update counts towards the sequence number of the first
	segment present.

	EXT-X-KEY, EXT-X-MAP and EXT-X-BITRATE apply to every following segment until the next tag
	of the same kind. These are spans. A span declared after the last segment applies to nothing
	and is dropped.
*/
