package hls

import (
	"math/rand"
	"testing"

	"github.com/as/hlsedit/m3u"
	"github.com/stretchr/testify/require"
)

// requireFresh checks that the playlist's structure equals a rebuild
func requireFresh(t *testing.T, p *Playlist) {
	t.Helper()
	require.Equal(t, Build(p.All()), p.Structure())
}

func TestInsertInterior(t *testing.T) {
	p := DecodeString(sampleVOD)
	s := p.Structure()
	require.Equal(t, StateClean, p.State())
	require.Len(t, s.Groups, 2)
	n := s.Groups[1].Len()

	p.Insert(s.Groups[1].Start+1, m3u.NewComment(" interior"))
	require.Equal(t, StatePatch, p.State())

	s = p.Structure()
	require.Equal(t, StateClean, p.State())
	require.Len(t, s.Groups, 2)
	require.Equal(t, n+1, s.Groups[1].Len())
	require.Equal(t, Range{7, 7}, s.Footer.Range)
	requireFresh(t, p)
}

func TestInsertBoundary(t *testing.T) {
	p := DecodeString(sampleVOD)
	s := p.Structure()

	// before the first tag of a group is a boundary
	p.Insert(s.Groups[1].Start, m3u.NewComment("boundary"))
	require.Equal(t, StateRebuild, p.State())
	requireFresh(t, p)

	// structural tags always rebuild
	s = p.Structure()
	p.Insert(s.Groups[1].Start+1, m3u.NewTag("#EXT-X-DISCONTINUITY", ""))
	require.Equal(t, StateRebuild, p.State())
	require.True(t, p.Structure().Groups[1].Discontinuity)
	requireFresh(t, p)

	// as do several tags at once
	p.Insert(p.Structure().Groups[0].Start+1, m3u.NewComment("a"), m3u.NewComment("b"))
	require.Equal(t, StateRebuild, p.State())
	requireFresh(t, p)
}

func TestInsertClamp(t *testing.T) {
	p := DecodeString(sampleVOD)
	p.Insert(-5, m3u.NewComment("first"))
	p.Insert(1000, m3u.NewComment("last"))
	require.Equal(t, "first", p.Tag(0).Payload())
	require.Equal(t, "last", p.Tag(p.Len()-1).Payload())
	requireFresh(t, p)
}

func TestDeleteAcrossBoundary(t *testing.T) {
	p := DecodeString(sampleLive)
	s := p.Structure()
	require.Len(t, s.Groups, 4)

	// group 1 and the key and discontinuity opening group 2
	p.DeleteRange(Range{s.Groups[1].Start, s.Groups[2].Start + 1})
	require.Equal(t, StateRebuild, p.State())
	s2 := p.Structure()
	require.Equal(t, StateClean, p.State())
	require.Len(t, s2.Groups, 3)
	requireFresh(t, p)
}

func TestDeleteInterior(t *testing.T) {
	p := DecodeString(sampleLive)
	s := p.Structure()
	cue := s.Groups[1].Start
	require.True(t, p.Tag(cue).Is("#EXT-X-CUE-OUT"))

	// the cue opens group 1, so deleting it is not interior
	p.Delete(cue)
	require.Equal(t, StateRebuild, p.State())
	requireFresh(t, p)

	p = DecodeString(sampleLive)
	s = p.Structure()
	p.Insert(s.Groups[2].Start+1, m3u.NewComment("x"))
	p.Insert(s.Groups[0].Start+1, m3u.NewComment("y"))
	require.Equal(t, StatePatch, p.State())
	p.Delete(s.Groups[0].Start + 1)
	require.Equal(t, StatePatch, p.State())
	requireFresh(t, p)
}

func TestDeleteOutOfRange(t *testing.T) {
	p := DecodeString(sampleVOD)
	p.Structure()
	p.Delete(-1)
	p.Delete(p.Len())
	p.DeleteRange(Range{5, 2})
	require.Equal(t, StateClean, p.State())
	require.Equal(t, 7, p.Len())

	p.DeleteRange(Range{5, 100})
	require.Equal(t, 5, p.Len())
	requireFresh(t, p)
}

func TestSet(t *testing.T) {
	p := DecodeString(sampleLive)
	s := p.Structure()

	// a neutral tag for a neutral tag
	p.Set(s.Groups[1].Start, m3u.NewTag("#EXT-X-CUE-OUT", "DURATION=15"))
	require.Equal(t, StateClean, p.State())
	requireFresh(t, p)

	// a header tag for a segment tag
	p.Set(1, m3u.NewTag("#EXT-X-CUE-IN", ""))
	require.Equal(t, StateRebuild, p.State())
	require.Equal(t, Range{0, 0}, p.Header().Range)
	requireFresh(t, p)

	p = DecodeString(sampleVOD)
	p.Structure()
	inf := p.Tag(2)
	inf.SetValue("$1", "3.5")
	p.Set(2, inf)
	require.Equal(t, StateRebuild, p.State())
	r, ok := p.TimeRangeForSequence(0)
	require.True(t, ok)
	require.Equal(t, 3.5, r.Duration)
}

func TestTransform(t *testing.T) {
	p := DecodeString(sampleVOD)
	p.Structure()
	p.Transform(func(i int, t m3u.Tag) m3u.Tag {
		if t.IsLocation() {
			return t.WithPayload("x/" + t.Payload())
		}
		return t
	})
	require.Equal(t, StateRebuild, p.State())
	require.Equal(t, "x/seg1.ts", p.Tag(3).Payload())
	requireFresh(t, p)
}

func TestPatchThreshold(t *testing.T) {
	p := DecodeString(sampleVOD)
	s := p.Structure()
	for i := 0; i < maxChanges; i++ {
		p.Insert(s.Groups[0].Start+1, m3u.NewComment("c"))
		require.Equal(t, StatePatch, p.State())
	}
	p.Insert(s.Groups[0].Start+1, m3u.NewComment("c"))
	require.Equal(t, StateRebuild, p.State())
	requireFresh(t, p)
}

func TestCloneIsolation(t *testing.T) {
	p := DecodeString(sampleVOD)
	p.Structure()
	q := p.Clone()
	require.Same(t, p.store, q.store)

	q.Insert(3, m3u.NewComment("only in q"))
	require.NotSame(t, p.store, q.store)
	require.Equal(t, 7, p.Len())
	require.Equal(t, 8, q.Len())
	require.Equal(t, sampleVOD, p.String())
	require.Equal(t, StateClean, p.State())
	requireFresh(t, p)
	requireFresh(t, q)

	// the last holder writes in place
	r := q.Clone()
	r.Delete(0)
	q.Delete(0)
	require.Equal(t, r.All(), q.All())
}

func TestCloneConcurrent(t *testing.T) {
	p := DecodeString(sampleLive)
	p.Structure()
	done := make(chan *Playlist)
	for i := 0; i < 8; i++ {
		q := p.Clone()
		go func(i int) {
			q.Insert(q.Structure().Groups[0].Start+1, m3u.NewComment("c"))
			q.Delete(i % q.Len())
			done <- q
		}(i)
	}
	for i := 0; i < 8; i++ {
		q := <-done
		requireFresh(t, q)
	}
	require.Equal(t, sampleLive, p.String())
}

// TestPatchEquivalence applies random single tag edits and checks the
// maintained structure against a rebuild every few edits
func TestPatchEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pool := []m3u.Tag{
		m3u.NewComment("note"),
		m3u.NewTag("#EXT-X-PROGRAM-DATE-TIME", "2021-01-11T07:59:41.005Z"),
		m3u.NewTag("#EXT-X-CUE-IN", ""),
		m3u.NewTag("#EXT-X-DISCONTINUITY", ""),
		m3u.NewTag("#EXT-X-KEY", "METHOD=NONE"),
		m3u.NewTag("#EXT-X-FOO", "1"),
	}
	p := DecodeString(sampleLive)
	for i := 0; i < 500; i++ {
		switch rng.Intn(3) {
		case 0:
			p.Insert(rng.Intn(p.Len()+1), pool[rng.Intn(len(pool))])
		case 1:
			if p.Len() > 12 {
				p.Delete(rng.Intn(p.Len()))
			}
		case 2:
			p.Set(rng.Intn(p.Len()), pool[rng.Intn(len(pool))])
		}
		if rng.Intn(4) == 0 {
			requireFresh(t, p)
		}
	}
	requireFresh(t, p)
}
