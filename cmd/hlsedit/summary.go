package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	hls "github.com/as/hlsedit"
	"gopkg.in/yaml.v3"
)

type span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

func spanOf(r hls.Range) span {
	return span{r.Start, r.End}
}

type segment struct {
	Sequence              int     `json:"sequence" yaml:"sequence"`
	DiscontinuitySequence int     `json:"discontinuity_sequence" yaml:"discontinuity_sequence"`
	Discontinuity         bool    `json:"discontinuity,omitempty" yaml:"discontinuity,omitempty"`
	Start                 float64 `json:"start" yaml:"start"`
	Duration              float64 `json:"duration" yaml:"duration"`
	Tags                  span    `json:"tags" yaml:"tags"`
	URI                   string  `json:"uri" yaml:"uri"`
}

type sticky struct {
	Tag    string `json:"tag" yaml:"tag"`
	Index  int    `json:"index" yaml:"index"`
	Groups span   `json:"groups" yaml:"groups"`
}

// summary is the output of the inspect command
type summary struct {
	Tags     int       `json:"tags" yaml:"tags"`
	Master   bool      `json:"master,omitempty" yaml:"master,omitempty"`
	Duration float64   `json:"duration" yaml:"duration"`
	Header   span      `json:"header" yaml:"header"`
	Footer   *span     `json:"footer,omitempty" yaml:"footer,omitempty"`
	Segments []segment `json:"segments,omitempty" yaml:"segments,omitempty"`
	Spans    []sticky  `json:"spans,omitempty" yaml:"spans,omitempty"`
	AdBreaks []int     `json:"ad_breaks,omitempty" yaml:"ad_breaks,omitempty"`
	Problem  string    `json:"problem,omitempty" yaml:"problem,omitempty"`
}

func summarize(p *hls.Playlist) summary {
	s := p.Structure()
	sum := summary{
		Tags:     p.Len(),
		Master:   p.IsMaster(),
		Duration: s.Duration(),
		Header:   spanOf(s.Header.Range),
		AdBreaks: p.AdBreaks(),
	}
	if s.Footer != nil {
		f := spanOf(s.Footer.Range)
		sum.Footer = &f
	}
	for _, g := range s.Groups {
		sum.Segments = append(sum.Segments, segment{
			Sequence:              g.Sequence,
			DiscontinuitySequence: g.DiscontinuitySequence,
			Discontinuity:         g.Discontinuity,
			Start:                 g.Time.Start,
			Duration:              g.Time.Duration,
			Tags:                  spanOf(g.Range),
			URI:                   p.Tag(g.End).Payload(),
		})
	}
	for _, v := range s.Spans {
		sum.Spans = append(sum.Spans, sticky{
			Tag:    v.Parent.String(),
			Index:  v.ParentIndex,
			Groups: spanOf(v.Groups),
		})
	}
	if !sum.Master {
		if _, err := hls.Analyze(p.All()); err != nil {
			var se *hls.StructureError
			if errors.As(err, &se) {
				sum.Problem = se.Error()
			}
		}
	}
	return sum
}

func (s summary) write(w io.Writer, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case "yaml":
		data, err := yaml.Marshal(s)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)
	fmt.Fprintf(tw, "tags\t%d\n", s.Tags)
	if s.Master {
		fmt.Fprintf(tw, "type\tmaster\n")
	}
	fmt.Fprintf(tw, "duration\t%.3f\n", s.Duration)
	fmt.Fprintf(tw, "header\t%d-%d\n", s.Header.Start, s.Header.End)
	if s.Footer != nil {
		fmt.Fprintf(tw, "footer\t%d-%d\n", s.Footer.Start, s.Footer.End)
	}
	if s.Problem != "" {
		fmt.Fprintf(tw, "problem\t%s\n", s.Problem)
	}
	for _, g := range s.Segments {
		disc := ""
		if g.Discontinuity {
			disc = "disc"
		}
		fmt.Fprintf(tw, "seg\t%d\t%d-%d\t%.3f+%.3f\t%d\t%s\t%s\n",
			g.Sequence, g.Tags.Start, g.Tags.End, g.Start, g.Duration,
			g.DiscontinuitySequence, disc, g.URI)
	}
	for _, v := range s.Spans {
		fmt.Fprintf(tw, "span\t%d\t%d-%d\t%s\n", v.Index, v.Groups.Start, v.Groups.End, v.Tag)
	}
	if len(s.AdBreaks) > 0 {
		fmt.Fprintf(tw, "ads\t%v\n", s.AdBreaks)
	}
	return tw.Flush()
}
