// Package report renders rule violations into a digest and hands it to the
// configured publishers.
package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"booking-warden/internal/policy"
)

// Block is one offending unit in the digest.
type Block struct {
	UnitID   int64
	Label    string
	Messages []string
}

type Digest struct {
	RunID  string
	Date   time.Time
	Blocks []Block
}

// NewDigest turns an evaluation report into a digest dated in loc.
func NewDigest(runID string, r policy.Report, now time.Time, loc *time.Location) Digest {
	if loc == nil {
		loc = time.UTC
	}
	blocks := make([]Block, 0, len(r.Units))
	for _, u := range r.Units {
		blocks = append(blocks, Block{UnitID: u.UnitID, Label: u.Label, Messages: u.Messages()})
	}
	return Digest{RunID: runID, Date: now.In(loc), Blocks: blocks}
}

func (d Digest) Empty() bool {
	return len(d.Blocks) == 0
}

func (d Digest) Headline() string {
	return fmt.Sprintf("<p>Current rule violations (%s)</p>", d.Date.Format("02/01/2006"))
}

// Body renders one paragraph per unit. Labels and messages carry member
// supplied names, so they are escaped.
func (d Digest) Body() string {
	paragraphs := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		var sb strings.Builder
		sb.WriteString("<p><b>")
		sb.WriteString(html.EscapeString(b.Label))
		sb.WriteString("</b>")
		for _, msg := range b.Messages {
			sb.WriteString("<br>")
			sb.WriteString(html.EscapeString(msg))
		}
		sb.WriteString("</p>")
		paragraphs = append(paragraphs, sb.String())
	}
	return strings.Join(paragraphs, "\n")
}
