package text

import (
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"golang.org/x/text/unicode/bidi"
)

// Run is a range of runes with one direction and one script.
// Start and End are rune indices, End exclusive.
type Run struct {
	Start     int
	End       int
	Direction di.Direction
	Script    language.Script
}

// Len returns the number of runes in the run.
func (r Run) Len() int { return r.End - r.Start }

// Segment splits text into runs and returns them in visual order,
// left to right, for a paragraph of base direction base.
func Segment(text []rune, base di.Direction) []Run {
	if len(text) == 0 {
		return nil
	}

	brs := bidiRuns(text, base)

	// Bidi runs come back in logical order. With a single embedding
	// level the visual order is the logical one for LTR paragraphs and
	// its reverse for RTL ones. Script runs inside an RTL run are
	// reversed likewise; glyphs inside a run are put in visual order by
	// the shaper.
	if base == di.DirectionRTL {
		reverseRuns(brs)
	}
	var runs []Run
	for _, br := range brs {
		n := len(runs)
		runs = appendScriptRuns(runs, text, br)
		if br.Direction == di.DirectionRTL {
			reverseRuns(runs[n:])
		}
	}
	return runs
}

func reverseRuns(runs []Run) {
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
}

func bidiRuns(text []rune, base di.Direction) []Run {
	whole := []Run{{Start: 0, End: len(text), Direction: base}}

	def := bidi.LeftToRight
	if base == di.DirectionRTL {
		def = bidi.RightToLeft
	}
	var p bidi.Paragraph
	if _, err := p.SetString(string(text), bidi.DefaultDirection(def)); err != nil {
		return whole
	}
	o, err := p.Order()
	if err != nil || o.NumRuns() == 0 {
		return whole
	}

	runs := make([]Run, 0, o.NumRuns())
	for i := 0; i < o.NumRuns(); i++ {
		r := o.Run(i)
		start, end := r.Pos() // inclusive rune indices
		dir := di.DirectionLTR
		if r.Direction() == bidi.RightToLeft {
			dir = di.DirectionRTL
		}
		runs = append(runs, Run{Start: start, End: end + 1, Direction: dir})
	}
	return runs
}

// appendScriptRuns splits br where the script changes. Common and
// inherited runes (spaces, digits, marks) join the run they are in, or
// the following one at the start of br.
func appendScriptRuns(runs []Run, text []rune, br Run) []Run {
	cur := br
	cur.End = br.Start
	cur.Script = language.Common
	for i := br.Start; i < br.End; i++ {
		s := language.LookupScript(text[i])
		switch {
		case s == language.Common || s == language.Inherited || s == cur.Script:
		case cur.Script == language.Common:
			cur.Script = s
		default:
			runs = append(runs, cur)
			cur = Run{Start: i, Direction: br.Direction, Script: s}
		}
		cur.End = i + 1
	}
	if cur.Script == language.Common {
		cur.Script = language.Latin
	}
	return append(runs, cur)
}
