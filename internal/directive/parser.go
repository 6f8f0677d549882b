// Package directive implements the command grammar embedded in assistant
// responses. The model may emit bracketed tokens instructing the client to
// mutate planner state:
//
//	[ADD: task text]
//	[MOD: old task text -> new task text]
//	[DONE: task text]
//
// Keywords are case-sensitive, payloads are free text on a single line, and
// there is no nesting. At most one directive of each kind is honored per
// response; later occurrences of the same kind are ignored. Malformed
// near-matches (for example a missing closing bracket) are never extracted
// and remain literal text in the display output.
package directive

import (
	"regexp"
	"sort"
	"strings"
)

// Kind discriminates the directive types
type Kind string

const (
	KindAdd  Kind = "add"
	KindMod  Kind = "mod"
	KindDone Kind = "done"
)

// Directive is a single recognized command token
type Directive struct {
	Kind Kind
	// Text is the payload for ADD and DONE directives
	Text string
	// OldText and NewText carry the MOD payloads
	OldText string
	NewText string
}

// Result is the outcome of parsing one model response
type Result struct {
	// Directives holds at most one directive per kind, in order of
	// appearance in the input.
	Directives []Directive
	// Display is the input with every honored directive token removed and
	// the whitespace around the removal collapsed. When no directive
	// matches, Display equals the input unchanged.
	Display string
}

var (
	addRe  = regexp.MustCompile(`\[ADD:\s*(.*?)\]`)
	modRe  = regexp.MustCompile(`\[MOD:\s*(.*?)\s*->\s*(.*?)\]`)
	doneRe = regexp.MustCompile(`\[DONE:\s*(.*?)\]`)
)

type match struct {
	directive  Directive
	start, end int
}

// Parse scans raw model output for directive tokens. It never fails: inputs
// without well-formed tokens yield zero directives and an unchanged display
// string.
func Parse(raw string) Result {
	var matches []match

	if loc := addRe.FindStringSubmatchIndex(raw); loc != nil {
		matches = append(matches, match{
			directive: Directive{Kind: KindAdd, Text: strings.TrimSpace(raw[loc[2]:loc[3]])},
			start:     loc[0],
			end:       loc[1],
		})
	}
	if loc := modRe.FindStringSubmatchIndex(raw); loc != nil {
		matches = append(matches, match{
			directive: Directive{
				Kind:    KindMod,
				OldText: strings.TrimSpace(raw[loc[2]:loc[3]]),
				NewText: strings.TrimSpace(raw[loc[4]:loc[5]]),
			},
			start: loc[0],
			end:   loc[1],
		})
	}
	if loc := doneRe.FindStringSubmatchIndex(raw); loc != nil {
		matches = append(matches, match{
			directive: Directive{Kind: KindDone, Text: strings.TrimSpace(raw[loc[2]:loc[3]])},
			start:     loc[0],
			end:       loc[1],
		})
	}

	if len(matches) == 0 {
		return Result{Display: raw}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	directives := make([]Directive, 0, len(matches))
	segments := make([]string, 0, len(matches)+1)
	pos := 0
	for _, m := range matches {
		if m.start < pos {
			// Overlapping token (e.g. a DONE match inside an already
			// consumed MOD payload); skip it.
			continue
		}
		directives = append(directives, m.directive)
		segments = append(segments, raw[pos:m.start])
		pos = m.end
	}
	segments = append(segments, raw[pos:])

	display := segments[0]
	for _, seg := range segments[1:] {
		display = joinAcrossRemoval(display, seg)
	}

	return Result{
		Directives: directives,
		Display:    strings.TrimSpace(display),
	}
}

// joinAcrossRemoval splices the text on either side of a removed token.
// Spaces and tabs touching the removal collapse to a single space; prose the
// parser never touched, including interior whitespace runs, passes through
// unchanged.
func joinAcrossRemoval(left, right string) string {
	l := strings.TrimRight(left, " \t")
	r := strings.TrimLeft(right, " \t")
	trimmed := len(l) < len(left) || len(r) < len(right)
	if trimmed && l != "" && r != "" &&
		!strings.HasSuffix(l, "\n") && !strings.HasPrefix(r, "\n") {
		return l + " " + r
	}
	return l + r
}
