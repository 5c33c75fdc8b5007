package tweettext

import "sort"

// labelRun is a maximal run of label and inner runes inside an indexed span.
type labelRun struct {
	start, end int
	// head is set when the run starts with a label rune.
	head bool
	// dotted is set when the run ends with a label rune followed by '.'.
	dotted bool
	// lastUnderscore is the offset of the last '_' in the run, or -1.
	lastUnderscore int
	// tldEnd is where the TLD after the dot ends, or -1.
	tldEnd int
	// tail is where the longest chain continuing after the dot ends, or -1.
	tail int
	// best is tail, or else tldEnd when the whole run may close a chain.
	best int
}

// labelIndex answers "where does the domain starting here end" for every
// start inside an indexed span. The runs of the span and the chains they
// form are computed once, right to left, so a text full of dots costs the
// same as any other text.
//
// A domain is a chain of labels, each followed by '.', and then a TLD. A
// label starts and ends with a label rune and may hold inner runes in
// between. The longest chain wins; labels holding '_' cannot close one.
type labelIndex struct {
	text  string
	label func(rune) bool
	inner func(rune) bool

	from, to int
	runs     []labelRun
}

func noInnerRunes(rune) bool { return false }

// build indexes text[from:to]. The runs slice is reused between builds.
func (x *labelIndex) build(from, to int) {
	x.from, x.to = from, to
	x.runs = x.runs[:0]

	for i := from; i < to; {
		r, size := runeAt(x.text, i)
		if !x.label(r) && !x.inner(r) {
			i += size

			continue
		}

		run := labelRun{start: i, head: x.label(r), lastUnderscore: -1, tldEnd: -1, tail: -1, best: -1}
		lastLabel := false
		for i < to {
			r, size = runeAt(x.text, i)
			if x.label(r) {
				lastLabel = true
			} else if x.inner(r) {
				lastLabel = false
				if r == '_' {
					run.lastUnderscore = i
				}
			} else {
				break
			}
			i += size
		}
		run.end = i
		run.dotted = lastLabel && i < len(x.text) && x.text[i] == '.'
		x.runs = append(x.runs, run)
	}

	for k := len(x.runs) - 1; k >= 0; k-- {
		run := &x.runs[k]
		if !run.dotted {
			continue
		}

		run.tldEnd = tldEnd(x.text, run.end+1)
		if k+1 < len(x.runs) {
			if next := x.runs[k+1]; next.start == run.end+1 && next.head && next.dotted {
				run.tail = next.best
			}
		}
		run.best = run.tail
		if run.best < 0 && run.lastUnderscore < 0 {
			run.best = run.tldEnd
		}
	}
}

// covers reports whether s lies inside the indexed span.
func (x *labelIndex) covers(s int) bool {
	return x.from <= s && s < x.to
}

// domainEnd returns the end of the longest domain starting at s, which must
// be covered by the index.
func (x *labelIndex) domainEnd(s int) (int, bool) {
	k := sort.Search(len(x.runs), func(k int) bool { return x.runs[k].end > s })
	if k == len(x.runs) || x.runs[k].start > s {
		return 0, false
	}

	run := x.runs[k]
	if r, _ := runeAt(x.text, s); !run.dotted || !x.label(r) {
		return 0, false
	}
	if run.tail >= 0 {
		return run.tail, true
	}
	if run.lastUnderscore < s && run.tldEnd >= 0 {
		return run.tldEnd, true
	}

	return 0, false
}
