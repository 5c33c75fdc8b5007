package tweettext

import (
	"iter"
	"unicode/utf8"
)

// ExtractURLs returns the URLs of text in the order they appear.
func ExtractURLs(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for c := range Scan(text) {
			if o := Validate(c); o.Accepted && !yield(o.URL) {
				return
			}
		}
	}
}

// Entity is an accepted URL located by code point offsets, the way tweet
// entities index their text.
type Entity struct {
	URL         string
	Start, End  int
	HasProtocol bool
}

// Decision pairs a candidate with its outcome. Entity is only filled in for
// accepted candidates.
type Decision struct {
	Candidate Candidate
	Outcome   Outcome
	Entity    Entity
}

// Evaluate runs the whole pipeline over text and reports every candidate,
// accepted or not.
func Evaluate(text string) iter.Seq[Decision] {
	return func(yield func(Decision) bool) {
		idx := runeIndex{text: text}
		for c := range Scan(text) {
			d := Decision{Candidate: c, Outcome: Validate(c)}
			if d.Outcome.Accepted {
				d.Entity = Entity{
					URL:         d.Outcome.URL,
					Start:       idx.at(c.Start),
					End:         idx.at(c.End),
					HasProtocol: c.Protocol != "",
				}
			}

			if !yield(d) {
				return
			}
		}
	}
}

// ExtractEntities returns the accepted URLs of text with their code point
// offsets.
func ExtractEntities(text string) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for d := range Evaluate(text) {
			if d.Outcome.Accepted && !yield(d.Entity) {
				return
			}
		}
	}
}

// runeIndex converts non-decreasing byte offsets to code point offsets.
// Each invalid byte counts as one code point.
type runeIndex struct {
	text  string
	bytes int
	runes int
}

func (x *runeIndex) at(offset int) int {
	x.runes += utf8.RuneCountInString(x.text[x.bytes:offset])
	x.bytes = offset

	return x.runes
}
