package tweettext

import (
	"iter"
)

// Candidate is one occurrence of the URL grammar inside a text. It has not
// been validated yet.
type Candidate struct {
	// Match is the whole matched span: the preceding rune followed by URL.
	Match string
	// Preceding is the rune right before URL, or empty when URL starts the text.
	Preceding string
	// URL is the text that is reported when the candidate is accepted.
	URL string
	// Protocol is "http://" or "https://" in their original case, or empty.
	Protocol string
	// Domain is the host part of URL.
	Domain string
	// Port holds the port digits without the colon.
	Port string
	// Path starts with '/' when present.
	Path string
	// Query starts with '?' when present.
	Query string
	// Start and End are the byte offsets of URL inside the scanned text.
	Start, End int
}

// Cursor walks a text and returns candidates one by one. A Cursor is
// single-pass: once Next reports false it stays exhausted.
type Cursor struct {
	text string
	pos  int
	done bool

	// hosts indexes the span of domain runes around the last domain start.
	hosts labelIndex
}

// NewCursor returns a Cursor positioned at the start of text.
func NewCursor(text string) *Cursor {
	return &Cursor{
		text:  text,
		hosts: labelIndex{text: text, label: isDomainChar, inner: isLabelInner},
	}
}

// Next returns the next candidate in text order. Candidates never overlap:
// scanning resumes where the previous URL ended.
func (c *Cursor) Next() (Candidate, bool) {
	if c.done {
		return Candidate{}, false
	}

	for c.pos < len(c.text) {
		p := c.pos
		r, size := runeAt(c.text, p)

		if isValidPreceding(r) {
			if sp, ok := c.matchURL(p + size); ok {
				c.pos = sp.end

				return sp.candidate(c.text, p), true
			}
		}

		// only the start of the text may stand in for a preceding rune
		if p == 0 {
			if sp, ok := c.matchURL(0); ok {
				c.pos = sp.end

				return sp.candidate(c.text, 0), true
			}
		}

		c.pos += size
	}

	c.done = true

	return Candidate{}, false
}

// Scan returns the candidates of text as a lazy sequence. Every iteration
// starts a fresh Cursor, so the sequence can be ranged over more than once.
func Scan(text string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		cur := NewCursor(text)
		for cand, ok := cur.Next(); ok; cand, ok = cur.Next() {
			if !yield(cand) {
				return
			}
		}
	}
}

// urlSpans holds the byte offsets of the parts of one URL match.
type urlSpans struct {
	start       int
	domainStart int
	domainEnd   int
	portEnd     int
	pathEnd     int
	end         int
}

func (sp urlSpans) candidate(text string, matchStart int) Candidate {
	c := Candidate{
		Match:     text[matchStart:sp.end],
		Preceding: text[matchStart:sp.start],
		URL:       text[sp.start:sp.end],
		Protocol:  text[sp.start:sp.domainStart],
		Domain:    text[sp.domainStart:sp.domainEnd],
		Path:      text[sp.portEnd:sp.pathEnd],
		Query:     text[sp.pathEnd:sp.end],
		Start:     sp.start,
		End:       sp.end,
	}
	if sp.portEnd > sp.domainEnd {
		c.Port = text[sp.domainEnd+1 : sp.portEnd]
	}

	return c
}

// matchURL matches a URL starting exactly at start. A protocol is optional;
// when the text after a protocol holds no domain the match is retried
// without it.
func (c *Cursor) matchURL(start int) (urlSpans, bool) {
	if n := protocolLen(c.text[start:]); n > 0 {
		if sp, ok := c.matchAfterProtocol(start, start+n); ok {
			return sp, true
		}
	}

	return c.matchAfterProtocol(start, start)
}

func protocolLen(s string) int {
	switch {
	case hasPrefixFold(s, protocolHTTPS):
		return len(protocolHTTPS)
	case hasPrefixFold(s, protocolHTTP):
		return len(protocolHTTP)
	}

	return 0
}

func (c *Cursor) matchAfterProtocol(start, domainStart int) (urlSpans, bool) {
	text := c.text
	domainEnd, ok := c.matchDomain(domainStart)
	if !ok {
		return urlSpans{}, false
	}

	sp := urlSpans{start: start, domainStart: domainStart, domainEnd: domainEnd}
	sp.portEnd = matchPort(text, domainEnd)
	sp.pathEnd = matchPath(text, sp.portEnd)
	sp.end = matchQuery(text, sp.pathEnd)

	return sp, true
}

// matchDomain matches a host at s and returns where it ends: a chain of
// labels closed by a known TLD or a punycode TLD, preferring the longest
// chain. Subdomain labels may hold '_'.
func (c *Cursor) matchDomain(s int) (int, bool) {
	if s >= len(c.text) {
		return 0, false
	}
	if r, _ := runeAt(c.text, s); !isDomainChar(r) {
		return 0, false
	}

	if !c.hosts.covers(s) {
		c.hosts.build(s, hostSpanEnd(c.text, s))
	}

	return c.hosts.domainEnd(s)
}

// hostSpanEnd returns the end of the run of domain runes, inner label runes
// and dots starting at s. No host crosses it.
func hostSpanEnd(text string, s int) int {
	for s < len(text) {
		r, size := runeAt(text, s)
		if !isDomainChar(r) && !isLabelInner(r) && r != '.' {
			break
		}
		s += size
	}

	return s
}

func isLabelInner(r rune) bool {
	return r == '-' || r == '_'
}

func matchPunycode(text string, s int) (int, bool) {
	if !hasPrefixFold(text[s:], punycodeLead) {
		return 0, false
	}

	start := s + len(punycodeLead)
	end := alnumRunEnd(text, start)

	return end, end > start
}

func alnumRunEnd(text string, i int) int {
	for i < len(text) && isASCIIAlnum(rune(text[i])) {
		i++
	}

	return i
}

func matchPort(text string, i int) int {
	if i >= len(text) || text[i] != ':' {
		return i
	}

	j := i + 1
	for j < len(text) && '0' <= text[j] && text[j] <= '9' {
		j++
	}
	if j == i+1 {
		return i
	}

	return j
}

// matchPath matches '/' followed by as many path segments as possible.
func matchPath(text string, i int) int {
	if i >= len(text) || text[i] != '/' {
		return i
	}

	i++
	for {
		next := matchPathSegment(text, i)
		if next == i {
			return i
		}
		i = next
	}
}

// matchPathSegment returns the end of the path segment at i, or i when there
// is none. A segment is the longest run of path characters and balanced
// parentheses that ends with a path ending character or a closing
// parenthesis, or else an "@user/" component.
func matchPathSegment(text string, i int) int {
	best := i

	for j := i; j < len(text); {
		r, size := runeAt(text, j)
		if r == '(' {
			end, ok := matchParens(text, j)
			if !ok {
				break
			}
			j, best = end, end

			continue
		}
		if !isPathChar(r) {
			break
		}
		j += size
		if isPathEndingChar(r) {
			best = j
		}
	}

	if best > i {
		return best
	}

	return matchAtSegment(text, i)
}

// matchParens matches '(' followed by path characters and ')'.
func matchParens(text string, i int) (int, bool) {
	j := i + 1
	for j < len(text) {
		r, size := runeAt(text, j)
		if !isPathChar(r) {
			break
		}
		j += size
	}

	if j == i+1 || j >= len(text) || text[j] != ')' {
		return 0, false
	}

	return j + 1, true
}

// matchAtSegment matches '@' followed by path characters up to and including
// the last '/' among them.
func matchAtSegment(text string, i int) int {
	if i >= len(text) || text[i] != '@' {
		return i
	}

	end := i
	for j := i + 1; j < len(text); {
		r, size := runeAt(text, j)
		if !isPathChar(r) {
			break
		}
		if r == '/' && j > i+1 {
			end = j + 1
		}
		j += size
	}

	return end
}

// matchQuery matches '?' followed by query characters, cut back to the last
// query ending character. Without one there is no query.
func matchQuery(text string, i int) int {
	if i >= len(text) || text[i] != '?' {
		return i
	}

	end := i
	for j := i + 1; j < len(text); j++ {
		r := rune(text[j])
		if !isQueryChar(r) {
			break
		}
		if isQueryEndingChar(r) {
			end = j + 1
		}
	}

	return end
}
