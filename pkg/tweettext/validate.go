package tweettext

import (
	"iter"
	"strings"
)

// Reason tells why a candidate was rejected.
type Reason int

const (
	// ReasonNone is the reason of accepted outcomes.
	ReasonNone Reason = iota
	// ReasonPrecedingChar rejects a protocol-less candidate glued to the
	// token before it, as in "file_name.com" or "a/b.com".
	ReasonPrecedingChar
	// ReasonNoASCIIDomain rejects a protocol-less candidate whose host holds
	// no ASCII domain.
	ReasonNoASCIIDomain
	// ReasonShortDomain rejects a protocol-less candidate whose ASCII domains
	// are all single labels under a country-code TLD, with no path to vouch
	// for them.
	ReasonShortDomain
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonPrecedingChar:
		return "preceding_char"
	case ReasonNoASCIIDomain:
		return "no_ascii_domain"
	case ReasonShortDomain:
		return "short_domain"
	}

	return "unknown"
}

// Outcome is the verdict on one candidate.
type Outcome struct {
	Accepted bool
	// URL is set for accepted outcomes only.
	URL    string
	Reason Reason
}

func accepted(url string) Outcome {
	return Outcome{Accepted: true, URL: url}
}

func rejected(reason Reason) Outcome {
	return Outcome{Reason: reason}
}

// Validate decides whether a candidate is a URL. A protocol is enough on its
// own. Without one, the candidate must not follow one of "-_./" and its host
// must contain an ASCII domain that is not a short one; a short last domain
// is still accepted when a path follows it.
func Validate(c Candidate) Outcome {
	if c.Protocol != "" {
		return accepted(c.URL)
	}

	if invalidPrecedingChars.MatchString(c.Preceding) {
		return rejected(ReasonPrecedingChar)
	}

	var sawSegment, sawValid, lastInvalid bool
	for seg := range DomainSegments(c.Domain) {
		sawSegment = true
		lastInvalid = invalidShortDomain.MatchString(strings.ToLower(seg.Text))
		if !lastInvalid {
			sawValid = true
		}
	}

	if lastInvalid && c.Path != "" {
		sawValid = true
	}

	switch {
	case sawValid:
		return accepted(c.URL)
	case !sawSegment:
		return rejected(ReasonNoASCIIDomain)
	default:
		return rejected(ReasonShortDomain)
	}
}

// DomainSegment is an ASCII domain found inside a candidate host.
type DomainSegment struct {
	Text string
	// Start and End are byte offsets inside the host.
	Start, End int
}

// DomainSegments finds the ASCII domains of a host, left to right and
// without overlap. An ASCII domain is a chain of labels made of ASCII
// letters, digits and latin accents, ending in a known TLD or a punycode
// label.
func DomainSegments(domain string) iter.Seq[DomainSegment] {
	return func(yield func(DomainSegment) bool) {
		segments := labelIndex{text: domain, label: isASCIIDomainChar, inner: noInnerRunes}
		segments.build(0, len(domain))

		for i := 0; i < len(domain); {
			if end, ok := segments.domainEnd(i); ok {
				if !yield(DomainSegment{Text: domain[i:end], Start: i, End: end}) {
					return
				}
				i = end

				continue
			}

			_, size := runeAt(domain, i)
			i += size
		}
	}
}
