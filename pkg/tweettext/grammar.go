package tweettext

import (
	"strings"
	"unicode/utf8"

	"github.com/coregx/coregex"
)

// badRune stands in for a byte that is not valid UTF-8. It belongs to no
// character class except the valid preceding characters.
const badRune rune = -1

const (
	protocolHTTP  = "http://"
	protocolHTTPS = "https://"
	punycodeLead  = "xn--"
)

// genericTLDs lists the generic top-level domains recognised after a domain
// name. Order is irrelevant: a TLD always extends to the end of the ASCII
// alphanumeric run it starts.
var genericTLDs = []string{ //nolint: gochecknoglobals
	"aero", "asia", "biz", "cat", "com", "coop", "edu", "gov", "info", "int",
	"jobs", "mil", "mobi", "museum", "name", "net", "org", "pro", "tel",
	"travel", "xxx",
}

// countryTLDs lists the country-code top-level domains.
var countryTLDs = []string{ //nolint: gochecknoglobals
	"ac", "ad", "ae", "af", "ag", "ai", "al", "am", "an", "ao", "aq", "ar",
	"as", "at", "au", "aw", "ax", "az", "ba", "bb", "bd", "be", "bf", "bg",
	"bh", "bi", "bj", "bm", "bn", "bo", "br", "bs", "bt", "bv", "bw", "by",
	"bz", "ca", "cc", "cd", "cf", "cg", "ch", "ci", "ck", "cl", "cm", "cn",
	"co", "cr", "cs", "cu", "cv", "cx", "cy", "cz", "dd", "de", "dj", "dk",
	"dm", "do", "dz", "ec", "ee", "eg", "eh", "er", "es", "et", "eu", "fi",
	"fj", "fk", "fm", "fo", "fr", "ga", "gb", "gd", "ge", "gf", "gg", "gh",
	"gi", "gl", "gm", "gn", "gp", "gq", "gr", "gs", "gt", "gu", "gw", "gy",
	"hk", "hm", "hn", "hr", "ht", "hu", "id", "ie", "il", "im", "in", "io",
	"iq", "ir", "is", "it", "je", "jm", "jo", "jp", "ke", "kg", "kh", "ki",
	"km", "kn", "kp", "kr", "kw", "ky", "kz", "la", "lb", "lc", "li", "lk",
	"lr", "ls", "lt", "lu", "lv", "ly", "ma", "mc", "md", "me", "mg", "mh",
	"mk", "ml", "mm", "mn", "mo", "mp", "mq", "mr", "ms", "mt", "mu", "mv",
	"mw", "mx", "my", "mz", "na", "nc", "ne", "nf", "ng", "ni", "nl", "no",
	"np", "nr", "nu", "nz", "om", "pa", "pe", "pf", "pg", "ph", "pk", "pl",
	"pm", "pn", "pr", "ps", "pt", "pw", "py", "qa", "re", "ro", "rs", "ru",
	"rw", "sa", "sb", "sc", "sd", "se", "sg", "sh", "si", "sj", "sk", "sl",
	"sm", "sn", "so", "sr", "ss", "st", "su", "sv", "sy", "sz", "tc", "td",
	"tf", "tg", "th", "tj", "tk", "tl", "tm", "tn", "to", "tp", "tr", "tt",
	"tv", "tw", "tz", "ua", "ug", "uk", "us", "uy", "uz", "va", "vc", "ve",
	"vg", "vi", "vn", "vu", "wf", "ws", "ye", "yt", "za", "zm", "zw",
}

// maxTLDLength is the length of the longest known TLD.
const maxTLDLength = 6

var knownTLDs = func() map[string]struct{} { //nolint: gochecknoglobals
	m := make(map[string]struct{}, len(genericTLDs)+len(countryTLDs))
	for _, tlds := range [][]string{genericTLDs, countryTLDs} {
		for _, tld := range tlds {
			if len(tld) > maxTLDLength {
				panic("tweettext: TLD longer than maxTLDLength: " + tld)
			}
			m[tld] = struct{}{}
		}
	}

	return m
}()

// invalidDomainClass is the body of the character class of runes that can
// never appear inside a domain label: ASCII punctuation, spaces, and
// directional/non-character code points.
const invalidDomainClass = `!'"#%&()*+,\\\-./:;<=>?@\[\]^_{|}~$` + "`" +
	`\x{2000}-\x{200a}\t-\r \x{85}\x{a0}\x{1680}\x{180e}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}` +
	`\x{fffe}\x{feff}\x{ffff}\x{202a}-\x{202e}`

// asciiInvalidDomainChars is the ASCII punctuation part of invalidDomainClass.
const asciiInvalidDomainChars = "!'\"#%&()*+,\\-./:;<=>?@[]^_{|}~$`"

// invalidShortDomain matches a lower-cased ASCII domain segment made of one
// label and a country-code TLD, like "t.co" or "example.jp".
var invalidShortDomain = coregex.MustCompile( //nolint: gochecknoglobals
	`^(?:[^` + invalidDomainClass + `](?:-|[^` + invalidDomainClass + `])*)?[^` + invalidDomainClass + `]\.` +
		`(?:` + strings.Join(countryTLDs, "|") + `)$`)

// invalidPrecedingChars matches a preceding character that glues a
// protocol-less candidate to the token before it.
var invalidPrecedingChars = coregex.MustCompile(`[-_./]$`) //nolint: gochecknoglobals

func isASCIIAlnum(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}

func isLatinAccent(r rune) bool {
	switch {
	case 0x00c0 <= r && r <= 0x00d6,
		0x00d8 <= r && r <= 0x00f6,
		0x00f8 <= r && r <= 0x024f,
		r == 0x0253, r == 0x0254, r == 0x0256, r == 0x0257,
		r == 0x0259, r == 0x025b, r == 0x0263, r == 0x0268,
		r == 0x026f, r == 0x0272, r == 0x0289, r == 0x028b,
		r == 0x02bb,
		0x1e00 <= r && r <= 0x1eff:
		return true
	}

	return false
}

func isDirectionalOrNonChar(r rune) bool {
	return r == 0xfffe || r == 0xfeff || r == 0xffff || (0x202a <= r && r <= 0x202e)
}

// isGraphemeExtender reports the runes that only modify the rune before
// them: emoji skin tones, the zero width joiner and variation selectors.
func isGraphemeExtender(r rune) bool {
	switch {
	case 0x1f3fb <= r && r <= 0x1f3ff,
		r == 0x200d,
		0xfe00 <= r && r <= 0xfe0f,
		0xe0100 <= r && r <= 0xe01ef:
		return true
	}

	return false
}

// isValidPreceding reports whether r may sit right before a URL.
func isValidPreceding(r rune) bool {
	switch {
	case isASCIIAlnum(r):
		return false
	case r == '@', r == '＠', r == '$', r == '#', r == '＃':
		return false
	case r == 0x200d:
		// the rune after a joiner belongs to the same emoji
		return false
	case isDirectionalOrNonChar(r):
		return false
	}

	return true
}

func isDomainSpace(r rune) bool {
	switch {
	case 0x2000 <= r && r <= 0x200a, '\t' <= r && r <= '\r':
		return true
	}
	switch r {
	case ' ', 0x85, 0xa0, 0x1680, 0x180e, 0x2028, 0x2029, 0x202f, 0x205f, 0x3000:
		return true
	}

	return false
}

// isDomainChar reports whether r may appear in a domain label. The set is
// open: anything that is not punctuation, space or a special code point.
func isDomainChar(r rune) bool {
	switch {
	case r == badRune:
		return false
	case r < utf8.RuneSelf && strings.ContainsRune(asciiInvalidDomainChars, r):
		return false
	}

	return !isDomainSpace(r) && !isDirectionalOrNonChar(r) && !isGraphemeExtender(r)
}

// isASCIIDomainChar is the label class of the ASCII domain segment grammar.
func isASCIIDomainChar(r rune) bool {
	return isASCIIAlnum(r) || isLatinAccent(r)
}

// isPathChar is the general path character class.
func isPathChar(r rune) bool {
	if isASCIIAlnum(r) || isLatinAccent(r) {
		return true
	}

	return r < utf8.RuneSelf && strings.ContainsRune("!*';:=+,.$/%#[]-_~|&", r)
}

// isPathEndingChar is the class of runes a path segment may end with.
func isPathEndingChar(r rune) bool {
	if isASCIIAlnum(r) || isLatinAccent(r) {
		return true
	}

	return r < utf8.RuneSelf && strings.ContainsRune("+-=_#/", r)
}

func isQueryChar(r rune) bool {
	return isASCIIAlnum(r) || (r < utf8.RuneSelf && strings.ContainsRune("!?*'();:&=+$/%#[]-_.,~|", r))
}

func isQueryEndingChar(r rune) bool {
	return isASCIIAlnum(r) || (r < utf8.RuneSelf && strings.ContainsRune("_&=#/", r))
}

// isTLD reports whether the ASCII token is a known top-level domain,
// ignoring case.
func isTLD(token string) bool {
	if len(token) > maxTLDLength {
		return false
	}

	var lower [maxTLDLength]byte
	for i := range len(token) {
		c := token[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		lower[i] = c
	}
	_, ok := knownTLDs[string(lower[:len(token)])]

	return ok
}

// tldEnd returns the end of the TLD starting at i: a known TLD spanning the
// whole ASCII alphanumeric run, or a punycode label. It returns -1 when
// there is none.
func tldEnd(text string, i int) int {
	if end := alnumRunEnd(text, i); end > i && isTLD(text[i:end]) {
		return end
	}
	if end, ok := matchPunycode(text, i); ok {
		return end
	}

	return -1
}

// hasPrefixFold is strings.HasPrefix ignoring ASCII case.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// runeAt decodes the rune starting at byte offset i. Invalid bytes decode to
// badRune with width 1.
func runeAt(s string, i int) (rune, int) {
	r, size := utf8.DecodeRuneInString(s[i:])
	if r == utf8.RuneError && size <= 1 {
		return badRune, 1
	}

	return r, size
}
