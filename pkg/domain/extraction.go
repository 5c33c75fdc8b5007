package domain

// URL is one URL found in a text.
type URL struct {
	// Text is the URL exactly as written in the text.
	Text string `json:"url"`
	// Normalized is the canonical form of Text; empty when normalization is
	// disabled or Text could not be parsed.
	Normalized string `json:"normalized,omitempty"`
	// Start and End are the code point offsets of Text in the text.
	Start int `json:"start"`
	End   int `json:"end"`
	// HasProtocol reports whether Text starts with http:// or https://.
	HasProtocol bool `json:"hasProtocol"`
}

// Extraction is the result of extracting the URLs of one text.
type Extraction struct {
	// URLs lists the accepted URLs in text order.
	URLs []URL `json:"urls"`
	// Candidates is the number of URL-like spans that were considered.
	Candidates int `json:"candidates"`
	// Rejected is the number of candidates that were not URLs.
	Rejected int `json:"rejected"`
}

// Principal identifies the authenticated caller of the API.
type Principal struct {
	// Subject is the "sub" claim of the caller's token.
	Subject string `json:"subject"`
}
