package extractor

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/idna"
)

// NormalizeURL returns a canonical, normalized representation of an extracted
// URL.
//
// The normalization rules help with de-duplicating URLs across texts:
//   - Prefix defaultScheme when the URL was written without a protocol
//   - Lower-case the scheme and host, and encode internationalized hosts as punycode
//   - Ensure path is present; empty path becomes "/"
//   - Clean the path (resolve dot-segments, collapse duplicate slashes)
//   - Remove a trailing slash (except for the root path "/")
//   - Drop default ports (http:80, https:443), keep non-default ports
//   - Sort query parameters by key and by value for stable ordering
//   - Remove the fragment
//
// If the input cannot be parsed as a URL, an error is returned.
func NormalizeURL(raw, defaultScheme string) (string, error) {
	if defaultScheme == "" {
		defaultScheme = "http"
	}
	if !hasScheme(raw) {
		raw = defaultScheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("could not parse URL: %w", err)
	}

	// lowercase scheme
	u.Scheme = strings.ToLower(u.Scheme)

	// if no path, make it "/"
	if u.Path == "" {
		u.Path = "/"
	}

	// clean path (removes dot-segments, duplicate slashes)
	cleaned := path.Clean(u.Path)

	// keep a leading slash for absolute URLs
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	u.Path = cleaned
	u.RawPath = ""

	// remove trailing slash (but not for root)
	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
	}

	// lowercase host and drop default ports
	host := strings.ToLower(u.Host)
	port := ""
	if ph, pp, err := net.SplitHostPort(host); err == nil {
		host, port = ph, pp
	}

	host, err = idna.Punycode.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("could not encode host: %w", err)
	}

	// remove default ports for common schemes
	if port != "" && !(u.Scheme == "http" && port == "80") && !(u.Scheme == "https" && port == "443") {
		u.Host = net.JoinHostPort(host, port)
	} else {
		u.Host = host
	}

	// sort query params (keys and values)
	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			sort.Strings(q[k])
		}
		// url.Values.Encode() sorts keys lexicographically
		u.RawQuery = q.Encode()
	}

	// remove fragment
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}

func hasScheme(raw string) bool {
	i := strings.Index(raw, "://")
	if i <= 0 {
		return false
	}

	scheme := strings.ToLower(raw[:i])

	return scheme == "http" || scheme == "https"
}
