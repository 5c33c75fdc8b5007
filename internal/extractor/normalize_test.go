package extractor_test

import (
	"testing"
	"urlextract/internal/extractor"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		scheme string
		out    string
		ok     bool
	}{
		{
			name: "lowercase scheme and host; add root path",
			in:   "HTTP://Example.COM",
			out:  "http://example.com/",
			ok:   true,
		},
		{
			name:   "protocol-less url gets the default scheme",
			in:     "example.com",
			scheme: "https",
			out:    "https://example.com/",
			ok:     true,
		},
		{
			name: "empty default scheme means http",
			in:   "t.co/abc",
			out:  "http://t.co/abc",
			ok:   true,
		},
		{
			name: "remove default http port",
			in:   "http://example.com:80/path",
			out:  "http://example.com/path",
			ok:   true,
		},
		{
			name: "remove default https port",
			in:   "https://example.com:443/",
			out:  "https://example.com/",
			ok:   true,
		},
		{
			name: "keep non-default port",
			in:   "http://example.com:8080/",
			out:  "http://example.com:8080/",
			ok:   true,
		},
		{
			name: "clean path and drop trailing slash",
			in:   "http://example.com//a/./b/../c/",
			out:  "http://example.com/a/c",
			ok:   true,
		},
		{
			name: "sort query keys and values",
			in:   "http://example.com/path?b=2&a=2&a=1",
			out:  "http://example.com/path?a=1&a=2&b=2",
			ok:   true,
		},
		{
			name: "drop fragment",
			in:   "https://example.com/a#section",
			out:  "https://example.com/a",
			ok:   true,
		},
		{
			name: "internationalized host",
			in:   "HTTP://Bücher.DE:80/a/../b?z=1&a=2#frag",
			out:  "http://xn--bcher-kva.de/b?a=2&z=1",
			ok:   true,
		},
		{
			name: "invalid escape",
			in:   "http://example.com/%zz",
			ok:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractor.NormalizeURL(tc.in, tc.scheme)
			if !tc.ok {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.out, got)
		})
	}
}
