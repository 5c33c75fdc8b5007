// Package tweettext extracts URLs from short free-form messages.
//
// Extraction is a pipeline of three stages:
//   - Scan finds candidates: spans shaped like a URL, with or without a protocol.
//   - Validate accepts or rejects each candidate. Candidates with a protocol
//     are always accepted. The others must stand apart from the preceding
//     token and name a plausible ASCII domain.
//   - ExtractURLs chains both and yields the accepted URLs in text order.
//
// All sequences are lazy and stop scanning as soon as the caller stops
// ranging. The package holds no mutable state and is safe for concurrent use.
package tweettext
