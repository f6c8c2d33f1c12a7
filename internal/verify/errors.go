package verify

import (
	"fmt"
	"strings"
)

// NetworkError covers fetch timeouts, non-2xx statuses and wrong
// content types. It is the only error kind that triggers the fallback
// tier.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetching %s failed", e.URL)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError means the document bytes could not be parsed as the
// expected format.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s document: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError means the document parsed but required fields were
// missing or empty after normalization. It never triggers fallback: a
// parsed-but-incomplete document is not retried against the same
// source.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return "could not extract required fields"
	}
	return fmt.Sprintf("could not extract required fields: %s", strings.Join(e.Missing, ", "))
}

// UpstreamRejection means the institution's own payload reported a
// non-success status before any extraction was attempted. Surfaced
// distinctly from ValidationError.
type UpstreamRejection struct {
	Status  string
	Message string
}

func (e *UpstreamRejection) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("upstream reported status %q", e.Status)
}
