// Package crawler runs the paged discovery loop: it pulls candidate records
// from a content source, pushes each through the eligibility funnel, and
// keeps a resumable pagination cursor in the catalog store.
package crawler

import (
	"context"
)

// Candidate is a raw, not-yet-validated record from the content source.
type Candidate struct {
	VideoID     string
	Title       string
	Description string
	Thumbnail   string
	Language    string // Structured language code; empty when not reported
	RawDuration string // ISO-8601 duration; empty when not reported
	Tags        []string
}

// Page is one page of candidates plus the token for the next page. An empty
// NextToken means the source is exhausted.
type Page struct {
	Candidates []Candidate
	NextToken  string
}

// Source yields candidate records via a token-paged query protocol.
type Source interface {
	// FetchPage retrieves one page for the query. An empty token requests
	// the first page.
	FetchPage(ctx context.Context, query, token string) (*Page, error)
}
