// Package domain contains the core types and errors for the research search service.
package domain

// SearchQuery is a validated inbound search request.
type SearchQuery struct {
	// Text is the free-text query. Trimmed length is at least 2.
	Text string `validate:"required,min=2"`

	// Rows is the requested result count, clamped to [1, MaxRows].
	Rows int `validate:"min=1"`
}

// ResearchItem is the canonical, schema-stable record shape presented to
// consumers and exporters. Every optional upstream field normalizes to an
// empty string rather than a null; Year is the publication year's decimal
// digits, or "" when the upstream record carries no date component.
type ResearchItem struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Journal  string   `json:"journal"`
	Year     string   `json:"year"`
	DOI      string   `json:"doi"`
	Abstract string   `json:"abstract"`
	URL      string   `json:"url"`
}

// SearchResult is the assembled outcome of one successful search.
type SearchResult struct {
	// Total is the upstream-reported match count when present,
	// else len(Results).
	Total int `json:"total"`

	// Results holds the normalized records in upstream order.
	Results []ResearchItem `json:"results"`
}
