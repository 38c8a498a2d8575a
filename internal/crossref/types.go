// Package crossref provides a client for the CrossRef works API and the
// normalization of its records into the canonical result shape.
//
// CrossRef is a DOI registration agency exposing bibliographic metadata
// for scholarly works. Its schema is loose: several fields arrive as
// either a scalar or an array, author name parts may be absent, and date
// information is nested and optional at every level. The types here model
// that looseness explicitly so that every downstream access is a total,
// defaulted read.
//
// API documentation: https://api.crossref.org/swagger-ui/index.html
package crossref

import "encoding/json"

// WorksResponse is the top-level envelope of the works endpoint.
type WorksResponse struct {
	Status  string       `json:"status"`
	Message WorksMessage `json:"message"`
}

// WorksMessage carries the result items and the reported match count.
type WorksMessage struct {
	TotalResults int    `json:"total-results"`
	Items        []Work `json:"items"`
}

// Work is a single raw record from the works endpoint. Only the fields
// the normalizer consumes are decoded.
type Work struct {
	Title          FlexString `json:"title"`
	Author         []Author   `json:"author"`
	ContainerTitle FlexString `json:"container-title"`
	Issued         DateField  `json:"issued"`
	Created        DateField  `json:"created"`
	DOI            string     `json:"DOI"`
	Abstract       string     `json:"abstract"`
	URL            string     `json:"URL"`
}

// Author is one entry of a work's author list. Either name part may be
// missing.
type Author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

// DateField is CrossRef's nested date representation: a list of
// date-part tuples, each [year, month, day] with trailing parts optional.
type DateField struct {
	DateParts [][]int `json:"date-parts"`
}

// Year returns the first year component, or 0 when no date part exists.
func (d DateField) Year() int {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}

// FlexString absorbs a JSON value that may be a string, an array of
// strings, or absent. First returns the first present value, defaulting
// to the empty string, so callers never branch on shape.
type FlexString struct {
	values []string
}

// UnmarshalJSON accepts a scalar string, an array of strings, or null.
// Non-string shapes decode to the empty value rather than failing, which
// keeps normalization total over malformed payloads.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	f.values = nil

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "" {
			f.values = []string{s}
		}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		f.values = list
		return nil
	}

	return nil
}

// First returns the first value, or "" when none is present.
func (f FlexString) First() string {
	if len(f.values) == 0 {
		return ""
	}
	return f.values[0]
}
