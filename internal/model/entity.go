package model

import "strings"

// Entity identifies the subject being crawled, such as an exchange or a fund.
// An Entity is supplied by the search endpoint and is never modified after it
// has been selected for a crawl.
type Entity struct {
	// ID is the opaque identifier used by the transfer-list endpoint.
	ID string `json:"id"`

	// Name is the display name. Extraction compares counterparty entity
	// names against this value exactly.
	Name string `json:"name"`

	// Type is the entity category (e.g. "cex"). It may be empty.
	Type string `json:"type,omitempty"`
}

// IsZero reports whether the entity has neither an ID nor a name.
func (e Entity) IsZero() bool {
	return strings.TrimSpace(e.ID) == "" && strings.TrimSpace(e.Name) == ""
}

// String returns "Name (ID)" or just the ID when the name is unknown.
func (e Entity) String() string {
	if e.Name == "" {
		return e.ID
	}
	if e.ID == "" || e.ID == e.Name {
		return e.Name
	}
	return e.Name + " (" + e.ID + ")"
}
