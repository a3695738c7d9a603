// Package model defines the data shared by the feed client, the listing
// store and the conversation sessions.
package model

import (
	"strconv"
	"strings"
)

// DatePosted restricts the feed to listings newer than the given window.
type DatePosted string

const (
	DatePostedDay   DatePosted = "day"
	DatePostedWeek  DatePosted = "week"
	DatePostedMonth DatePosted = "month"
)

// EmploymentType is one of the feed's employment filters.
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "fulltime"
	EmploymentPartTime   EmploymentType = "parttime"
	EmploymentIntern     EmploymentType = "intern"
	EmploymentContractor EmploymentType = "contractor"
)

// QueryParams is one feed query. Only PageIndex changes once a search
// has started.
type QueryParams struct {
	Keywords        string           `json:"keywords"`
	Location        string           `json:"location"`
	Distance        float64          `json:"distance"`
	Language        string           `json:"language"`
	RemoteOnly      bool             `json:"remoteOnly"`
	DatePosted      DatePosted       `json:"datePosted"`
	EmploymentTypes []EmploymentType `json:"employmentTypes"`
	PageIndex       int              `json:"pageIndex"`
}

// DefaultQueryParams returns the fixed filters used by every search.
func DefaultQueryParams(keywords, location string) QueryParams {
	return QueryParams{
		Keywords:   keywords,
		Location:   location,
		Distance:   1.0,
		Language:   "en_GB",
		RemoteOnly: false,
		DatePosted: DatePostedMonth,
		EmploymentTypes: []EmploymentType{
			EmploymentFullTime,
			EmploymentPartTime,
			EmploymentIntern,
			EmploymentContractor,
		},
		PageIndex: 0,
	}
}

// JoinedEmploymentTypes renders the set the way the feed expects it:
// semicolon-separated, in the order given.
func (p QueryParams) JoinedEmploymentTypes() string {
	parts := make([]string, 0, len(p.EmploymentTypes))
	for _, t := range p.EmploymentTypes {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ";")
}

// FormatDistance renders Distance with at least one decimal ("1.0").
func (p QueryParams) FormatDistance() string {
	s := strconv.FormatFloat(p.Distance, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Listing is a single job posting as returned by the feed.
type Listing struct {
	Title          string `json:"title"`
	Company        string `json:"company"`
	EmploymentType string `json:"employmentType"`
	DatePosted     string `json:"datePosted"`
	URL            string `json:"url"`
}

// SavedListing is a Listing persisted by the user. ID is assigned by the store.
type SavedListing struct {
	ID int64 `json:"id"`
	Listing
}

// JobPage is one feed response. Total is whatever the provider reports and
// is not relied on for pagination.
type JobPage struct {
	Listings []Listing
	Total    int
}
