package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"jobmate/jobsearch-bot/internal/model"
)

// State is everything a conversation remembers between events. Exactly one
// of Search and Review is set, matching Flow.
type State struct {
	Flow      Flow         `json:"flow"`
	Phase     Phase        `json:"phase"`
	Search    *SearchState `json:"search,omitempty"`
	Review    *ReviewState `json:"review,omitempty"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// SearchState holds the query and the page being walked.
// Invariant: 0 ≤ Cursor ≤ len(Page); Cursor == len(Page) means the next
// "next" fetches Params.PageIndex+1.
type SearchState struct {
	Params   model.QueryParams `json:"params"`
	Page     []model.Listing   `json:"page"`
	Cursor   int               `json:"cursor"`
	Previous *PageSnapshot     `json:"previous,omitempty"`
}

// PageSnapshot keeps the page before the current one so that a save on a
// listing shown right before a page rollover still resolves.
type PageSnapshot struct {
	Index    int             `json:"index"`
	Listings []model.Listing `json:"listings"`
}

// ReviewState is a fixed snapshot of the saved listings taken when review
// started. Removals during the review do not change it.
type ReviewState struct {
	Saved  []model.SavedListing `json:"saved"`
	Cursor int                  `json:"cursor"`
}

// advance moves st to phase `to`, refusing moves the flow does not allow.
func (st *State) advance(to Phase) error {
	if !IsTransitionAllowed(st.Flow, st.Phase, to) {
		return fmt.Errorf("session: transition %s → %s is not allowed in %s flow", st.Phase, to, st.Flow)
	}
	st.Phase = to
	return nil
}

// in reports whether st belongs to flow and is currently in a phase that
// handles input.
func (st *State) in(flow Flow, input Input) bool {
	return st != nil && st.Flow == flow && Accepts(flow, st.Phase, input)
}

// SaveRef identifies a shown listing by the page it was shown from and its
// position in that page. It never depends on the live cursor.
type SaveRef struct {
	Page  int
	Index int
}

func (r SaveRef) String() string {
	return fmt.Sprintf("%d:%d", r.Page, r.Index)
}

// ParseSaveRef parses the "page:index" form produced by SaveRef.String.
func ParseSaveRef(s string) (SaveRef, error) {
	pageStr, idxStr, ok := strings.Cut(s, ":")
	if !ok {
		return SaveRef{}, fmt.Errorf("malformed save reference %q", s)
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 0 {
		return SaveRef{}, fmt.Errorf("malformed save reference %q", s)
	}
	idx, err := strconv.Atoi(idxStr)
	if err != nil || idx < 0 {
		return SaveRef{}, fmt.Errorf("malformed save reference %q", s)
	}
	return SaveRef{Page: page, Index: idx}, nil
}

// lookup returns the listing ref points at, provided it has already been
// shown in this session.
func (ss *SearchState) lookup(ref SaveRef) (model.Listing, bool) {
	if ref.Page == ss.Params.PageIndex {
		if ref.Index < ss.Cursor && ref.Index < len(ss.Page) {
			return ss.Page[ref.Index], true
		}
		return model.Listing{}, false
	}
	if ss.Previous != nil && ref.Page == ss.Previous.Index && ref.Index < len(ss.Previous.Listings) {
		return ss.Previous.Listings[ref.Index], true
	}
	return model.Listing{}, false
}
