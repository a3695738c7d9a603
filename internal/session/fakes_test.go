package session

import (
	"context"
	"fmt"
	"sync"

	apperrors "jobmate/jobsearch-bot/internal/errors"
	"jobmate/jobsearch-bot/internal/logging"
	"jobmate/jobsearch-bot/internal/model"
)

// fakeFeed serves pages by page index and records every query.
type fakeFeed struct {
	pages map[int][]model.Listing
	errAt map[int]error
	calls []model.QueryParams
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{pages: map[int][]model.Listing{}, errAt: map[int]error{}}
}

func (f *fakeFeed) FetchPage(_ context.Context, params model.QueryParams) (model.JobPage, error) {
	f.calls = append(f.calls, params)
	if err := f.errAt[params.PageIndex]; err != nil {
		return model.JobPage{}, err
	}
	listings := f.pages[params.PageIndex]
	return model.JobPage{Listings: listings, Total: len(listings)}, nil
}

func (f *fakeFeed) pageIndexes() []int {
	idx := make([]int, 0, len(f.calls))
	for _, c := range f.calls {
		idx = append(idx, c.PageIndex)
	}
	return idx
}

// fakeListings is an in-memory ListingStore with store-assigned ids from 1.
type fakeListings struct {
	mu        sync.Mutex
	nextID    int64
	rows      []model.SavedListing
	createErr error
	listErr   error
	deleteErr error
}

func newFakeListings() *fakeListings { return &fakeListings{nextID: 1} }

func (f *fakeListings) Create(_ context.Context, l model.Listing) (model.SavedListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return model.SavedListing{}, f.createErr
	}
	saved := model.SavedListing{ID: f.nextID, Listing: l}
	f.nextID++
	f.rows = append(f.rows, saved)
	return saved, nil
}

func (f *fakeListings) List(context.Context) ([]model.SavedListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.SavedListing, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeListings) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound(fmt.Sprintf("saved job %d not found", id), nil)
}

type recordedEvent struct {
	kind string
	id   int64
}

type fakeEvents struct {
	got []recordedEvent
}

func (f *fakeEvents) ListingSaved(_ context.Context, _ string, saved model.SavedListing) {
	f.got = append(f.got, recordedEvent{kind: "saved", id: saved.ID})
}

func (f *fakeEvents) ListingRemoved(_ context.Context, _ string, id int64) {
	f.got = append(f.got, recordedEvent{kind: "removed", id: id})
}

func newTestStore() *MemoryStore {
	return NewMemoryStore(0, logging.NewNop())
}

func listing(title string) model.Listing {
	return model.Listing{
		Title:          title,
		Company:        "Acme",
		EmploymentType: "fulltime",
		DatePosted:     "2024-01-01",
		URL:            "http://" + title,
	}
}
