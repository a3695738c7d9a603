package session

import (
	"context"
	"fmt"

	apperrors "jobmate/jobsearch-bot/internal/errors"
	"jobmate/jobsearch-bot/internal/logging"
	"jobmate/jobsearch-bot/internal/model"
)

const defaultMaxPages = 50

// Feed returns one page of listings per call.
type Feed interface {
	FetchPage(ctx context.Context, params model.QueryParams) (model.JobPage, error)
}

// Listings is the persistence surface both flows need.
type Listings interface {
	Create(ctx context.Context, listing model.Listing) (model.SavedListing, error)
	List(ctx context.Context) ([]model.SavedListing, error)
	Delete(ctx context.Context, id int64) error
}

// EventSink receives best-effort notifications about persisted listings.
type EventSink interface {
	ListingSaved(ctx context.Context, conversationID string, saved model.SavedListing)
	ListingRemoved(ctx context.Context, conversationID string, id int64)
}

type nopEvents struct{}

func (nopEvents) ListingSaved(context.Context, string, model.SavedListing) {}
func (nopEvents) ListingRemoved(context.Context, string, int64)            {}

// Option configures Search and Review.
type Option func(*options)

type options struct {
	logger   *logging.Logger
	events   EventSink
	maxPages int
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEvents sets where saved/removed notifications go.
func WithEvents(e EventSink) Option {
	return func(o *options) { o.events = e }
}

// WithMaxPages caps how many feed pages one search may walk. Reaching the
// cap is treated like the feed running out of results.
func WithMaxPages(n int) Option {
	return func(o *options) { o.maxPages = n }
}

func buildOptions(opts []Option) options {
	o := options{
		logger:   logging.NewNop(),
		events:   nopEvents{},
		maxPages: defaultMaxPages,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxPages < 1 {
		o.maxPages = 1
	}
	return o
}

// Search drives the multi-turn job search of every conversation. It holds
// no per-conversation data itself; that lives in the Store.
type Search struct {
	feed     Feed
	listings Listings
	store    Store
	events   EventSink
	logger   *logging.Logger
	maxPages int
}

// NewSearch returns a Search over the given collaborators.
func NewSearch(feed Feed, listings Listings, store Store, opts ...Option) *Search {
	o := buildOptions(opts)
	return &Search{
		feed:     feed,
		listings: listings,
		store:    store,
		events:   o.events,
		logger:   o.logger,
		maxPages: o.maxPages,
	}
}

// Start begins a new search, replacing whatever flow the conversation had.
func (s *Search) Start(ctx context.Context, conversationID string) ([]Reply, error) {
	st := &State{Flow: FlowSearch, Phase: PhaseIdle, Search: &SearchState{}}
	if err := st.advance(PhaseCollectingKeywords); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, conversationID, st); err != nil {
		return nil, err
	}
	s.logger.Debug("search started", "conversation", conversationID)
	return []Reply{message(MsgAskKeywords)}, nil
}

// OnText routes free text to whichever prompt the conversation is at.
func (s *Search) OnText(ctx context.Context, conversationID, text string) ([]Reply, error) {
	st, err := s.store.Load(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	switch {
	case st.in(FlowSearch, InputKeywords):
		return s.onKeywords(ctx, conversationID, st, text)
	case st.in(FlowSearch, InputLocation):
		return s.onLocation(ctx, conversationID, st, text)
	}
	return nil, apperrors.UnexpectedInput("no prompt is waiting for text")
}

// OnKeywords stores the keywords and asks for the location.
func (s *Search) OnKeywords(ctx context.Context, conversationID, text string) ([]Reply, error) {
	st, err := s.store.Load(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !st.in(FlowSearch, InputKeywords) {
		return nil, apperrors.UnexpectedInput("keywords are not expected now")
	}
	return s.onKeywords(ctx, conversationID, st, text)
}

// OnLocation runs the first query and shows its first listing.
func (s *Search) OnLocation(ctx context.Context, conversationID, text string) ([]Reply, error) {
	st, err := s.store.Load(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !st.in(FlowSearch, InputLocation) {
		return nil, apperrors.UnexpectedInput("a location is not expected now")
	}
	return s.onLocation(ctx, conversationID, st, text)
}

func (s *Search) onKeywords(ctx context.Context, conversationID string, st *State, text string) ([]Reply, error) {
	st.Search.Params.Keywords = text
	if err := st.advance(PhaseCollectingLocation); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, conversationID, st); err != nil {
		return nil, err
	}
	return []Reply{message(MsgAskLocation)}, nil
}

// onLocation leaves the conversation at the location prompt when the feed
// fails, so sending the location again retries the query.
func (s *Search) onLocation(ctx context.Context, conversationID string, st *State, text string) ([]Reply, error) {
	params := model.DefaultQueryParams(st.Search.Params.Keywords, text)

	page, err := s.feed.FetchPage(ctx, params)
	if err != nil {
		s.logger.Warn("first page fetch failed", "conversation", conversationID, "err", err)
		return nil, err
	}

	if len(page.Listings) == 0 {
		if err := st.advance(PhaseTerminated); err != nil {
			return nil, err
		}
		if err := s.store.Delete(ctx, conversationID); err != nil {
			return nil, err
		}
		s.logger.Debug("search found nothing", "conversation", conversationID)
		return []Reply{message(MsgNoJobs)}, nil
	}

	st.Search = &SearchState{Params: params, Page: page.Listings}
	if err := st.advance(PhaseActive); err != nil {
		return nil, err
	}
	s.logger.Debug("search active", "conversation", conversationID,
		"page_size", len(page.Listings), "total", page.Total)

	reply := s.show(st.Search)
	if err := s.store.Save(ctx, conversationID, st); err != nil {
		return nil, err
	}
	return []Reply{reply}, nil
}

// OnNext shows the next listing, fetching the following page when the
// current one is used up. An empty page, or reaching the page cap, ends
// the search. A feed failure leaves the state untouched.
func (s *Search) OnNext(ctx context.Context, conversationID string) ([]Reply, error) {
	st, err := s.store.Load(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !st.in(FlowSearch, InputNext) {
		return nil, apperrors.UnexpectedInput("no search results are being shown")
	}
	ss := st.Search

	if ss.Cursor < len(ss.Page) {
		reply := s.show(ss)
		if err := s.store.Save(ctx, conversationID, st); err != nil {
			return nil, err
		}
		return []Reply{reply}, nil
	}

	// One fetch per event: a non-empty page always has something at cursor 0,
	// and an empty page is the feed saying there is nothing more.
	nextIndex := ss.Params.PageIndex + 1
	var page model.JobPage
	if nextIndex < s.maxPages {
		params := ss.Params
		params.PageIndex = nextIndex

		page, err = s.feed.FetchPage(ctx, params)
		if err != nil {
			s.logger.Warn("next page fetch failed", "conversation", conversationID,
				"page", nextIndex, "err", err)
			return nil, err
		}
		if len(page.Listings) > 0 {
			ss.Previous = &PageSnapshot{Index: ss.Params.PageIndex, Listings: ss.Page}
			ss.Params = params
			ss.Page = page.Listings
			ss.Cursor = 0

			reply := s.show(ss)
			if err := s.store.Save(ctx, conversationID, st); err != nil {
				return nil, err
			}
			s.logger.Debug("search advanced page", "conversation", conversationID, "page", nextIndex)
			return []Reply{reply}, nil
		}
	}

	if err := st.advance(PhaseTerminated); err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, conversationID); err != nil {
		return nil, err
	}
	s.logger.Debug("search exhausted", "conversation", conversationID, "last_page", ss.Params.PageIndex)
	return []Reply{message(MsgNoMoreJobs)}, nil
}

// OnSave persists the listing ref points at. ref comes from the affordance
// of the listing as it was shown, not from the live cursor. The session
// state is not modified.
func (s *Search) OnSave(ctx context.Context, conversationID, ref string) ([]Reply, error) {
	saveRef, err := ParseSaveRef(ref)
	if err != nil {
		return nil, apperrors.UnexpectedInput(err.Error())
	}

	st, err := s.store.Load(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !st.in(FlowSearch, InputSave) {
		return nil, apperrors.UnexpectedInput("no search results are being shown")
	}

	listing, ok := st.Search.lookup(saveRef)
	if !ok {
		return nil, apperrors.UnexpectedInput(fmt.Sprintf("listing %s is no longer available", saveRef))
	}

	saved, err := s.listings.Create(ctx, listing)
	if err != nil {
		s.logger.Warn("save listing failed", "conversation", conversationID, "err", err)
		return nil, err
	}
	s.events.ListingSaved(ctx, conversationID, saved)
	s.logger.Debug("listing saved", "conversation", conversationID, "id", saved.ID)

	return []Reply{notice(MsgJobSaved)}, nil
}

// show renders the listing at the cursor and moves the cursor past it.
func (s *Search) show(ss *SearchState) Reply {
	ref := SaveRef{Page: ss.Params.PageIndex, Index: ss.Cursor}
	reply := listingReply(ss.Page[ss.Cursor], ref)
	ss.Cursor++
	return reply
}
