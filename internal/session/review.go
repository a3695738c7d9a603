package session

import (
	"context"
	"strconv"

	apperrors "jobmate/jobsearch-bot/internal/errors"
	"jobmate/jobsearch-bot/internal/logging"
)

// Review walks the listings that were saved when the review started.
// Listings removed meanwhile stay visible until the review ends.
type Review struct {
	listings Listings
	store    Store
	events   EventSink
	logger   *logging.Logger
}

// NewReview returns a Review over the given collaborators. WithMaxPages
// has no effect here.
func NewReview(listings Listings, store Store, opts ...Option) *Review {
	o := buildOptions(opts)
	return &Review{
		listings: listings,
		store:    store,
		events:   o.events,
		logger:   o.logger,
	}
}

// Start snapshots the saved listings and shows the first. With nothing
// saved it only says so and leaves the conversation's state alone.
func (r *Review) Start(ctx context.Context, conversationID string) ([]Reply, error) {
	saved, err := r.listings.List(ctx)
	if err != nil {
		r.logger.Warn("list saved listings failed", "conversation", conversationID, "err", err)
		return nil, err
	}
	if len(saved) == 0 {
		return []Reply{message(MsgNoSaved)}, nil
	}

	st := &State{Flow: FlowReview, Phase: PhaseIdle, Review: &ReviewState{Saved: saved}}
	if err := st.advance(PhaseActive); err != nil {
		return nil, err
	}

	reply := r.show(st.Review)
	if err := r.store.Save(ctx, conversationID, st); err != nil {
		return nil, err
	}
	r.logger.Debug("review started", "conversation", conversationID, "saved", len(saved))
	return []Reply{reply}, nil
}

// OnNext shows the next snapshot entry or ends the review.
func (r *Review) OnNext(ctx context.Context, conversationID string) ([]Reply, error) {
	st, err := r.store.Load(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !st.in(FlowReview, InputNextSaved) {
		return nil, apperrors.UnexpectedInput("no saved listings are being reviewed")
	}

	if st.Review.Cursor < len(st.Review.Saved) {
		reply := r.show(st.Review)
		if err := r.store.Save(ctx, conversationID, st); err != nil {
			return nil, err
		}
		return []Reply{reply}, nil
	}

	if err := st.advance(PhaseTerminated); err != nil {
		return nil, err
	}
	if err := r.store.Delete(ctx, conversationID); err != nil {
		return nil, err
	}
	return []Reply{message(MsgNoMoreSaved)}, nil
}

// OnRemove deletes the saved listing with the id carried by ref. The id is
// a persisted reference, so no active review is required. Removing an id
// that is already gone is confirmed like any other removal.
func (r *Review) OnRemove(ctx context.Context, conversationID, ref string) ([]Reply, error) {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperrors.UnexpectedInput("malformed listing id " + strconv.Quote(ref))
	}

	err = r.listings.Delete(ctx, id)
	switch {
	case err == nil:
		r.events.ListingRemoved(ctx, conversationID, id)
		r.logger.Debug("listing removed", "conversation", conversationID, "id", id)
	case apperrors.IsType(err, apperrors.ErrTypeNotFound):
		r.logger.Debug("listing already removed", "conversation", conversationID, "id", id)
	default:
		r.logger.Warn("remove listing failed", "conversation", conversationID, "id", id, "err", err)
		return nil, err
	}

	return []Reply{notice(MsgJobRemoved)}, nil
}

func (r *Review) show(rs *ReviewState) Reply {
	reply := savedReply(rs.Saved[rs.Cursor])
	rs.Cursor++
	return reply
}
