package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "jobmate/jobsearch-bot/internal/errors"
	"jobmate/jobsearch-bot/internal/model"
)

type reviewFixture struct {
	listings *fakeListings
	store    *MemoryStore
	events   *fakeEvents
	review   *Review
}

func newReviewFixture(saved ...model.Listing) *reviewFixture {
	f := &reviewFixture{
		listings: newFakeListings(),
		store:    newTestStore(),
		events:   &fakeEvents{},
	}
	for _, l := range saved {
		_, _ = f.listings.Create(context.Background(), l)
	}
	f.review = NewReview(f.listings, f.store, WithEvents(f.events))
	return f
}

func TestReview_EmptyStoreOnlySaysSo(t *testing.T) {
	f := newReviewFixture()

	replies, err := f.review.Start(context.Background(), conv)
	require.NoError(t, err)

	assert.Equal(t, []Reply{message(MsgNoSaved)}, replies)
	assert.Equal(t, 0, f.store.Len())
}

func TestReview_EmptyStoreLeavesSearchAlone(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	search := NewSearch(newFakeFeed(), f.listings, f.store)

	_, err := search.Start(ctx, conv)
	require.NoError(t, err)

	_, err = f.review.Start(ctx, conv)
	require.NoError(t, err)

	st, _ := f.store.Load(ctx, conv)
	require.NotNil(t, st)
	assert.Equal(t, FlowSearch, st.Flow)
}

func TestReview_WalksSnapshotThenEnds(t *testing.T) {
	f := newReviewFixture(listing("a"), model.Listing{Title: "b", Company: "Beta", URL: "http://b"})
	ctx := context.Background()

	replies, err := f.review.Start(ctx, conv)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, "Title: a\nCompany: Acme\nEmployment type: fulltime\nJob was posted: 2024-01-01\nLink: http://a", replies[0].Text)
	assert.Equal(t, []Affordance{
		{Label: "Next saved job", Action: ActionNextSaved},
		{Label: "Remove this job", Action: ActionRemoveJob, Ref: "1"},
	}, replies[0].Affordances)

	replies, err = f.review.OnNext(ctx, conv)
	require.NoError(t, err)
	assert.Equal(t, "Title: b\nCompany: Beta\nEmployment type: N/A\nJob was posted: N/A\nLink: http://b", replies[0].Text)
	assert.Equal(t, "2", replies[0].Affordances[1].Ref)

	replies, err = f.review.OnNext(ctx, conv)
	require.NoError(t, err)
	assert.Equal(t, []Reply{message(MsgNoMoreSaved)}, replies)
	assert.Equal(t, 0, f.store.Len())

	_, err = f.review.OnNext(ctx, conv)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnexpectedInput))
}

func TestReview_RemovedListingsStayInSnapshot(t *testing.T) {
	f := newReviewFixture(listing("a"), listing("b"))
	ctx := context.Background()

	_, err := f.review.Start(ctx, conv)
	require.NoError(t, err)

	replies, err := f.review.OnRemove(ctx, conv, "2")
	require.NoError(t, err)
	assert.Equal(t, []Reply{notice(MsgJobRemoved)}, replies)

	replies, err = f.review.OnNext(ctx, conv)
	require.NoError(t, err)
	assert.Contains(t, replies[0].Text, "Title: b")

	all, _ := f.listings.List(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, int64(1), all[0].ID)
}

func TestReview_RemoveTwiceIsBenign(t *testing.T) {
	f := newReviewFixture(listing("a"))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		replies, err := f.review.OnRemove(ctx, conv, "1")
		require.NoError(t, err)
		assert.Equal(t, []Reply{notice(MsgJobRemoved)}, replies)
	}

	assert.Equal(t, []recordedEvent{{kind: "removed", id: 1}}, f.events.got)
	all, _ := f.listings.List(ctx)
	assert.Empty(t, all)
}

func TestReview_RemoveMalformedID(t *testing.T) {
	f := newReviewFixture(listing("a"))

	for _, ref := range []string{"", "abc", "0", "-3"} {
		_, err := f.review.OnRemove(context.Background(), conv, ref)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnexpectedInput), "ref %q", ref)
	}
}

func TestReview_StorageErrorsPropagate(t *testing.T) {
	f := newReviewFixture(listing("a"))
	ctx := context.Background()

	f.listings.listErr = apperrors.Unavailable("down", nil)
	_, err := f.review.Start(ctx, conv)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnavailable))

	f.listings.deleteErr = apperrors.Unavailable("down", nil)
	_, err = f.review.OnRemove(ctx, conv, "1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnavailable))
}

func TestReview_NextDuringSearchIsIgnored(t *testing.T) {
	f := newReviewFixture(listing("a"))
	ctx := context.Background()

	search := NewSearch(newFakeFeed(), f.listings, f.store)
	_, err := search.Start(ctx, conv)
	require.NoError(t, err)

	_, err = f.review.OnNext(ctx, conv)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnexpectedInput))
}
