// Package events publishes listing lifecycle events on Redis pub/sub.
// Publishing is best-effort: failures are logged, never returned.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"jobmate/jobsearch-bot/internal/logging"
	"jobmate/jobsearch-bot/internal/model"
)

const (
	ListingSaved   = "EVENT_LISTING_SAVED"
	ListingRemoved = "EVENT_LISTING_REMOVED"
)

// Event is the JSON payload sent on the channel named after Type.
type Event struct {
	ID             string              `json:"id"`
	Type           string              `json:"type"`
	ConversationID string              `json:"conversationId"`
	ListingID      int64               `json:"listingId"`
	Listing        *model.SavedListing `json:"listing,omitempty"`
	At             time.Time           `json:"at"`
}

// Publisher sends events to Redis. A nil client turns it into a no-op.
type Publisher struct {
	rdb    *redis.Client
	logger *logging.Logger
	clock  func() time.Time
}

func NewPublisher(rdb *redis.Client, logger *logging.Logger) *Publisher {
	return &Publisher{rdb: rdb, logger: logger, clock: time.Now}
}

func (p *Publisher) ListingSaved(ctx context.Context, conversationID string, saved model.SavedListing) {
	p.publish(ctx, Event{
		Type:           ListingSaved,
		ConversationID: conversationID,
		ListingID:      saved.ID,
		Listing:        &saved,
	})
}

func (p *Publisher) ListingRemoved(ctx context.Context, conversationID string, id int64) {
	p.publish(ctx, Event{
		Type:           ListingRemoved,
		ConversationID: conversationID,
		ListingID:      id,
	})
}

func (p *Publisher) publish(ctx context.Context, ev Event) {
	if p == nil || p.rdb == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.At = p.clock().UTC()

	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn("marshal event failed", "type", ev.Type, "err", err)
		return
	}
	if err := p.rdb.Publish(ctx, ev.Type, payload).Err(); err != nil {
		p.logger.Warn("publish event failed", "type", ev.Type, "err", err)
	}
}
