package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"jobmate/jobsearch-bot/internal/logging"
)

// Store maps a conversation id to its State. Load returns (nil, nil) when
// the conversation has no active flow. Delete of an absent id is not an
// error.
type Store interface {
	Load(ctx context.Context, conversationID string) (*State, error)
	Save(ctx context.Context, conversationID string, st *State) error
	Delete(ctx context.Context, conversationID string) error
}

// MemoryStore keeps encoded states in process memory. Entries idle longer
// than ttl are dropped by the sweeper started with StartSweeper.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	clock   func() time.Time
	cron    *cron.Cron
	logger  *logging.Logger
}

type memoryEntry struct {
	data      []byte
	updatedAt time.Time
}

// NewMemoryStore returns an empty store. ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration, logger *logging.Logger) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		clock:   time.Now,
		logger:  logger,
	}
}

func (m *MemoryStore) Load(_ context.Context, conversationID string) (*State, error) {
	m.mu.Lock()
	e, ok := m.entries[conversationID]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}

	var st State
	if err := json.Unmarshal(e.data, &st); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", conversationID, err)
	}
	return &st, nil
}

func (m *MemoryStore) Save(_ context.Context, conversationID string, st *State) error {
	now := m.clock()
	st.UpdatedAt = now

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", conversationID, err)
	}

	m.mu.Lock()
	m.entries[conversationID] = memoryEntry{data: data, updatedAt: now}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, conversationID string) error {
	m.mu.Lock()
	delete(m.entries, conversationID)
	m.mu.Unlock()
	return nil
}

// Len reports how many conversations currently hold state.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep drops entries idle for longer than ttl and returns how many it removed.
func (m *MemoryStore) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.clock().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.entries {
		if e.updatedAt.Before(cutoff) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on the given cron spec, e.g. "@every 10m".
func (m *MemoryStore) StartSweeper(spec string) error {
	c := cron.New(cron.WithLogger(cron.PrintfLogger(m.logger)))
	if _, err := c.AddFunc(spec, func() {
		if n := m.Sweep(); n > 0 {
			m.logger.Info("expired idle sessions", "count", n)
		}
	}); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	m.cron = c
	c.Start()
	m.logger.Info("session sweeper started", "spec", spec)
	return nil
}

// StopSweeper stops the sweeper, if running, and waits for a running sweep.
func (m *MemoryStore) StopSweeper() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
	m.logger.Info("session sweeper stopped")
}
