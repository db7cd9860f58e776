// Package intent owns the intent lifecycle: the store keyed by intent id and
// the service enforcing the transition table on top of it.
package intent

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/griffin-labs/griffin-orchestrator/models"
)

var intentLog zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	intentLog = zerolog.New(out).With().Timestamp().Str("component", "intent").Logger()
}

// SetLogger allows setting a custom logger
func SetLogger(l zerolog.Logger) {
	intentLog = l
}

// Store is the authoritative holder of intents. Implementations must be safe
// for concurrent use and must serialize status transitions per intent id so
// concurrent execute/cancel races resolve with exactly one winner.
type Store interface {
	// Get returns a copy of the intent.
	Get(id string) (models.Intent, bool)
	// Put inserts or replaces the intent.
	Put(in models.Intent)
	// Update applies fn to the stored intent under the store's lock and
	// returns the updated copy. updatedAt is advanced automatically.
	Update(id string, fn func(*models.Intent)) (models.Intent, bool)
	// CompareAndSwapStatus transitions the intent to the target status only
	// if its current status is one of from. It returns the intent as observed
	// after the attempt, whether the id exists, and whether the swap applied.
	CompareAndSwapStatus(id string, to models.IntentStatus, from ...models.IntentStatus) (in models.Intent, found, swapped bool)
}

// MemoryStore is the in-process Store. A single mutex covers the map and
// every per-intent mutation, which gives the linearizable transitions the
// lifecycle needs without per-key lock bookkeeping.
type MemoryStore struct {
	mu      sync.RWMutex
	intents map[string]*models.Intent
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{intents: make(map[string]*models.Intent)}
}

func (s *MemoryStore) Get(id string) (models.Intent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.intents[id]
	if !ok {
		return models.Intent{}, false
	}
	return cloneIntent(stored), true
}

func (s *MemoryStore) Put(in models.Intent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := cloneIntent(&in)
	s.intents[in.ID] = &copied
}

func (s *MemoryStore) Update(id string, fn func(*models.Intent)) (models.Intent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.intents[id]
	if !ok {
		return models.Intent{}, false
	}
	fn(stored)
	stored.UpdatedAt = time.Now().UTC()
	return cloneIntent(stored), true
}

func (s *MemoryStore) CompareAndSwapStatus(id string, to models.IntentStatus, from ...models.IntentStatus) (models.Intent, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.intents[id]
	if !ok {
		return models.Intent{}, false, false
	}
	for _, status := range from {
		if stored.Status == status {
			stored.Status = to
			stored.UpdatedAt = time.Now().UTC()
			if to.IsTerminal() {
				now := stored.UpdatedAt
				stored.CompletedAt = &now
			}
			return cloneIntent(stored), true, true
		}
	}
	return cloneIntent(stored), true, false
}

// Len reports the number of stored intents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.intents)
}

// cloneIntent deep-copies the mutable parts so callers never alias store
// state.
func cloneIntent(in *models.Intent) models.Intent {
	copied := *in
	if in.Transactions != nil {
		copied.Transactions = make([]models.TransactionInfo, len(in.Transactions))
		copy(copied.Transactions, in.Transactions)
	}
	if in.Route != nil {
		route := *in.Route
		route.Steps = make([]models.RouteStep, len(in.Route.Steps))
		copy(route.Steps, in.Route.Steps)
		copied.Route = &route
	}
	if in.Metadata != nil {
		copied.Metadata = make(map[string]string, len(in.Metadata))
		for k, v := range in.Metadata {
			copied.Metadata[k] = v
		}
	}
	return copied
}
