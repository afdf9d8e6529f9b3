package order

import (
	"sync"

	"github.com/google/uuid"
)

// Business is the resolved counterparty a call is placed to.
type Business struct {
	Name        string
	Address     string
	PhoneNumber string
}

// Tracked is the server-side record of one order and its calls.
type Tracked struct {
	ID      string
	Status  Status
	Context Context

	Business *Business

	CallUUID         string
	ListenerCallUUID string
	UserPhone        string
	// ListenIn dials the user into a listen-only leg once the
	// restaurant answers.
	ListenIn bool

	RecordingURL         string
	ListenerRecordingURL string
}

// Store is an in-memory order registry. The durable artifacts of a call
// are the event log and final status; this store only tracks live orders
// for the serving API.
type Store struct {
	mu     sync.RWMutex
	orders map[string]*Tracked
}

func NewStore() *Store {
	return &Store{orders: make(map[string]*Tracked)}
}

// Create registers a new order and returns its generated identifier.
func (s *Store) Create(ctx Context, userPhone string) *Tracked {
	tracked := &Tracked{
		ID:        uuid.NewString()[:8],
		Status:    StatusDialing,
		Context:   ctx.Snapshot(),
		UserPhone: userPhone,
	}

	s.mu.Lock()
	s.orders[tracked.ID] = tracked
	s.mu.Unlock()
	return tracked
}

// Get returns a copy of the tracked order, or false when unknown.
func (s *Store) Get(id string) (Tracked, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tracked, ok := s.orders[id]
	if !ok {
		return Tracked{}, false
	}
	return *tracked, true
}

// FindByCallUUID returns the order owning a call leg, matching the main
// and the listener leg alike.
func (s *Store) FindByCallUUID(callUUID string) (Tracked, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tracked := range s.orders {
		if tracked.CallUUID == callUUID || tracked.ListenerCallUUID == callUUID {
			return *tracked, true
		}
	}
	return Tracked{}, false
}

// Update applies a mutation to the tracked order under the store lock.
func (s *Store) Update(id string, mutate func(*Tracked)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracked, ok := s.orders[id]
	if !ok {
		return false
	}
	mutate(tracked)
	return true
}
