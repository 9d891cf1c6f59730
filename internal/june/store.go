package june

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StoreOptions configure context eviction. Zero values disable eviction and
// keep every context for the life of the process.
type StoreOptions struct {
	// MaxContexts caps the number of live contexts; when exceeded, the
	// least recently touched context is evicted.
	MaxContexts int
	// TTL expires contexts that have not been touched for this long.
	TTL time.Duration
}

type contextState struct {
	messages []Message
	touched  time.Time
}

// ContextStore owns the mapping from context id to ordered message history.
// All mutations are in-memory and process-lifetime; histories are
// append-only and their insertion order is the prompt for the next turn.
type ContextStore struct {
	systemPrompt string
	opts         StoreOptions
	now          func() time.Time

	mu       sync.RWMutex
	contexts map[string]*contextState
}

// NewContextStore creates an empty store. If systemPrompt is non-empty,
// every initialized context is seeded with it as the sole system message.
func NewContextStore(systemPrompt string, opts StoreOptions) *ContextStore {
	return &ContextStore{
		systemPrompt: systemPrompt,
		opts:         opts,
		now:          time.Now,
		contexts:     make(map[string]*contextState),
	}
}

// Resolve maps a caller-supplied context id to the id used for this turn.
// An empty id mints a fresh UUID and reports minted=true. A non-empty id is
// used as given; known reports whether it has live (non-expired) history.
// An unknown id is accepted rather than rejected; the caller is expected to
// Initialize it before appending.
func (s *ContextStore) Resolve(contextID string) (id string, minted, known bool) {
	if contextID == "" {
		return uuid.New().String(), true, false
	}

	s.mu.RLock()
	state, ok := s.contexts[contextID]
	known = ok && !s.expired(state)
	s.mu.RUnlock()

	return contextID, false, known
}

// Initialize creates an empty history for id, seeding the configured system
// prompt when present. An existing history under the same id is replaced.
func (s *ContextStore) Initialize(id string) {
	state := &contextState{touched: s.now()}
	if s.systemPrompt != "" {
		state.messages = append(state.messages, Message{Role: RoleSystem, Content: s.systemPrompt})
	}

	s.mu.Lock()
	s.contexts[id] = state
	s.evictLocked(id)
	s.mu.Unlock()
}

// AppendUser appends text as a user message to an existing history.
func (s *ContextStore) AppendUser(id, text string) error {
	return s.append(id, Message{Role: RoleUser, Content: text})
}

// AppendAssistant appends an assistant message to an existing history.
func (s *ContextStore) AppendAssistant(id string, msg Message) error {
	return s.append(id, msg)
}

func (s *ContextStore) append(id string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.contexts[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownContext, id)
	}
	state.messages = append(state.messages, msg)
	state.touched = s.now()
	return nil
}

// History returns a copy of the ordered message sequence for id. The slice
// is passed verbatim to the backend as the prompt.
func (s *ContextStore) History(id string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.contexts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContext, id)
	}
	out := make([]Message, len(state.messages))
	copy(out, state.messages)
	return out, nil
}

// Len reports the number of live contexts.
func (s *ContextStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contexts)
}

// IDs returns the ids of all live contexts, in no particular order.
func (s *ContextStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.contexts))
	for id := range s.contexts {
		ids = append(ids, id)
	}
	return ids
}

func (s *ContextStore) expired(state *contextState) bool {
	return s.opts.TTL > 0 && s.now().Sub(state.touched) > s.opts.TTL
}

// evictLocked drops expired contexts and, if the cap is still exceeded,
// the least recently touched ones. keep is never evicted. Caller holds mu.
func (s *ContextStore) evictLocked(keep string) {
	if s.opts.TTL > 0 {
		for id, state := range s.contexts {
			if id != keep && s.expired(state) {
				delete(s.contexts, id)
			}
		}
	}
	if s.opts.MaxContexts <= 0 {
		return
	}
	for len(s.contexts) > s.opts.MaxContexts {
		oldest := ""
		var oldestTouched time.Time
		for id, state := range s.contexts {
			if id == keep {
				continue
			}
			if oldest == "" || state.touched.Before(oldestTouched) {
				oldest = id
				oldestTouched = state.touched
			}
		}
		if oldest == "" {
			return
		}
		delete(s.contexts, oldest)
	}
}
