package store

import (
	"context"
	"fmt"
	"sync"
)

// memStore implements SlotStore with an in-memory map.
type memStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemStore creates an ephemeral slot store, used in tests and for
// deployments where state should not outlive the process.
func NewMemStore() SlotStore {
	return &memStore{slots: make(map[string][]byte)}
}

func (s *memStore) Load(_ context.Context, slot string) ([]byte, error) {
	if !ValidSlot(slot) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.slots[slot]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *memStore) Save(_ context.Context, slot string, data []byte) error {
	if !ValidSlot(slot) {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.slots[slot] = stored
	return nil
}

func (s *memStore) Delete(_ context.Context, slot string) error {
	if !ValidSlot(slot) {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, slot)
	return nil
}
