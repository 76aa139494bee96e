package savegame

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/rpg-loadout/internal/errors"
	"github.com/KirkDiggler/rpg-loadout/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-loadout/internal/savegame"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu    sync.RWMutex
	clock clock.Clock
	store map[string]*savegame.Record
}

// NewInMemory creates a new in-memory repository. A nil clock uses real time.
func NewInMemory(c clock.Clock) *InMemoryRepository {
	if c == nil {
		c = clock.New()
	}

	return &InMemoryRepository{
		clock: c,
		store: make(map[string]*savegame.Record),
	}
}

// Get retrieves a save
func (r *InMemoryRepository) Get(_ context.Context, input GetInput) (*GetOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.store[input.PlayerID]
	if !exists {
		return nil, errors.NotFoundf("save for player %s not found", input.PlayerID)
	}

	// Return a copy to prevent external modification
	return &GetOutput{Record: rec.Clone()}, nil
}

// Save stores a save
func (r *InMemoryRepository) Save(_ context.Context, input SaveInput) (*SaveOutput, error) {
	rec, err := prepare(input, r.clock.Now().Unix())
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[input.PlayerID] = rec
	return &SaveOutput{Record: rec.Clone()}, nil
}

// Delete removes a save
func (r *InMemoryRepository) Delete(_ context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[input.PlayerID]; !exists {
		return nil, errors.NotFoundf("save for player %s not found", input.PlayerID)
	}
	delete(r.store, input.PlayerID)

	return &DeleteOutput{}, nil
}

// List returns every player with a save
func (r *InMemoryRepository) List(_ context.Context, _ ListInput) (*ListOutput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.store))
	for id := range r.store {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &ListOutput{PlayerIDs: ids}, nil
}

var _ Repository = (*InMemoryRepository)(nil)
