package repositories

import (
	"context"
	"sync"

	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
)

type MemoryRepository struct {
	mu           sync.RWMutex
	values       map[string]string
	results      map[string]map[string]*game.Result
	inventories  map[string]*types.Inventory
	achievements map[string]map[string]bool
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		values:       make(map[string]string),
		results:      make(map[string]map[string]*game.Result),
		inventories:  make(map[string]*types.Inventory),
		achievements: make(map[string]map[string]bool),
	}
}

func (r *MemoryRepository) Close(ctx context.Context) error {
	return nil
}

func (r *MemoryRepository) Has(ctx context.Context, key string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.values[key]
	return ok, nil
}

func (r *MemoryRepository) Get(ctx context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.values[key]
	if !ok {
		return "", &ErrNotFound{}
	}
	return value, nil
}

func (r *MemoryRepository) Set(ctx context.Context, key string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

func (r *MemoryRepository) RecordResults(ctx context.Context, userID string, results []*game.Result) ([]*game.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recorded, ok := r.results[userID]
	if !ok {
		recorded = make(map[string]*game.Result)
		r.results[userID] = recorded
	}

	var added []*game.Result
	for _, result := range results {
		if _, ok := recorded[result.ID]; ok {
			continue
		}
		stored := *result
		recorded[result.ID] = &stored
		added = append(added, result)
	}
	return added, nil
}

func (r *MemoryRepository) CountWins(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wins := 0
	for _, result := range r.results[userID] {
		if result.Won {
			wins++
		}
	}
	return wins, nil
}

func (r *MemoryRepository) GetInventory(ctx context.Context, userID string) (*types.Inventory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inventory, ok := r.inventories[userID]
	if !ok {
		return nil, &ErrNotFound{}
	}
	return inventory.Copy(), nil
}

func (r *MemoryRepository) SaveInventory(ctx context.Context, userID string, inventory *types.Inventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inventories[userID] = inventory.Copy()
	return nil
}

func (r *MemoryRepository) UnlockAchievements(ctx context.Context, userID string, achievementIDs []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	unlocked, ok := r.achievements[userID]
	if !ok {
		unlocked = make(map[string]bool)
		r.achievements[userID] = unlocked
	}

	var added []string
	for _, id := range achievementIDs {
		if unlocked[id] {
			continue
		}
		unlocked[id] = true
		added = append(added, id)
	}
	return added, nil
}
