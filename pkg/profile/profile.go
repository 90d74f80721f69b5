// Package profile keeps the local player profile and syncs its inventory with the report service.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/cbodonnell/puzzleflow/pkg/log"
	"github.com/cbodonnell/puzzleflow/pkg/repositories"
)

const (
	InventoryKey = "profile.inventory"
	SettingsKey  = "profile.settings"
)

type GameplaySettings struct {
	// UnlimitedLives starts every session in no-mistake mode.
	UnlimitedLives bool `json:"unlimitedLives"`
}

type Settings struct {
	Gameplay GameplaySettings `json:"gameplay"`
}

type Profile struct {
	Inventory types.Inventory
	Settings  Settings
}

// Manager owns the profile and persists it to the key value store.
type Manager struct {
	store repositories.KeyValueStore

	mu      sync.RWMutex
	profile Profile
}

func NewManager(store repositories.KeyValueStore) *Manager {
	return &Manager{
		store: store,
	}
}

// Load reads the persisted profile. Missing entries keep their zero value.
func (m *Manager) Load(ctx context.Context) error {
	var p Profile
	if err := m.read(ctx, InventoryKey, &p.Inventory); err != nil {
		return err
	}
	if err := m.read(ctx, SettingsKey, &p.Settings); err != nil {
		return err
	}

	m.mu.Lock()
	m.profile = p
	m.mu.Unlock()
	return nil
}

func (m *Manager) read(ctx context.Context, key string, v interface{}) error {
	data, err := m.store.Get(ctx, key)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %v", key, err)
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %v", key, err)
	}
	return nil
}

func (m *Manager) write(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %v", key, err)
	}
	if err := m.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to write %s: %v", key, err)
	}
	return nil
}

// Profile returns a copy of the current profile.
func (m *Manager) Profile() Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profile
}

// Sync replaces the inventory with the one acknowledged by the report service.
func (m *Manager) Sync(ctx context.Context, inventory *types.Inventory) {
	if inventory == nil {
		return
	}
	m.mu.Lock()
	m.profile.Inventory = *inventory
	m.mu.Unlock()

	if err := m.write(ctx, InventoryKey, inventory); err != nil {
		log.Error("Failed to persist synced inventory: %v", err)
	}
}

func (m *Manager) SetSettings(ctx context.Context, settings Settings) error {
	m.mu.Lock()
	m.profile.Settings = settings
	m.mu.Unlock()
	return m.write(ctx, SettingsKey, settings)
}

// SetInventory overwrites the local inventory, e.g. after a purchase.
func (m *Manager) SetInventory(ctx context.Context, inventory types.Inventory) error {
	m.mu.Lock()
	m.profile.Inventory = inventory
	m.mu.Unlock()
	return m.write(ctx, InventoryKey, inventory)
}
