package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
)

// KeyValueStore is the durable string store the client persists its state in.
type KeyValueStore interface {
	Has(ctx context.Context, key string) (bool, error)
	// Get returns ErrNotFound for missing keys.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Close(ctx context.Context) error
}

// ReportRepository stores what the report service has acknowledged per user.
type ReportRepository interface {
	// RecordResults stores results whose id was not recorded yet and returns them.
	// Replayed results are ignored.
	RecordResults(ctx context.Context, userID string, results []*game.Result) ([]*game.Result, error)
	// CountWins returns the number of won results recorded for the user.
	CountWins(ctx context.Context, userID string) (int, error)
	// GetInventory returns ErrNotFound for users without an inventory.
	GetInventory(ctx context.Context, userID string) (*types.Inventory, error)
	SaveInventory(ctx context.Context, userID string, inventory *types.Inventory) error
	// UnlockAchievements stores the achievements and returns the ones that were not unlocked before.
	UnlockAchievements(ctx context.Context, userID string, achievementIDs []string) ([]string, error)
	Close(ctx context.Context) error
}

// Repository is implemented by every backend.
type Repository interface {
	KeyValueStore
	ReportRepository
}

// NewRepository opens the backend named by the data URL scheme:
// memory://, sqlite://<path> or postgres(ql)://...
func NewRepository(ctx context.Context, dataURL string) (Repository, error) {
	switch {
	case dataURL == "" || strings.HasPrefix(dataURL, "memory://"):
		return NewMemoryRepository(), nil
	case strings.HasPrefix(dataURL, "sqlite://"):
		repository, err := NewSQLiteRepository(ctx, strings.TrimPrefix(dataURL, "sqlite://"))
		if err != nil {
			return nil, err
		}
		return repository, nil
	case strings.HasPrefix(dataURL, "postgres://"), strings.HasPrefix(dataURL, "postgresql://"):
		repository, err := NewPostgresRepository(ctx, dataURL)
		if err != nil {
			return nil, err
		}
		return repository, nil
	}
	return nil, fmt.Errorf("unsupported data url: %s", dataURL)
}
