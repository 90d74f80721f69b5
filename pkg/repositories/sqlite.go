package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// a single connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)

	err = migrate(ctx, "sqlite", func(ctx context.Context, statement string) error {
		_, err := db.ExecContext(ctx, statement)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) Has(ctx context.Context, key string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv WHERE key = ?;`, key).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query key: %v", err)
	}
	return count > 0, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	if err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?;`, key).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", &ErrNotFound{}
		}
		return "", fmt.Errorf("failed to scan value: %v", err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value string) error {
	q := `
	INSERT OR REPLACE INTO kv (key, value, updated_at)
	VALUES (?, ?, ?);
	`
	if _, err := r.db.ExecContext(ctx, q, key, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to set value: %v", err)
	}
	return nil
}

func (r *SQLiteRepository) RecordResults(ctx context.Context, userID string, results []*game.Result) ([]*game.Result, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	q := `
	INSERT OR IGNORE INTO results (
		id, user_id, type, subtype, difficulty, level_id, started_at, elapsed_seconds, won, score,
		progress, mistakes, hints_used, cost_hints, cost_lives, cost_time_seconds, recorded_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	now := time.Now().UnixMilli()
	var added []*game.Result
	for _, result := range results {
		res, err := tx.ExecContext(ctx, q,
			result.ID, userID, int(result.Type), int(result.Subtype), int(result.Difficulty), result.LevelID,
			result.StartedAt.UnixMilli(), result.ElapsedSeconds, result.Won, result.Score, result.Progress,
			result.Mistakes, result.HintsUsed, result.Cost.Hints, result.Cost.Lives, result.Cost.TimeSeconds, now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert result: %v", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to read affected rows: %v", err)
		}
		if rows > 0 {
			added = append(added, result)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return added, nil
}

func (r *SQLiteRepository) CountWins(ctx context.Context, userID string) (int, error) {
	var wins int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results WHERE user_id = ? AND won = 1;`, userID).Scan(&wins); err != nil {
		return 0, fmt.Errorf("failed to count wins: %v", err)
	}
	return wins, nil
}

func (r *SQLiteRepository) GetInventory(ctx context.Context, userID string) (*types.Inventory, error) {
	var data string
	if err := r.db.QueryRowContext(ctx, `SELECT data FROM inventories WHERE user_id = ?;`, userID).Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan inventory: %v", err)
	}

	inventory := &types.Inventory{}
	if err := json.Unmarshal([]byte(data), inventory); err != nil {
		return nil, fmt.Errorf("failed to unmarshal inventory: %v", err)
	}
	return inventory, nil
}

func (r *SQLiteRepository) SaveInventory(ctx context.Context, userID string, inventory *types.Inventory) error {
	data, err := json.Marshal(inventory)
	if err != nil {
		return fmt.Errorf("failed to marshal inventory: %v", err)
	}
	q := `
	INSERT OR REPLACE INTO inventories (user_id, data)
	VALUES (?, ?);
	`
	if _, err := r.db.ExecContext(ctx, q, userID, string(data)); err != nil {
		return fmt.Errorf("failed to save inventory: %v", err)
	}
	return nil
}

func (r *SQLiteRepository) UnlockAchievements(ctx context.Context, userID string, achievementIDs []string) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	q := `
	INSERT OR IGNORE INTO achievements (user_id, achievement_id, unlocked_at)
	VALUES (?, ?, ?);
	`
	now := time.Now().UnixMilli()
	var added []string
	for _, id := range achievementIDs {
		res, err := tx.ExecContext(ctx, q, userID, id, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert achievement: %v", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to read affected rows: %v", err)
		}
		if rows > 0 {
			added = append(added, id)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return added, nil
}
