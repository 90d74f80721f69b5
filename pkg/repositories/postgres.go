package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/cbodonnell/puzzleflow/pkg/log"
	"github.com/jackc/pgx/v5"
)

// PostgresRepository serializes access to a single connection.
type PostgresRepository struct {
	mu   sync.Mutex
	conn *pgx.Conn
}

// NewPostgresRepository connects to the database and applies the migrations.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (*PostgresRepository, error) {
	conn, err := connectDb(ctx, connStr)
	if err != nil {
		return nil, err
	}

	err = migrate(ctx, "postgres", func(ctx context.Context, statement string) error {
		_, err := conn.Exec(ctx, statement)
		return err
	})
	if err != nil {
		conn.Close(ctx)
		return nil, err
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func connectDb(ctx context.Context, connStr string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = conn.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("unable to query database: %v", err)
	}

	log.Info("Connected to %s as %s", database, username)

	return conn, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) Has(ctx context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var exists bool
	if err := r.conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM kv WHERE key = $1);`, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to query key: %v", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Get(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var value string
	if err := r.conn.QueryRow(ctx, `SELECT value FROM kv WHERE key = $1;`, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", &ErrNotFound{}
		}
		return "", fmt.Errorf("failed to scan value: %v", err)
	}
	return value, nil
}

func (r *PostgresRepository) Set(ctx context.Context, key string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := `
	INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, $3)
	ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = $3;
	`
	if _, err := r.conn.Exec(ctx, q, key, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to set value: %v", err)
	}
	return nil
}

func (r *PostgresRepository) RecordResults(ctx context.Context, userID string, results []*game.Result) ([]*game.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	q := `
	INSERT INTO results (
		id, user_id, type, subtype, difficulty, level_id, started_at, elapsed_seconds, won, score,
		progress, mistakes, hints_used, cost_hints, cost_lives, cost_time_seconds, recorded_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	ON CONFLICT (id) DO NOTHING;
	`
	now := time.Now().UnixMilli()
	var added []*game.Result
	for _, result := range results {
		tag, err := tx.Exec(ctx, q,
			result.ID, userID, int(result.Type), int(result.Subtype), int(result.Difficulty), result.LevelID,
			result.StartedAt.UnixMilli(), result.ElapsedSeconds, result.Won, result.Score, result.Progress,
			result.Mistakes, result.HintsUsed, result.Cost.Hints, result.Cost.Lives, result.Cost.TimeSeconds, now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert result: %v", err)
		}
		if tag.RowsAffected() > 0 {
			added = append(added, result)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return added, nil
}

func (r *PostgresRepository) CountWins(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var wins int
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM results WHERE user_id = $1 AND won;`, userID).Scan(&wins); err != nil {
		return 0, fmt.Errorf("failed to count wins: %v", err)
	}
	return wins, nil
}

func (r *PostgresRepository) GetInventory(ctx context.Context, userID string) (*types.Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var data string
	if err := r.conn.QueryRow(ctx, `SELECT data FROM inventories WHERE user_id = $1;`, userID).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

func (r *PostgresRepository) SaveInventory(ctx context.Context, userID string, inventory *types.Inventory) error {
	data, err := json.Marshal(inventory)
	if err != nil {
		return fmt.Errorf("failed to marshal inventory: %v", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	q := `
	INSERT INTO inventories (user_id, data) VALUES ($1, $2)
	ON CONFLICT (user_id) DO UPDATE SET data = $2;
	`
	if _, err := r.conn.Exec(ctx, q, userID, string(data)); err != nil {
		return fmt.Errorf("failed to save inventory: %v", err)
	}
	return nil
}

func (r *PostgresRepository) UnlockAchievements(ctx context.Context, userID string, achievementIDs []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	q := `
	INSERT INTO achievements (user_id, achievement_id, unlocked_at) VALUES ($1, $2, $3)
	ON CONFLICT (user_id, achievement_id) DO NOTHING;
	`
	now := time.Now().UnixMilli()
	var added []string
	for _, id := range achievementIDs {
		tag, err := tx.Exec(ctx, q, userID, id, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert achievement: %v", err)
		}
		if tag.RowsAffected() > 0 {
			added = append(added, id)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return added, nil
}
