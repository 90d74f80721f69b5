// Package stats aggregates finished sessions into statistics and local achievement progress.
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/cbodonnell/puzzleflow/pkg/repositories"
	"github.com/samber/lo"
)

const (
	StatisticsKey   = "stats.statistics"
	AchievementsKey = "stats.achievements"
)

type Key struct {
	Type       types.GameType   `json:"type"`
	Difficulty types.Difficulty `json:"difficulty"`
}

type Entry struct {
	Key
	Played int `json:"played"`
	Won    int `json:"won"`
	// BestSeconds is the fastest win, zero until the first win.
	BestSeconds float64 `json:"bestSeconds"`
	BestScore   int     `json:"bestScore"`
}

// Statistics counts finished sessions per game type and difficulty.
type Statistics struct {
	mu      sync.RWMutex
	entries map[Key]*Entry
}

func NewStatistics() *Statistics {
	return &Statistics{
		entries: make(map[Key]*Entry),
	}
}

func (s *Statistics) AddResult(result *game.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key{Type: result.Type, Difficulty: result.Difficulty}
	entry, ok := s.entries[key]
	if !ok {
		entry = &Entry{Key: key}
		s.entries[key] = entry
	}

	entry.Played++
	entry.BestScore = max(entry.BestScore, result.Score)
	if result.Won {
		entry.Won++
		if entry.BestSeconds == 0 || result.ElapsedSeconds < entry.BestSeconds {
			entry.BestSeconds = result.ElapsedSeconds
		}
	}
}

// Entries returns every entry ordered by type and difficulty.
func (s *Statistics) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := lo.MapToSlice(s.entries, func(_ Key, entry *Entry) Entry {
		return *entry
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Type != entries[j].Type {
			return entries[i].Type < entries[j].Type
		}
		return entries[i].Difficulty < entries[j].Difficulty
	})
	return entries
}

func (s *Statistics) Save(ctx context.Context, store repositories.KeyValueStore) error {
	return saveJSON(ctx, store, StatisticsKey, s.Entries())
}

func (s *Statistics) Load(ctx context.Context, store repositories.KeyValueStore) error {
	var entries []Entry
	if err := loadJSON(ctx, store, StatisticsKey, &entries); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = lo.SliceToMap(entries, func(entry Entry) (Key, *Entry) {
		return entry.Key, &entry
	})
	return nil
}

// Achievements tracks local progress towards achievements. Unlocking is
// decided by the report service.
type Achievements struct {
	mu       sync.RWMutex
	progress map[string]int
}

const (
	ProgressWins         = "wins"
	ProgressPerfectGames = "perfect_games"
	ProgressDailyGames   = "daily_games"
)

func NewAchievements() *Achievements {
	return &Achievements{
		progress: make(map[string]int),
	}
}

func (a *Achievements) AddResult(result *game.Result) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if result.Won {
		a.progress[ProgressWins]++
		if result.Mistakes == 0 {
			a.progress[ProgressPerfectGames]++
		}
	}
	if result.Subtype == types.GameSubtypeToday {
		a.progress[ProgressDailyGames]++
	}
}

func (a *Achievements) Progress(name string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.progress[name]
}

func (a *Achievements) Save(ctx context.Context, store repositories.KeyValueStore) error {
	a.mu.RLock()
	progress := lo.Assign(a.progress)
	a.mu.RUnlock()
	return saveJSON(ctx, store, AchievementsKey, progress)
}

func (a *Achievements) Load(ctx context.Context, store repositories.KeyValueStore) error {
	progress := make(map[string]int)
	if err := loadJSON(ctx, store, AchievementsKey, &progress); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.progress = progress
	return nil
}

func saveJSON(ctx context.Context, store repositories.KeyValueStore, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %v", key, err)
	}
	if err := store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to write %s: %v", key, err)
	}
	return nil
}

func loadJSON(ctx context.Context, store repositories.KeyValueStore, key string, v interface{}) error {
	data, err := store.Get(ctx, key)
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
