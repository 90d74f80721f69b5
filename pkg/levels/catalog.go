// Package levels loads the puzzle catalog and selects levels for new sessions.
package levels

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
)

// File is the TOML layout of a catalog file.
type File struct {
	Classic  []Entry `toml:"classic"`
	Busted   []Entry `toml:"busted"`
	Tutorial *Entry  `toml:"tutorial"`
}

type Entry struct {
	ID         string `toml:"id"`
	Difficulty string `toml:"difficulty"`
	Data       string `toml:"data"`
}

type level struct {
	game.Level
	difficulty types.Difficulty
}

// strategy resolves levels of one game type.
type strategy struct {
	find   func(id string) (game.Level, error)
	random func(difficulty types.Difficulty) (game.Level, error)
}

type Catalog struct {
	strategies map[types.GameType]strategy
	tutorial   *game.Level
	rnd        *rand.Rand
}

// NewCatalogOptions contains options for creating a new Catalog.
type NewCatalogOptions struct {
	File File
	// Rand is used for random selection. A time-seeded source is used when nil.
	Rand *rand.Rand
}

func NewCatalog(opts NewCatalogOptions) (*Catalog, error) {
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	c := &Catalog{
		strategies: make(map[types.GameType]strategy),
		rnd:        rnd,
	}

	pools := map[types.GameType][]Entry{
		types.GameTypeClassic: opts.File.Classic,
		types.GameTypeBusted:  opts.File.Busted,
	}
	for gameType, entries := range pools {
		pool, err := parseEntries(entries)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s levels: %v", gameType, err)
		}
		c.strategies[gameType] = c.poolStrategy(gameType, pool)
	}

	if opts.File.Tutorial != nil {
		c.tutorial = &game.Level{
			ID:   opts.File.Tutorial.ID,
			Data: opts.File.Tutorial.Data,
		}
	}

	return c, nil
}

// LoadCatalog reads a catalog from a TOML file.
func LoadCatalog(path string) (*Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat level catalog: %v", err)
	}
	var file File
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to decode level catalog: %v", err)
	}
	return NewCatalog(NewCatalogOptions{File: file})
}

func parseEntries(entries []Entry) ([]level, error) {
	pool := make([]level, 0, len(entries))
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.ID == "" {
			return nil, fmt.Errorf("level without id")
		}
		if seen[entry.ID] {
			return nil, fmt.Errorf("duplicate level id %s", entry.ID)
		}
		seen[entry.ID] = true

		difficulty, err := types.ParseDifficulty(entry.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("level %s: %v", entry.ID, err)
		}
		pool = append(pool, level{
			Level:      game.Level{ID: entry.ID, Data: entry.Data},
			difficulty: difficulty,
		})
	}
	return pool, nil
}

func (c *Catalog) poolStrategy(gameType types.GameType, pool []level) strategy {
	return strategy{
		find: func(id string) (game.Level, error) {
			for _, l := range pool {
				if l.ID == id {
					return l.Level, nil
				}
			}
			return game.Level{}, &ErrLevelNotFound{Type: gameType, ID: id}
		},
		random: func(difficulty types.Difficulty) (game.Level, error) {
			var matching []game.Level
			for _, l := range pool {
				if l.difficulty == difficulty {
					matching = append(matching, l.Level)
				}
			}
			if len(matching) == 0 {
				return game.Level{}, &ErrEmptyPool{Type: gameType, Difficulty: difficulty}
			}
			return matching[c.rnd.Intn(len(matching))], nil
		},
	}
}

func (c *Catalog) strategy(gameType types.GameType) (strategy, error) {
	s, ok := c.strategies[gameType]
	if !ok {
		return strategy{}, fmt.Errorf("no levels for game type %s", gameType)
	}
	return s, nil
}

// Find returns the level of the given type with the given id.
func (c *Catalog) Find(gameType types.GameType, id string) (game.Level, error) {
	s, err := c.strategy(gameType)
	if err != nil {
		return game.Level{}, err
	}
	return s.find(id)
}

// Random returns a level picked uniformly among the levels of the given type and difficulty.
func (c *Catalog) Random(gameType types.GameType, difficulty types.Difficulty) (game.Level, error) {
	s, err := c.strategy(gameType)
	if err != nil {
		return game.Level{}, err
	}
	return s.random(difficulty)
}

func (c *Catalog) Tutorial() (game.Level, error) {
	if c.tutorial == nil {
		return game.Level{}, fmt.Errorf("catalog has no tutorial level")
	}
	return *c.tutorial, nil
}

// Resolve returns the level a session config refers to. Tutorial configs
// always resolve to the tutorial level.
func (c *Catalog) Resolve(config *game.Config) (game.Level, error) {
	if config.Subtype() == types.GameSubtypeTutorial {
		return c.Tutorial()
	}
	return c.Find(config.Type(), config.LevelID())
}
