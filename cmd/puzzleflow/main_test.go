package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/stretchr/testify/assert"
)

func TestSimulatorStep(t *testing.T) {
	playMoves, playMistakeRate, playHintRate = 10, 0, 0

	config := game.NewConfig(game.NewConfigOptions{
		Type:          types.GameTypeClassic,
		Subtype:       types.GameSubtypeCommon,
		Difficulty:    types.DifficultyEasy,
		LevelID:       "classic-easy-1",
		FreeLiveCount: 3,
	})
	session := game.NewSession(types.Inventory{}, config, game.Level{ID: "classic-easy-1", Data: "1.3.5"}, time.Unix(0, 0))
	sim := &simulator{session: session, rnd: rand.New(rand.NewSource(1))}

	assert.True(t, sim.step())
	assert.False(t, sim.step(), "solving the last cell stops the simulation")
	assert.True(t, session.Won())
	assert.Equal(t, 2, sim.moves)
	assert.False(t, sim.step())
	assert.Equal(t, 2, sim.moves)
}
