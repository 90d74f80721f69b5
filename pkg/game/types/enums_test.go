package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGameTypeAnalyticsString(t *testing.T) {
	for _, gameType := range []GameType{GameTypeClassic, GameTypeBusted} {
		assert.Equal(t, gameType, GameTypeFromAnalyticsString(gameType.AnalyticsString()))
	}
	assert.Equal(t, "", GameTypeUndefined.AnalyticsString())
	assert.Equal(t, GameTypeUndefined, GameTypeFromAnalyticsString("Chess_Game"))
}

func TestGameSubtypeAnalyticsString(t *testing.T) {
	assert.Equal(t, "common_game", GameSubtypeCommon.AnalyticsString())
	assert.Equal(t, "today_training", GameSubtypeToday.AnalyticsString())
	assert.Equal(t, "", GameSubtypeTutorial.AnalyticsString())
}

func TestParse(t *testing.T) {
	gameType, err := ParseGameType("busted")
	assert.NoError(t, err)
	assert.Equal(t, GameTypeBusted, gameType)
	_, err = ParseGameType("chess")
	assert.Error(t, err)

	subtype, err := ParseGameSubtype("Today")
	assert.NoError(t, err)
	assert.Equal(t, GameSubtypeToday, subtype)
	_, err = ParseGameSubtype("weekly")
	assert.Error(t, err)

	difficulty, err := ParseDifficulty("expert")
	assert.NoError(t, err)
	assert.Equal(t, DifficultyExpert, difficulty)
	_, err = ParseDifficulty("insane")
	assert.Error(t, err)
}
