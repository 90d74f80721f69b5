// Package analytics emits gameplay events.
package analytics

import (
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/cbodonnell/puzzleflow/pkg/log"
)

// Emitter receives gameplay events.
type Emitter interface {
	GameStart(gameType types.GameType, difficulty types.Difficulty, subtype types.GameSubtype, startUnix int64, levelID string)
}

// LogEmitter writes events to the log.
type LogEmitter struct {
	logger *log.Logger
}

func NewLogEmitter() *LogEmitter {
	return &LogEmitter{
		logger: log.Component("Analytics"),
	}
}

func (e *LogEmitter) GameStart(gameType types.GameType, difficulty types.Difficulty, subtype types.GameSubtype, startUnix int64, levelID string) {
	e.logger.Info("game_start type=%s difficulty=%s subtype=%s start=%d level=%s",
		gameType.AnalyticsString(), difficulty, subtype.AnalyticsString(), startUnix, levelID)
}
