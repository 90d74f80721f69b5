package game

import (
	"time"

	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/google/uuid"
)

// Result is the finalized outcome of a session, submitted for remote acknowledgment.
// The ID lets the remote service drop results it has already recorded.
type Result struct {
	ID             string            `json:"id"`
	Type           types.GameType    `json:"type"`
	Subtype        types.GameSubtype `json:"subtype"`
	Difficulty     types.Difficulty  `json:"difficulty"`
	LevelID        string            `json:"levelId"`
	StartedAt      time.Time         `json:"startedAt"`
	ElapsedSeconds float64           `json:"elapsedSeconds"`
	Won            bool              `json:"won"`
	Score          int               `json:"score"`
	Progress       float64           `json:"progress"`
	Mistakes       int               `json:"mistakes"`
	HintsUsed      int               `json:"hintsUsed"`
	Cost           Cost              `json:"cost"`
}

func NewResult(session *Session) *Result {
	config := session.Config()
	player := session.Player()
	return &Result{
		ID:             uuid.NewString(),
		Type:           config.Type(),
		Subtype:        config.Subtype(),
		Difficulty:     config.Difficulty(),
		LevelID:        config.LevelID(),
		StartedAt:      session.StartTimestamp(),
		ElapsedSeconds: session.ElapsedSeconds(),
		Won:            session.Won(),
		Score:          session.Score(),
		Progress:       session.Progress(),
		Mistakes:       player.Mistakes(),
		HintsUsed:      player.HintsUsed(),
		Cost:           session.Cost(),
	}
}

func (r *Result) Key() SlotKey {
	return SlotKey{Type: r.Type, Subtype: r.Subtype}
}
