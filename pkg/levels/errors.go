package levels

import (
	"fmt"

	"github.com/cbodonnell/puzzleflow/pkg/game/types"
)

type ErrLevelNotFound struct {
	Type types.GameType
	ID   string
}

func (e *ErrLevelNotFound) Error() string {
	return fmt.Sprintf("level %s not found for game type %s", e.ID, e.Type)
}

func IsLevelNotFound(err error) bool {
	_, ok := err.(*ErrLevelNotFound)
	return ok
}

type ErrEmptyPool struct {
	Type       types.GameType
	Difficulty types.Difficulty
}

func (e *ErrEmptyPool) Error() string {
	return fmt.Sprintf("no %s levels with difficulty %s", e.Type, e.Difficulty)
}

func IsEmptyPool(err error) bool {
	_, ok := err.(*ErrEmptyPool)
	return ok
}
