package game

import "strings"

// Level is a resolved puzzle from the level catalog.
// Data holds the board in row-major order with '0' or '.' marking empty cells.
type Level struct {
	ID   string
	Data string
}

// EmptyCells returns the number of cells the player has to fill.
func (l Level) EmptyCells() int {
	return strings.Count(l.Data, "0") + strings.Count(l.Data, ".")
}
