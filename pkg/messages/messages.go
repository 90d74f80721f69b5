package messages

import (
	"time"

	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/cbodonnell/puzzleflow/pkg/reports"
)

const (
	// ReportsPath is the HTTP endpoint accepting report batches
	ReportsPath = "/v1/reports"
	// ReportsWebSocketPath is the websocket endpoint accepting report batches
	ReportsWebSocketPath = "/v1/reports/ws"
	// ContentTypeBatch is the content type of a serialized batch
	ContentTypeBatch = "application/x-puzzleflow-batch+zstd"
)

// Batch is a set of results submitted in one delivery attempt.
// It always carries every result that was not acknowledged yet.
type Batch struct {
	SentAt  time.Time
	Results []*game.Result
}

// ReportResponse is the reply of the report service to a batch.
type ReportResponse struct {
	Completed       bool             `json:"completed"`
	Errors          []reports.Error  `json:"errors,omitempty"`
	Inventory       *types.Inventory `json:"inventory,omitempty"`
	NewAchievements []string         `json:"newAchievements,omitempty"`
}
