package handlers

import (
	"context"
	"fmt"

	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/cbodonnell/puzzleflow/pkg/messages"
	"github.com/cbodonnell/puzzleflow/pkg/repositories"
	"github.com/samber/lo"
)

const (
	AchievementFirstWin    = "first_win"
	AchievementTenWins     = "ten_wins"
	AchievementNoMistakes  = "no_mistakes"
	AchievementDailyPlayer = "daily_player"
)

type achievementRule struct {
	id       string
	unlocked func(result *game.Result, wins int) bool
}

var achievementRules = []achievementRule{
	{id: AchievementFirstWin, unlocked: func(_ *game.Result, wins int) bool { return wins >= 1 }},
	{id: AchievementTenWins, unlocked: func(_ *game.Result, wins int) bool { return wins >= 10 }},
	{id: AchievementNoMistakes, unlocked: func(r *game.Result, _ int) bool { return r.Won && r.Mistakes == 0 }},
	{id: AchievementDailyPlayer, unlocked: func(r *game.Result, _ int) bool {
		return r.Won && r.Subtype == types.GameSubtypeToday
	}},
}

// ReportProcessor applies report batches to the per-user records.
type ReportProcessor struct {
	repository        repositories.ReportRepository
	startingInventory types.Inventory
}

// NewReportProcessorOptions contains options for creating a new ReportProcessor.
type NewReportProcessorOptions struct {
	Repository repositories.ReportRepository
	// StartingInventory is granted to users the service has not seen before.
	StartingInventory types.Inventory
}

func NewReportProcessor(opts NewReportProcessorOptions) *ReportProcessor {
	return &ReportProcessor{
		repository:        opts.Repository,
		startingInventory: opts.StartingInventory,
	}
}

// Process records the batch for the user. Results that were recorded before are
// ignored, so replaying a batch does not spend resources twice.
func (p *ReportProcessor) Process(ctx context.Context, userID string, batch *messages.Batch) (*messages.ReportResponse, error) {
	added, err := p.repository.RecordResults(ctx, userID, batch.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to record results: %v", err)
	}

	inventory, err := p.repository.GetInventory(ctx, userID)
	if err != nil {
		if !repositories.IsNotFound(err) {
			return nil, fmt.Errorf("failed to get inventory: %v", err)
		}
		inventory = p.startingInventory.Copy()
	}

	newAchievements := []string{}
	if len(added) > 0 {
		for _, result := range added {
			spend(inventory, result.Cost)
		}
		if err := p.repository.SaveInventory(ctx, userID, inventory); err != nil {
			return nil, fmt.Errorf("failed to save inventory: %v", err)
		}

		wins, err := p.repository.CountWins(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count wins: %v", err)
		}
		candidates := lo.Uniq(lo.FlatMap(added, func(result *game.Result, _ int) []string {
			return earned(result, wins)
		}))
		if len(candidates) > 0 {
			unlocked, err := p.repository.UnlockAchievements(ctx, userID, candidates)
			if err != nil {
				return nil, fmt.Errorf("failed to unlock achievements: %v", err)
			}
			newAchievements = append(newAchievements, unlocked...)
		}
	}

	return &messages.ReportResponse{
		Completed:       true,
		Inventory:       inventory,
		NewAchievements: newAchievements,
	}, nil
}

func earned(result *game.Result, wins int) []string {
	rules := lo.Filter(achievementRules, func(rule achievementRule, _ int) bool {
		return rule.unlocked(result, wins)
	})
	return lo.Map(rules, func(rule achievementRule, _ int) string {
		return rule.id
	})
}

// spend takes the cost out of the inventory without going negative.
func spend(inventory *types.Inventory, cost game.Cost) {
	inventory.ExtraHintCount = max(0, inventory.ExtraHintCount-cost.Hints)
	inventory.ExtraLiveCount = max(0, inventory.ExtraLiveCount-cost.Lives)
	inventory.ExtraTimeSeconds = max(0, inventory.ExtraTimeSeconds-cost.TimeSeconds)
}
