package game

import (
	"math"

	"github.com/cbodonnell/puzzleflow/pkg/game/types"
)

// Player tracks the resources a session consumes against the free allowance of its
// config and the inventory snapshot it was started with.
type Player struct {
	inventory     types.Inventory
	freeHints     int
	freeLives     int
	timeLimit     int
	noMistakeMode bool
	hintsUsed     int
	mistakes      int
	nonSyncCost   Cost
}

func newPlayer(inventory types.Inventory, config *Config) *Player {
	return &Player{
		inventory:     inventory,
		freeHints:     config.FreeHintCount(),
		freeLives:     config.FreeLiveCount(),
		timeLimit:     config.TimeConfig().LimitSeconds,
		noMistakeMode: config.IsNoMistakeMode(),
	}
}

func (p *Player) HintsUsed() int { return p.hintsUsed }
func (p *Player) Mistakes() int  { return p.mistakes }

// CalculateCost returns the resources beyond the free allowance that were spent
// for the given elapsed time.
func (p *Player) CalculateCost(elapsedSeconds float64) Cost {
	cost := Cost{
		Hints: max(0, p.hintsUsed-p.freeHints),
	}
	if !p.noMistakeMode {
		cost.Lives = max(0, p.mistakes-p.freeLives)
	}
	if p.timeLimit > 0 && !p.inventory.UnlimitedTime {
		cost.TimeSeconds = max(0, int(math.Ceil(elapsedSeconds))-p.timeLimit)
	}
	return cost
}

// availableExtra is what the inventory still offers once resources spent by
// sessions the server has not acknowledged are taken out.
func availableExtra(owned, notSynced int) int {
	return max(0, owned-notSynced)
}

func (p *Player) canHint() bool {
	return p.hintsUsed < p.freeHints+availableExtra(p.inventory.ExtraHintCount, p.nonSyncCost.Hints)
}

func (p *Player) livesLeft() bool {
	if p.noMistakeMode {
		return true
	}
	return p.mistakes < p.freeLives+availableExtra(p.inventory.ExtraLiveCount, p.nonSyncCost.Lives)
}

func (p *Player) timeLeft(elapsedSeconds float64) bool {
	if p.timeLimit <= 0 || p.inventory.UnlimitedTime {
		return true
	}
	budget := p.timeLimit + availableExtra(p.inventory.ExtraTimeSeconds, p.nonSyncCost.TimeSeconds)
	return elapsedSeconds < float64(budget)
}

func (p *Player) remainingSeconds(elapsedSeconds float64) int {
	if p.timeLimit <= 0 {
		return 0
	}
	return max(0, p.timeLimit-int(math.Ceil(elapsedSeconds)))
}
