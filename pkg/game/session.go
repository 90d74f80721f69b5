package game

import (
	"fmt"
	"time"

	"github.com/cbodonnell/puzzleflow/pkg/game/types"
)

type SessionState uint8

const (
	SessionStateActive SessionState = iota
	SessionStatePaused
	SessionStateEnded
)

func (s SessionState) String() string {
	switch s {
	case SessionStateActive:
		return "Active"
	case SessionStatePaused:
		return "Paused"
	case SessionStateEnded:
		return "Ended"
	}
	return "Unknown"
}

// Session is a single play-through of a level.
// It is not safe for concurrent use; the session manager owns it on the control loop.
type Session struct {
	config         *Config
	player         *Player
	level          Level
	startTimestamp time.Time
	elapsed        float64
	state          SessionState
	solved         int
	won            bool
}

// NewSession starts a session on the given level. The session starts Active and the
// config can no longer change its level reference.
func NewSession(inventory types.Inventory, config *Config, level Level, startTimestamp time.Time) *Session {
	config.freeze()
	return &Session{
		config:         config,
		player:         newPlayer(inventory, config),
		level:          level,
		startTimestamp: startTimestamp,
		state:          SessionStateActive,
	}
}

// RestoreSession rebuilds a session from Serialize output and a re-resolved level.
func RestoreSession(inventory types.Inventory, data string, level Level) (*Session, error) {
	r, err := ParseRecord(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session: %v", err)
	}

	configRecord, err := r.GetRecord("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %v", err)
	}
	config, err := ConfigFromRecord(configRecord)
	if err != nil {
		return nil, err
	}
	if config.LevelID() != level.ID {
		return nil, fmt.Errorf("level %s does not match saved level %s", level.ID, config.LevelID())
	}

	startedAt, err := r.GetInt64("startTimestamp")
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %v", err)
	}
	elapsed, err := r.GetFloat("elapsed")
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %v", err)
	}
	state, err := r.GetInt("state")
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %v", err)
	}
	solved, err := r.GetInt("solved")
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %v", err)
	}
	hintsUsed, err := r.GetInt("hintsUsed")
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %v", err)
	}
	mistakes, err := r.GetInt("mistakes")
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %v", err)
	}
	won, err := r.GetBool("won")
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %v", err)
	}

	session := NewSession(inventory, config, level, time.UnixMilli(startedAt).Local())
	session.elapsed = elapsed
	session.state = SessionState(state)
	session.solved = solved
	session.won = won
	session.player.hintsUsed = hintsUsed
	session.player.mistakes = mistakes

	return session, nil
}

func (s *Session) Config() *Config           { return s.config }
func (s *Session) Player() *Player           { return s.player }
func (s *Session) Level() Level              { return s.level }
func (s *Session) State() SessionState       { return s.state }
func (s *Session) StartTimestamp() time.Time { return s.startTimestamp }
func (s *Session) ElapsedSeconds() float64   { return s.elapsed }
func (s *Session) Won() bool                 { return s.won }
func (s *Session) IsEnd() bool               { return s.state == SessionStateEnded }
func (s *Session) IsPaused() bool            { return s.state == SessionStatePaused }
func (s *Session) Key() SlotKey              { return s.config.Key() }
func (s *Session) NonSyncCost() Cost         { return s.player.nonSyncCost }
func (s *Session) SetNonSyncCost(cost Cost)  { s.player.nonSyncCost = cost }
func (s *Session) Cost() Cost                { return s.player.CalculateCost(s.elapsed) }

// Progress returns the solved share of the level's empty cells in [0, 1].
func (s *Session) Progress() float64 {
	total := s.level.EmptyCells()
	if total <= 0 {
		return 0
	}
	return float64(s.solved) / float64(total)
}

func (s *Session) Pause() {
	if s.state == SessionStateActive {
		s.state = SessionStatePaused
	}
}

func (s *Session) Resume() {
	if s.state == SessionStatePaused {
		s.state = SessionStateActive
	}
}

// Update advances the clock of an active session and ends it when the time budget runs out.
func (s *Session) Update(deltaTime float64) {
	if s.state != SessionStateActive {
		return
	}
	s.elapsed += deltaTime
	if !s.player.timeLeft(s.elapsed) {
		s.Finish(false)
	}
}

// Hint consumes a hint and solves one cell. It reports false when no hint is available.
func (s *Session) Hint() bool {
	if s.state != SessionStateActive || !s.player.canHint() {
		return false
	}
	s.player.hintsUsed++
	s.Solve(1)
	return true
}

// Mistake records a wrong entry. The session is lost once every life is spent.
func (s *Session) Mistake() {
	if s.state != SessionStateActive {
		return
	}
	s.player.mistakes++
	if !s.player.livesLeft() {
		s.Finish(false)
	}
}

// Solve marks cells as correctly filled. Filling the last cell wins the session.
func (s *Session) Solve(cells int) {
	if s.state != SessionStateActive || cells <= 0 {
		return
	}
	total := s.level.EmptyCells()
	s.solved = min(total, s.solved+cells)
	if s.solved >= total {
		s.Finish(true)
	}
}

func (s *Session) Finish(won bool) {
	if s.state == SessionStateEnded {
		return
	}
	s.won = won
	s.state = SessionStateEnded
}

// Score applies the score config to the current state of the session.
func (s *Session) Score() int {
	scoreConfig := s.config.ScoreConfig()
	score := int(float64(scoreConfig.Base) * s.Progress())
	score -= scoreConfig.HintPenalty * s.player.hintsUsed
	score -= scoreConfig.MistakePenalty * s.player.mistakes
	if s.won {
		score += scoreConfig.TimeBonus * s.player.remainingSeconds(s.elapsed)
	}
	return max(0, score)
}

func (s *Session) Serialize() string {
	r := NewRecord()
	r.AddField("config", s.config.Record())
	r.AddField("startTimestamp", s.startTimestamp.UnixMilli())
	r.AddField("elapsed", s.elapsed)
	r.AddField("state", int(s.state))
	r.AddField("solved", s.solved)
	r.AddField("hintsUsed", s.player.hintsUsed)
	r.AddField("mistakes", s.player.mistakes)
	r.AddField("won", s.won)
	return r.String()
}

// ParseSessionConfig extracts the config embedded in Serialize output so the
// caller can resolve the level before restoring the session.
func ParseSessionConfig(data string) (*Config, error) {
	r, err := ParseRecord(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session: %v", err)
	}
	configRecord, err := r.GetRecord("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %v", err)
	}
	return ConfigFromRecord(configRecord)
}
