// Package manager owns the session lifecycle: the active session, the saved
// sessions and the results waiting for the report service.
package manager

import (
	"context"
	"fmt"
	"strconv"

	"github.com/benbjohnson/clock"
	"github.com/cbodonnell/puzzleflow/pkg/analytics"
	"github.com/cbodonnell/puzzleflow/pkg/delivery"
	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/cbodonnell/puzzleflow/pkg/log"
	"github.com/cbodonnell/puzzleflow/pkg/messages"
	"github.com/cbodonnell/puzzleflow/pkg/profile"
	"github.com/cbodonnell/puzzleflow/pkg/reports"
	"github.com/cbodonnell/puzzleflow/pkg/repositories"
	"github.com/cbodonnell/puzzleflow/pkg/saves"
	"github.com/samber/lo"
)

const (
	countOfGamesKey   = "game_manager.countOfGames"
	gameKeyFormat     = "game_manager.game_%d"
	countOfReportsKey = "game_manager.countOfReports"
)

// LevelCatalog resolves the levels sessions are played on.
type LevelCatalog interface {
	Random(gameType types.GameType, difficulty types.Difficulty) (game.Level, error)
	// Resolve returns the level a config refers to.
	Resolve(config *game.Config) (game.Level, error)
}

// ProfileProvider exposes the player profile and accepts inventories acknowledged by the report service.
type ProfileProvider interface {
	Profile() profile.Profile
	Sync(ctx context.Context, inventory *types.Inventory)
}

// ResultSink is notified of results the report service acknowledged.
type ResultSink interface {
	AddResult(result *game.Result)
}

// Defaults are applied to sessions started by type, subtype and difficulty.
type Defaults struct {
	FreeLives   int
	FreeHints   int
	ScoreConfig game.ScoreConfig
	TimeConfigs map[types.Difficulty]game.TimeConfig
}

// SessionManager must only be used from the control loop. Delivery callbacks
// are expected to be posted there as well.
type SessionManager struct {
	defaults     Defaults
	levels       LevelCatalog
	channel      delivery.Channel
	profile      ProfileProvider
	statistics   ResultSink
	achievements ResultSink
	analytics    analytics.Emitter
	store        repositories.KeyValueStore
	clock        clock.Clock
	logger       *log.Logger

	current     *game.Session
	saved       *saves.Store
	queue       *reports.Queue
	initialized bool
}

// NewSessionManagerOptions contains options for creating a new SessionManager.
type NewSessionManagerOptions struct {
	Defaults     Defaults
	Levels       LevelCatalog
	Channel      delivery.Channel
	Profile      ProfileProvider
	Statistics   ResultSink
	Achievements ResultSink
	Analytics    analytics.Emitter
	Store        repositories.KeyValueStore
	Clock        clock.Clock
}

func NewSessionManager(opts NewSessionManagerOptions) *SessionManager {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	emitter := opts.Analytics
	if emitter == nil {
		emitter = analytics.NewLogEmitter()
	}
	return &SessionManager{
		defaults:     opts.Defaults,
		levels:       opts.Levels,
		channel:      opts.Channel,
		profile:      opts.Profile,
		statistics:   opts.Statistics,
		achievements: opts.Achievements,
		analytics:    emitter,
		store:        opts.Store,
		clock:        clk,
		logger:       log.Component("SessionManager"),
		saved:        saves.NewStore(),
		queue:        reports.NewQueue(),
	}
}

// Init restores the saved sessions and marks the manager ready.
func (m *SessionManager) Init(ctx context.Context) error {
	if err := m.Load(ctx); err != nil {
		return fmt.Errorf("failed to load saved sessions: %v", err)
	}
	m.initialized = true
	m.logger.Debug("Initialized!")
	return nil
}

func (m *SessionManager) IsInitialized() bool {
	return m.initialized
}

// Release drops the in-memory state. Delivery callbacks that arrive afterwards
// only resolve their report status.
func (m *SessionManager) Release() {
	m.current = nil
	m.saved.Clear()
	m.initialized = false
	m.logger.Debug("Released!")
}

func (m *SessionManager) IsPlaying() bool {
	return m.current != nil
}

// IsSaved reports whether a saved session occupies the slot. A daily session
// only counts on the local date it was started, and matches any type when
// gameType is Undefined.
func (m *SessionManager) IsSaved(gameType types.GameType, subtype types.GameSubtype) bool {
	if subtype != types.GameSubtypeToday {
		_, ok := m.saved.Find(game.SlotKey{Type: gameType, Subtype: subtype})
		return ok
	}

	session, ok := m.saved.FindBySubtype(subtype)
	if !ok {
		return false
	}
	config := session.Config()
	return saves.SameLocalDate(session.StartTimestamp(), m.clock.Now()) &&
		(config.Type() == gameType || gameType == types.GameTypeUndefined)
}

// GetProgress returns the progress of the session saved under the exact slot, or zero.
func (m *SessionManager) GetProgress(gameType types.GameType, subtype types.GameSubtype) float64 {
	session, ok := m.saved.Find(game.SlotKey{Type: gameType, Subtype: subtype})
	if !ok {
		return 0
	}
	return session.Progress()
}

// GetMatch returns the active session, or nil.
func (m *SessionManager) GetMatch() *game.Session {
	return m.current
}

func (m *SessionManager) GetRandomLevel(gameType types.GameType, difficulty types.Difficulty) (game.Level, bool) {
	level, err := m.levels.Random(gameType, difficulty)
	if err != nil {
		m.logger.Error("Couldn't pick a level: %v", err)
		return game.Level{}, false
	}
	return level, true
}

// SavedSessions returns the saved sessions in save order.
func (m *SessionManager) SavedSessions() []*game.Session {
	return m.saved.All()
}

// PendingReports returns the number of results waiting for acknowledgment.
func (m *SessionManager) PendingReports() int {
	return m.queue.Len()
}

// Begin starts a session with the default configuration of the difficulty.
// An empty levelID picks a random level.
func (m *SessionManager) Begin(gameType types.GameType, subtype types.GameSubtype, difficulty types.Difficulty, levelID string) {
	timeConfig, ok := m.defaults.TimeConfigs[difficulty]
	if !ok {
		m.logger.Error("Couldn't start game, because default time config for difficulty: %s doesn't exist!", difficulty)
		return
	}

	config := game.NewConfig(game.NewConfigOptions{
		Type:          gameType,
		Subtype:       subtype,
		Difficulty:    difficulty,
		LevelID:       levelID,
		ScoreConfig:   m.defaults.ScoreConfig,
		TimeConfig:    timeConfig,
		FreeLiveCount: m.defaults.FreeLives,
		FreeHintCount: m.defaults.FreeHints,
	})
	m.BeginConfig(config)
}

// BeginConfig starts a session with the given configuration. The session starts paused.
func (m *SessionManager) BeginConfig(config *game.Config) {
	if m.IsPlaying() {
		m.logger.Error("Couldn't start game, because is already started!")
		return
	}

	level, err := m.selectLevel(config)
	if err != nil {
		m.logger.Error("Couldn't start game: %v", err)
		return
	}
	config.SetLevelID(level.ID)

	m.discardExpiredDailies()
	m.discard(config.Type(), config.Subtype(), config.Subtype() != types.GameSubtypeToday)

	p := m.profile.Profile()
	config.SetNoMistakeMode(p.Settings.Gameplay.UnlimitedLives)

	m.current = game.NewSession(p.Inventory, config, level, m.clock.Now())
	m.current.SetNonSyncCost(m.calculateNonSyncedCost())
	m.current.Pause()

	m.emitGameStart(m.current)
}

// selectLevel picks a random level for configs without a level id.
func (m *SessionManager) selectLevel(config *game.Config) (game.Level, error) {
	if config.LevelID() == "" && config.Subtype() != types.GameSubtypeTutorial {
		return m.levels.Random(config.Type(), config.Difficulty())
	}
	return m.levels.Resolve(config)
}

// Continue makes a saved session active again.
func (m *SessionManager) Continue(gameType types.GameType, subtype types.GameSubtype) {
	if m.IsPlaying() {
		m.logger.Error("Couldn't resume game, because is already started!")
		return
	}

	session, ok := m.saved.Lookup(game.SlotKey{Type: gameType, Subtype: subtype})
	if !ok {
		m.logger.Error("Couldn't resume game, because it doesn't exist!")
		return
	}

	m.removeSaved(session.Key(), false)

	m.current = session
	m.current.SetNonSyncCost(m.calculateNonSyncedCost())
	m.current.Resume()

	m.emitGameStart(m.current)
}

// Discard drops the saved session of the slot. Daily sessions are dropped
// silently; anything else is reported.
func (m *SessionManager) Discard(gameType types.GameType, subtype types.GameSubtype) {
	m.discard(gameType, subtype, subtype != types.GameSubtypeToday)
}

// SendReport submits the result of the active session. The returned status is
// marked sent right away; it completes when the delivery attempt does.
func (m *SessionManager) SendReport() *reports.Status {
	if !m.IsPlaying() {
		m.logger.Error("There is no active game to send report!")
		return nil
	}

	result := game.NewResult(m.current)
	status := reports.NewStatus(result)

	if m.current.Config().Subtype() != types.GameSubtypeTutorial {
		m.submit(result, status)
	} else {
		status.Complete(reports.Outcome{Achievements: []string{}})
	}

	status.MarkSent(m.profile.Profile().Inventory)
	return status
}

// Leave pauses the active session and saves it.
func (m *SessionManager) Leave() {
	if !m.IsPlaying() {
		m.logger.Info("There is no active game to leave!")
		return
	}

	m.current.Pause()
	m.saved.Save(m.current)
	m.current = nil
}

// End clears the active session. Only a saved copy of its slot is dropped, without
// a report; the active session is reported through SendReport.
func (m *SessionManager) End() {
	if !m.IsPlaying() {
		m.logger.Info("There is no active game to end!")
		return
	}

	config := m.current.Config()
	m.discard(config.Type(), config.Subtype(), false)
	m.current = nil
}

// Suspend saves the active session and persists the saved sessions. The active
// session stays active; Resume drops its saved copy.
func (m *SessionManager) Suspend(ctx context.Context) {
	if m.IsPlaying() && !m.current.IsEnd() && m.current.Config().Subtype() != types.GameSubtypeTutorial {
		m.current.Pause()
		m.saved.Save(m.current)
	}

	if err := m.Save(ctx); err != nil {
		m.logger.Error("Failed to persist saved sessions: %v", err)
	}
}

// Resume drops the saved copy of the active session left behind by Suspend.
func (m *SessionManager) Resume() {
	if m.IsPlaying() {
		m.removeSaved(m.current.Key(), false)
	}
}

func (m *SessionManager) Update(deltaTime float64) {
	if m.IsPlaying() {
		m.current.Update(deltaTime)
	}
}

// GetNotSyncedCost returns the resources spent by saved sessions and by results
// the report service has not acknowledged.
func (m *SessionManager) GetNotSyncedCost() game.Cost {
	return m.calculateNonSyncedCost()
}

func (m *SessionManager) calculateNonSyncedCost() game.Cost {
	cost := lo.Reduce(m.saved.All(), func(total game.Cost, session *game.Session, _ int) game.Cost {
		return total.Add(session.Player().CalculateCost(session.ElapsedSeconds()))
	}, game.Cost{})

	// a queued result whose slot is still saved is already counted above
	return lo.Reduce(m.queue.Snapshot(), func(total game.Cost, result *game.Result, _ int) game.Cost {
		if m.IsSaved(result.Type, result.Subtype) {
			return total
		}
		return total.Add(result.Cost)
	}, cost)
}

func (m *SessionManager) discardExpiredDailies() {
	for _, session := range m.saved.RemoveExpiredDailies(m.clock.Now()) {
		m.logger.Debug("Discarding daily game started on %s", session.StartTimestamp().Format("2006-01-02"))
		result := game.NewResult(session)
		m.submit(result, reports.NewStatus(result))
	}
}

func (m *SessionManager) discard(gameType types.GameType, subtype types.GameSubtype, sendReport bool) {
	if !m.IsSaved(gameType, subtype) {
		return
	}
	session, ok := m.saved.Lookup(game.SlotKey{Type: gameType, Subtype: subtype})
	if !ok {
		return
	}
	m.removeSaved(session.Key(), sendReport)
}

func (m *SessionManager) removeSaved(key game.SlotKey, sendReport bool) {
	for _, session := range m.saved.Remove(key) {
		if sendReport {
			result := game.NewResult(session)
			m.submit(result, reports.NewStatus(result))
		}
	}
}

// submit queues the result and sends every queued result.
func (m *SessionManager) submit(result *game.Result, status *reports.Status) {
	batch := m.queue.Add(result)
	m.channel.Send(batch, func(response *messages.ReportResponse) {
		m.onReportDelivered(result, status, response)
	})
}

func (m *SessionManager) onReportDelivered(result *game.Result, status *reports.Status, response *messages.ReportResponse) {
	outcome := reports.Outcome{Achievements: []string{}}

	if !m.initialized {
		m.logger.Debug("Report %s delivered after release", result.ID)
		status.Complete(outcome)
		return
	}

	if response.Completed {
		m.queue.Clear()
		m.finalize(result)

		outcome.Inventory = response.Inventory.Copy()
		if response.NewAchievements != nil {
			outcome.Achievements = response.NewAchievements
		}
		m.profile.Sync(context.Background(), response.Inventory)
	} else if m.queue.Resolve(false, response.Errors) {
		m.logger.Warn("Dropping pending reports rejected by the report service: %v", response.Errors)
	} else {
		m.logger.Info("Keeping %d pending reports for retry", m.queue.Len())
	}

	if m.IsPlaying() {
		m.current.SetNonSyncCost(m.calculateNonSyncedCost())
	}

	status.Complete(outcome)
}

func (m *SessionManager) finalize(result *game.Result) {
	if m.statistics != nil {
		m.statistics.AddResult(result)
	}
	if m.achievements != nil {
		m.achievements.AddResult(result)
	}
}

func (m *SessionManager) emitGameStart(session *game.Session) {
	config := session.Config()
	if config.Subtype() == types.GameSubtypeTutorial {
		return
	}
	m.analytics.GameStart(config.Type(), config.Difficulty(), config.Subtype(), session.StartTimestamp().Unix(), config.LevelID())
}

// Save persists the saved sessions and the number of pending reports.
func (m *SessionManager) Save(ctx context.Context) error {
	sessions := m.saved.All()
	if err := m.store.Set(ctx, countOfGamesKey, strconv.Itoa(len(sessions))); err != nil {
		return fmt.Errorf("failed to save session count: %v", err)
	}
	for idx, session := range sessions {
		if err := m.store.Set(ctx, fmt.Sprintf(gameKeyFormat, idx), session.Serialize()); err != nil {
			return fmt.Errorf("failed to save session %d: %v", idx, err)
		}
	}
	if err := m.store.Set(ctx, countOfReportsKey, strconv.Itoa(m.queue.Len())); err != nil {
		return fmt.Errorf("failed to save report count: %v", err)
	}
	return nil
}

// Load restores the persisted saved sessions. Entries that can no longer be
// restored are logged and skipped.
func (m *SessionManager) Load(ctx context.Context) error {
	ok, err := m.store.Has(ctx, countOfGamesKey)
	if err != nil {
		return fmt.Errorf("failed to check session count: %v", err)
	}
	if !ok {
		return nil
	}

	value, err := m.store.Get(ctx, countOfGamesKey)
	if err != nil {
		return fmt.Errorf("failed to read session count: %v", err)
	}
	count, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("failed to parse session count: %v", err)
	}

	inventory := m.profile.Profile().Inventory
	for idx := 0; idx < count; idx++ {
		session, err := m.loadSession(ctx, idx, inventory)
		if err != nil {
			m.logger.Error("Failed to restore saved game %d: %v", idx, err)
			continue
		}
		m.saved.Save(session)
	}

	if value, err := m.store.Get(ctx, countOfReportsKey); err == nil && value != "0" {
		m.logger.Info("%s reports were pending when the state was saved", value)
	}

	return nil
}

func (m *SessionManager) loadSession(ctx context.Context, idx int, inventory types.Inventory) (*game.Session, error) {
	data, err := m.store.Get(ctx, fmt.Sprintf(gameKeyFormat, idx))
	if err != nil {
		return nil, err
	}
	config, err := game.ParseSessionConfig(data)
	if err != nil {
		return nil, err
	}
	level, err := m.levels.Resolve(config)
	if err != nil {
		return nil, err
	}
	return game.RestoreSession(inventory, data, level)
}
