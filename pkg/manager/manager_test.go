package manager

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	mocks "github.com/cbodonnell/puzzleflow/mocks/github.com/cbodonnell/puzzleflow/pkg/analytics"
	"github.com/cbodonnell/puzzleflow/pkg/delivery"
	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/cbodonnell/puzzleflow/pkg/levels"
	"github.com/cbodonnell/puzzleflow/pkg/messages"
	"github.com/cbodonnell/puzzleflow/pkg/profile"
	"github.com/cbodonnell/puzzleflow/pkg/reports"
	"github.com/cbodonnell/puzzleflow/pkg/repositories"
	"github.com/cbodonnell/puzzleflow/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)

type sentBatch struct {
	results  []*game.Result
	callback delivery.Callback
}

// fakeChannel records every batch and lets the test decide when and how each attempt completes.
type fakeChannel struct {
	sent []sentBatch
}

func (c *fakeChannel) Send(batch []*game.Result, callback delivery.Callback) {
	c.sent = append(c.sent, sentBatch{results: batch, callback: callback})
}

func (c *fakeChannel) Pending() int                   { return 0 }
func (c *fakeChannel) Wait(ctx context.Context) error { return nil }

func (c *fakeChannel) respond(t *testing.T, idx int, response *messages.ReportResponse) {
	require.Greater(t, len(c.sent), idx)
	c.sent[idx].callback(response)
}

type harness struct {
	manager      *SessionManager
	channel      *fakeChannel
	clock        *clock.Mock
	store        *repositories.MemoryRepository
	catalog      *levels.Catalog
	profile      *profile.Manager
	statistics   *stats.Statistics
	achievements *stats.Achievements
	emitter      *mocks.Emitter
}

func testCatalog(t *testing.T) *levels.Catalog {
	catalog, err := levels.NewCatalog(levels.NewCatalogOptions{
		File: levels.File{
			Classic: []levels.Entry{
				{ID: "classic-easy-1", Difficulty: "easy", Data: "1.3.5.7.9"},
				{ID: "classic-hard-1", Difficulty: "hard", Data: "..34..78."},
			},
			Busted: []levels.Entry{
				{ID: "busted-easy-1", Difficulty: "easy", Data: "12.45.78."},
				{ID: "busted-hard-1", Difficulty: "hard", Data: "........9"},
			},
			Tutorial: &levels.Entry{ID: "tutorial", Difficulty: "easy", Data: "12.4"},
		},
		Rand: rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	return catalog
}

func testDefaults() Defaults {
	return Defaults{
		FreeLives: 3,
		FreeHints: 1,
		ScoreConfig: game.ScoreConfig{
			Base:           1000,
			HintPenalty:    50,
			MistakePenalty: 25,
			TimeBonus:      2,
		},
		TimeConfigs: map[types.Difficulty]game.TimeConfig{
			types.DifficultyEasy: {},
			types.DifficultyHard: {LimitSeconds: 600, WarningSeconds: 60},
		},
	}
}

func newHarness(t *testing.T, store *repositories.MemoryRepository) *harness {
	if store == nil {
		store = repositories.NewMemoryRepository()
	}
	clk := clock.NewMock()
	clk.Set(testNow)

	h := &harness{
		channel:      &fakeChannel{},
		clock:        clk,
		store:        store,
		catalog:      testCatalog(t),
		profile:      profile.NewManager(store),
		statistics:   stats.NewStatistics(),
		achievements: stats.NewAchievements(),
		emitter:      mocks.NewEmitter(t),
	}
	h.manager = NewSessionManager(NewSessionManagerOptions{
		Defaults:     testDefaults(),
		Levels:       h.catalog,
		Channel:      h.channel,
		Profile:      h.profile,
		Statistics:   h.statistics,
		Achievements: h.achievements,
		Analytics:    h.emitter,
		Store:        store,
		Clock:        clk,
	})
	require.NoError(t, h.manager.Init(context.Background()))
	return h
}

// allowAnalytics accepts any number of game start events.
func (h *harness) allowAnalytics() {
	h.emitter.EXPECT().GameStart(mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
}

func TestBeginLeaveContinue(t *testing.T) {
	tests := []struct {
		name       string
		gameType   types.GameType
		subtype    types.GameSubtype
		difficulty types.Difficulty
		levelID    string
	}{
		{name: "classic common", gameType: types.GameTypeClassic, subtype: types.GameSubtypeCommon, difficulty: types.DifficultyEasy, levelID: "classic-easy-1"},
		{name: "busted common random level", gameType: types.GameTypeBusted, subtype: types.GameSubtypeCommon, difficulty: types.DifficultyHard},
		{name: "classic daily", gameType: types.GameTypeClassic, subtype: types.GameSubtypeToday, difficulty: types.DifficultyHard, levelID: "classic-hard-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.allowAnalytics()

			h.manager.Begin(tt.gameType, tt.subtype, tt.difficulty, tt.levelID)
			require.True(t, h.manager.IsPlaying())
			match := h.manager.GetMatch()
			assert.True(t, match.IsPaused())
			assert.NotEmpty(t, match.Config().LevelID())
			if tt.levelID != "" {
				assert.Equal(t, tt.levelID, match.Config().LevelID())
			}
			original, err := game.ParseConfig(match.Config().Serialize())
			require.NoError(t, err)

			match.Resume()
			match.Solve(1)

			h.manager.Leave()
			assert.False(t, h.manager.IsPlaying())
			assert.True(t, h.manager.IsSaved(tt.gameType, tt.subtype))
			assert.Greater(t, h.manager.GetProgress(tt.gameType, tt.subtype), 0.0)

			h.manager.Continue(tt.gameType, tt.subtype)
			require.True(t, h.manager.IsPlaying())
			continued := h.manager.GetMatch()
			assert.True(t, original.Equal(continued.Config()))
			assert.Equal(t, game.SessionStateActive, continued.State())
			assert.False(t, h.manager.IsSaved(tt.gameType, tt.subtype))

			assert.Empty(t, h.channel.sent)
		})
	}
}

func TestBeginWhileActiveIsIgnored(t *testing.T) {
	h := newHarness(t, nil)
	h.emitter.EXPECT().GameStart(types.GameTypeClassic, types.DifficultyEasy, types.GameSubtypeCommon, testNow.Unix(), "classic-easy-1").Once()

	h.manager.Begin(types.GameTypeClassic, types.GameSubtypeCommon, types.DifficultyEasy, "classic-easy-1")
	first := h.manager.GetMatch()

	h.manager.Begin(types.GameTypeBusted, types.GameSubtypeCommon, types.DifficultyHard, "")
	assert.Same(t, first, h.manager.GetMatch())
}

func TestBeginPreconditions(t *testing.T) {
	tests := []struct {
		name       string
		gameType   types.GameType
		difficulty types.Difficulty
		levelID    string
	}{
		{name: "no time config", gameType: types.GameTypeClassic, difficulty: types.DifficultyExpert},
		{name: "unknown level", gameType: types.GameTypeClassic, difficulty: types.DifficultyEasy, levelID: "missing"},
		{name: "no game type", gameType: types.GameTypeUndefined, difficulty: types.DifficultyEasy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)

			h.manager.Begin(tt.gameType, types.GameSubtypeCommon, tt.difficulty, tt.levelID)
			assert.False(t, h.manager.IsPlaying())
		})
	}
}

func TestBeginReplacesSavedSession(t *testing.T) {
	t.Run("common is reported", func(t *testing.T) {
		h := newHarness(t, nil)
		h.allowAnalytics()

		h.manager.Begin(types.GameTypeClassic, types.GameSubtypeCommon, types.DifficultyEasy, "")
		h.manager.Leave()
		h.manager.Begin(types.GameTypeClassic, types.GameSubtypeCommon, types.DifficultyEasy, "")

		require.Len(t, h.channel.sent, 1)
		require.Len(t, h.channel.sent[0].results, 1)
		assert.Equal(t, types.GameSubtypeCommon, h.channel.sent[0].results[0].Subtype)
		assert.Empty(t, h.manager.SavedSessions())
		assert.Equal(t, 1, h.manager.PendingReports())
	})

	t.Run("daily is discarded silently", func(t *testing.T) {
		h := newHarness(t, nil)
		h.allowAnalytics()

		h.manager.Begin(types.GameTypeBusted, types.GameSubtypeToday, types.DifficultyEasy, "")
		h.manager.Leave()
		h.manager.Begin(types.GameTypeBusted, types.GameSubtypeToday, types.DifficultyEasy, "")

		assert.Empty(t, h.channel.sent)
		assert.Empty(t, h.manager.SavedSessions())
	})
}

func TestExpiredDailyIsReportedOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.allowAnalytics()

	h.manager.Begin(types.GameTypeBusted, types.GameSubtypeToday, types.DifficultyEasy, "")
	h.manager.Leave()
	require.True(t, h.manager.IsSaved(types.GameTypeBusted, types.GameSubtypeToday))
	require.True(t, h.manager.IsSaved(types.GameTypeUndefined, types.GameSubtypeToday))

	h.clock.Add(24 * time.Hour)
	assert.False(t, h.manager.IsSaved(types.GameTypeBusted, types.GameSubtypeToday))

	h.manager.Begin(types.GameTypeClassic, types.GameSubtypeCommon, types.DifficultyEasy, "")
	require.Len(t, h.channel.sent, 1)
	require.Len(t, h.channel.sent[0].results, 1)
	assert.Equal(t, types.GameSubtypeToday, h.channel.sent[0].results[0].Subtype)
	assert.Empty(t, h.manager.SavedSessions())

	h.manager.End()
	h.manager.Begin(types.GameTypeBusted, types.GameSubtypeCommon, types.DifficultyEasy, "")
	assert.Len(t, h.channel.sent, 1)
}

func TestContinueDailyWithAnyType(t *testing.T) {
	h := newHarness(t, nil)
	h.allowAnalytics()

	h.manager.Begin(types.GameTypeBusted, types.GameSubtypeToday, types.DifficultyEasy, "")
	h.manager.Leave()

	h.manager.Continue(types.GameTypeUndefined, types.GameSubtypeToday)
	require.True(t, h.manager.IsPlaying())
	assert.Equal(t, types.GameTypeBusted, h.manager.GetMatch().Config().Type())
	assert.Empty(t, h.manager.SavedSessions())
}

func TestContinueWithoutSavedSession(t *testing.T) {
	h := newHarness(t, nil)

	h.manager.Continue(types.GameTypeClassic, types.GameSubtypeCommon)
	assert.False(t, h.manager.IsPlaying())
}

func TestDiscard(t *testing.T) {
	h := newHarness(t, nil)
	h.allowAnalytics()

	h.manager.Begin(types.GameTypeClassic, types.GameSubtypeCommon, types.DifficultyEasy, "")
	h.manager.Leave()
	h.manager.Begin(types.GameTypeBusted, types.GameSubtypeToday, types.DifficultyEasy, "")
	h.manager.Leave()
	require.Len(t, h.manager.SavedSessions(), 2)

	h.manager.Discard(types.GameTypeBusted, types.GameSubtypeToday)
	assert.Empty(t, h.channel.sent)
	assert.False(t, h.manager.IsSaved(types.GameTypeBusted, types.GameSubtypeToday))

	h.manager.Discard(types.GameTypeClassic, types.GameSubtypeCommon)
	require.Len(t, h.channel.sent, 1)
	assert.Equal(t, types.GameTypeClassic, h.channel.sent[0].results[0].Type)
	assert.Empty(t, h.manager.SavedSessions())

	// nothing left to discard
	h.manager.Discard(types.GameTypeClassic, types.GameSubtypeCommon)
	assert.Len(t, h.channel.sent, 1)
}

func TestSendReportSuccess(t *testing.T) {
	h := newHarness(t, nil)
	h.allowAnalytics()
	ctx := context.Background()
	require.NoError(t, h.profile.SetInventory(ctx, types.Inventory{ExtraHintCount: 2}))

	h.manager.Begin(types.GameTypeClassic, types.GameSubtypeCommon, types.DifficultyEasy, "classic-easy-1")
	match := h.manager.GetMatch()
	match.Resume()
	match.Solve(4)
	require.True(t, match.IsEnd())

	status := h.manager.SendReport()
	require.NotNil(t, status)

	sent, ok := status.Sent()
	require.True(t, ok)
	assert.Equal(t, &types.Inventory{ExtraHintCount: 2}, sent.Inventory)
	assert.Empty(t, sent.Achievements)
	_, done := status.Outcome()
	assert.False(t, done)

	require.Len(t, h.channel.sent, 1)
	h.channel.respond(t, 0, &messages.ReportResponse{
		Completed:       true,
		Inventory:       &types.Inventory{ExtraHintCount: 5},
		NewAchievements: []string{"first_win"},
	})

	select {
	case <-status.Done():
	default:
		t.Fatal("status should be done")
	}
	outcome, done := status.Outcome()
	require.True(t, done)
	assert.Equal(t, []string{"first_win"}, outcome.Achievements)
	assert.Equal(t, &types.Inventory{ExtraHintCount: 5}, outcome.Inventory)

	assert.Equal(t, 0, h.manager.PendingReports())
	assert.Equal(t, types.Inventory{ExtraHintCount: 5}, h.profile.Profile().Inventory)
	require.Len(t, h.statistics.Entries(), 1)
	assert.Equal(t, 1, h.statistics.Entries()[0].Won)
	assert.Equal(t, 1, h.achievements.Progress(stats.ProgressWins))
}

func TestSendReportWithoutSession(t *testing.T) {
	h := newHarness(t, nil)

	assert.Nil(t, h.manager.SendReport())
	assert.Empty(t, h.channel.sent)
}

func TestSendReportTutorial(t *testing.T) {
	// no analytics expectations: tutorials emit nothing
	h := newHarness(t, nil)

	h.manager.Begin(types.GameTypeClassic, types.GameSubtypeTutorial, types.DifficultyEasy, "")
	require.True(t, h.manager.IsPlaying())
	assert.Equal(t, "tutorial", h.manager.GetMatch().Config().LevelID())

	status := h.manager.SendReport()
	require.NotNil(t, status)
	assert.Empty(t, h.channel.sent)

	_, ok := status.Sent()
	assert.True(t, ok)
	outcome, done := status.Outcome()
	assert.True(t, done)
	assert.Nil(t, outcome.Inventory)
}

func TestDeliveryFailureKeepsRetryableBatch(t *testing.T) {
	h := newHarness(t, nil)
	h.allowAnalytics()

	h.manager.Begin(types.GameTypeClassic, types.GameSubtypeCommon, types.DifficultyEasy, "")
	first := h.manager.SendReport()
	h.manager.End()

	h.channel.respond(t, 0, &messages.ReportResponse{
		Errors: []reports.Error{reports.NoInternet(assert.AnError)},
	})
	outcome, done := first.Outcome()
	require.True(t, done)
	assert.Nil(t, outcome.Inventory)
	assert.NotNil(t, outcome.Achievements)
	assert.Equal(t, 1, h.manager.PendingReports())

	h.manager.Begin(types.GameTypeBusted, types.GameSubtypeCommon, types.DifficultyEasy, "")
	h.manager.SendReport()
	h.manager.End()

	require.Len(t, h.channel.sent, 2)
	require.Len(t, h.channel.sent[1].results, 2)
	assert.Equal(t, types.GameTypeClassic, h.channel.sent[1].results[0].Type)
	assert.Equal(t, types.GameTypeBusted, h.channel.sent[1].results[1].Type)

	h.channel.respond(t, 1, &messages.ReportResponse{
		Errors: []reports.Error{{Code: reports.CodeBadRequest, Message: "bad batch"}},
	})
	assert.Equal(t, 0, h.manager.PendingReports())
	assert.Empty(t, h.statistics.Entries())
}

func TestNotSyncedCostCountsSavedSlotOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.allowAnalytics()
	require.NoError(t, h.profile.SetInventory(context.Background(), types.Inventory{ExtraLiveCount: 2}))

	h.manager.Begin(types.GameTypeClassic, types.GameSubtypeCommon, types.DifficultyEasy, "")
	match := h.manager.GetMatch()
	match.Resume()
	for i := 0; i < 4; i++ {
		match.Mistake()
	}
	require.False(t, match.IsEnd())

	h.manager.SendReport()
	h.manager.Leave()

	require.Equal(t, 1, h.manager.PendingReports())
	require.True(t, h.manager.IsSaved(types.GameTypeClassic, types.GameSubtypeCommon))
	assert.Equal(t, game.Cost{Lives: 1}, h.manager.GetNotSyncedCost())

	h.manager.Begin(types.GameTypeBusted, types.GameSubtypeCommon, types.DifficultyEasy, "")
	assert.Equal(t, game.Cost{Lives: 1}, h.manager.GetMatch().NonSyncCost())

	h.channel.respond(t, 0, &messages.ReportResponse{Completed: true})
	assert.Equal(t, 0, h.manager.PendingReports())
	assert.Equal(t, game.Cost{Lives: 1}, h.manager.GetNotSyncedCost())
}

func TestCallbackAfterEnd(t *testing.T) {
	h := newHarness(t, nil)
	h.allowAnalytics()

	h.manager.Begin(types.GameTypeClassic, types.GameSubtypeCommon, types.DifficultyEasy, "")
	status := h.manager.SendReport()
	h.manager.End()
	require.False(t, h.manager.IsPlaying())

	h.channel.respond(t, 0, &messages.ReportResponse{Completed: true, Inventory: &types.Inventory{NoAds: true}})

	_, done := status.Outcome()
	assert.True(t, done)
	assert.True(t, h.profile.Profile().Inventory.NoAds)
}

func TestCallbackAfterRelease(t *testing.T) {
	h := newHarness(t, nil)
	h.allowAnalytics()

	h.manager.Begin(types.GameTypeClassic, types.GameSubtypeCommon, types.DifficultyEasy, "")
	status := h.manager.SendReport()
	h.manager.Release()
	assert.False(t, h.manager.IsInitialized())
	assert.False(t, h.manager.IsPlaying())

	h.channel.respond(t, 0, &messages.ReportResponse{Completed: true, Inventory: &types.Inventory{NoAds: true}})

	_, done := status.Outcome()
	assert.True(t, done)
	assert.Empty(t, h.statistics.Entries())
	assert.False(t, h.profile.Profile().Inventory.NoAds)
}

func TestUpdate(t *testing.T) {
	h := newHarness(t, nil)
	h.allowAnalytics()

	h.manager.Update(1)

	h.manager.Begin(types.GameTypeClassic, types.GameSubtypeCommon, types.DifficultyHard, "")
	h.manager.Update(5)
	assert.Zero(t, h.manager.GetMatch().ElapsedSeconds())

	h.manager.GetMatch().Resume()
	h.manager.Update(5)
	h.manager.Update(2.5)
	assert.Equal(t, 7.5, h.manager.GetMatch().ElapsedSeconds())

	h.manager.Update(600)
	assert.True(t, h.manager.GetMatch().IsEnd())
	assert.False(t, h.manager.GetMatch().Won())
}

func TestSuspendResume(t *testing.T) {
	h := newHarness(t, nil)
	h.allowAnalytics()
	ctx := context.Background()

	h.manager.Begin(types.GameTypeClassic, types.GameSubtypeCommon, types.DifficultyHard, "classic-hard-1")
	match := h.manager.GetMatch()
	match.Resume()
	h.manager.Update(12.5)
	match.Mistake()

	h.manager.Suspend(ctx)
	assert.True(t, h.manager.IsPlaying())
	assert.True(t, match.IsPaused())
	assert.True(t, h.manager.IsSaved(types.GameTypeClassic, types.GameSubtypeCommon))

	count, err := h.store.Get(ctx, countOfGamesKey)
	require.NoError(t, err)
	assert.Equal(t, "1", count)
	reportCount, err := h.store.Get(ctx, countOfReportsKey)
	require.NoError(t, err)
	assert.Equal(t, "0", reportCount)

	h.manager.Resume()
	assert.Empty(t, h.manager.SavedSessions())
	assert.True(t, h.manager.IsPlaying())

	// a fresh manager restores what was persisted
	restored := newHarness(t, h.store)
	sessions := restored.manager.SavedSessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, 12.5, sessions[0].ElapsedSeconds())
	assert.Equal(t, 1, sessions[0].Player().Mistakes())
	assert.True(t, sessions[0].IsPaused())
	assert.True(t, sessions[0].StartTimestamp().Equal(testNow))
	assert.Equal(t, "classic-hard-1", sessions[0].Level().ID)
}

func TestSuspendSkipsTutorialAndEndedSessions(t *testing.T) {
	tests := []struct {
		name    string
		subtype types.GameSubtype
		end     bool
	}{
		{name: "tutorial", subtype: types.GameSubtypeTutorial},
		{name: "ended", subtype: types.GameSubtypeCommon, end: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.allowAnalytics()

			h.manager.Begin(types.GameTypeClassic, tt.subtype, types.DifficultyEasy, "")
			if tt.end {
				h.manager.GetMatch().Finish(false)
			}
			h.manager.Suspend(context.Background())

			assert.Empty(t, h.manager.SavedSessions())
			count, err := h.store.Get(context.Background(), countOfGamesKey)
			require.NoError(t, err)
			assert.Equal(t, "0", count)
		})
	}
}

func TestLoadSkipsBrokenEntries(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryRepository()

	config := game.NewConfig(game.NewConfigOptions{
		Type:          types.GameTypeBusted,
		Subtype:       types.GameSubtypeCommon,
		Difficulty:    types.DifficultyEasy,
		LevelID:       "busted-easy-1",
		FreeLiveCount: 3,
	})
	valid := game.NewSession(types.Inventory{}, config, game.Level{ID: "busted-easy-1", Data: "12.45.78."}, testNow)
	unknown := game.NewSession(types.Inventory{}, game.NewConfig(game.NewConfigOptions{
		Type:       types.GameTypeClassic,
		Subtype:    types.GameSubtypeCommon,
		Difficulty: types.DifficultyEasy,
		LevelID:    "removed-level",
	}), game.Level{ID: "removed-level"}, testNow)

	require.NoError(t, store.Set(ctx, countOfGamesKey, "3"))
	require.NoError(t, store.Set(ctx, "game_manager.game_0", "not a record"))
	require.NoError(t, store.Set(ctx, "game_manager.game_1", unknown.Serialize()))
	require.NoError(t, store.Set(ctx, "game_manager.game_2", valid.Serialize()))

	h := newHarness(t, store)

	sessions := h.manager.SavedSessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "busted-easy-1", sessions[0].Config().LevelID())
	assert.True(t, h.manager.IsInitialized())
}

func TestLoadRejectsBadCount(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryRepository()
	require.NoError(t, store.Set(ctx, countOfGamesKey, "many"))

	m := NewSessionManager(NewSessionManagerOptions{
		Levels: testCatalog(t),
		Store:  store,
		Clock:  clock.NewMock(),
	})
	assert.Error(t, m.Init(ctx))
	assert.False(t, m.IsInitialized())
}

func TestGetRandomLevel(t *testing.T) {
	h := newHarness(t, nil)

	level, ok := h.manager.GetRandomLevel(types.GameTypeBusted, types.DifficultyHard)
	assert.True(t, ok)
	assert.Equal(t, "busted-hard-1", level.ID)

	_, ok = h.manager.GetRandomLevel(types.GameTypeBusted, types.DifficultyExpert)
	assert.False(t, ok)
}
