// Package app wires the session manager to its collaborators from a config.
package app

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/cbodonnell/puzzleflow/pkg/analytics"
	"github.com/cbodonnell/puzzleflow/pkg/config"
	"github.com/cbodonnell/puzzleflow/pkg/delivery"
	"github.com/cbodonnell/puzzleflow/pkg/levels"
	"github.com/cbodonnell/puzzleflow/pkg/log"
	"github.com/cbodonnell/puzzleflow/pkg/loop"
	"github.com/cbodonnell/puzzleflow/pkg/manager"
	"github.com/cbodonnell/puzzleflow/pkg/profile"
	"github.com/cbodonnell/puzzleflow/pkg/repositories"
	"github.com/cbodonnell/puzzleflow/pkg/stats"
)

// App owns every component of a client process. Its methods must be called
// from the goroutine that drives the loop.
type App struct {
	loop         *loop.Loop
	repository   repositories.Repository
	profile      *profile.Manager
	statistics   *stats.Statistics
	achievements *stats.Achievements
	channel      delivery.Channel
	manager      *manager.SessionManager
}

// NewAppOptions contains options for creating a new App.
type NewAppOptions struct {
	Config *config.Config
	// Clock defaults to the wall clock.
	Clock clock.Clock
	// Analytics defaults to a log-backed emitter.
	Analytics analytics.Emitter
}

func New(ctx context.Context, opts NewAppOptions) (*App, error) {
	cfg := opts.Config
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	timeConfigs, err := cfg.Gameplay.TimeConfigs()
	if err != nil {
		return nil, err
	}

	catalog, err := levels.LoadCatalog(cfg.Levels)
	if err != nil {
		return nil, fmt.Errorf("failed to load levels: %v", err)
	}

	repository, err := repositories.NewRepository(ctx, cfg.DataURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open data store: %v", err)
	}

	a := &App{
		loop: loop.New(loop.NewLoopOptions{
			Clock:         clk,
			TickInterval:  cfg.Loop.TickInterval,
			TaskQueueSize: cfg.Loop.TaskQueueSize,
		}),
		repository:   repository,
		profile:      profile.NewManager(repository),
		statistics:   stats.NewStatistics(),
		achievements: stats.NewAchievements(),
	}
	a.channel = newChannel(cfg.Report, a.loop, clk)

	if err := a.load(ctx); err != nil {
		repository.Close(ctx)
		return nil, err
	}

	a.manager = manager.NewSessionManager(manager.NewSessionManagerOptions{
		Defaults: manager.Defaults{
			FreeLives:   cfg.Gameplay.FreeLives,
			FreeHints:   cfg.Gameplay.FreeHints,
			ScoreConfig: cfg.Gameplay.Score,
			TimeConfigs: timeConfigs,
		},
		Levels:       catalog,
		Channel:      a.channel,
		Profile:      a.profile,
		Statistics:   a.statistics,
		Achievements: a.achievements,
		Analytics:    opts.Analytics,
		Store:        repository,
		Clock:        clk,
	})
	if err := a.manager.Init(ctx); err != nil {
		repository.Close(ctx)
		return nil, err
	}

	return a, nil
}

func newChannel(cfg config.ReportConfig, poster delivery.Poster, clk clock.Clock) delivery.Channel {
	if cfg.Transport == config.TransportWebSocket {
		return delivery.NewWSChannel(delivery.NewWSChannelOptions{
			ServerURL: cfg.ServerURL,
			Token:     cfg.Token,
			Poster:    poster,
			Clock:     clk,
			Timeout:   cfg.Timeout,
		})
	}
	return delivery.NewHTTPChannel(delivery.NewHTTPChannelOptions{
		ServerURL: cfg.ServerURL,
		Token:     cfg.Token,
		Poster:    poster,
		Clock:     clk,
		Timeout:   cfg.Timeout,
	})
}

func (a *App) load(ctx context.Context) error {
	if err := a.profile.Load(ctx); err != nil {
		return fmt.Errorf("failed to load profile: %v", err)
	}
	if err := a.statistics.Load(ctx, a.repository); err != nil {
		return fmt.Errorf("failed to load statistics: %v", err)
	}
	if err := a.achievements.Load(ctx, a.repository); err != nil {
		return fmt.Errorf("failed to load achievements: %v", err)
	}
	return nil
}

func (a *App) Manager() *manager.SessionManager  { return a.manager }
func (a *App) Profile() *profile.Manager         { return a.profile }
func (a *App) Statistics() *stats.Statistics     { return a.statistics }
func (a *App) Achievements() *stats.Achievements { return a.achievements }

// Run drives the control loop until ctx is done. Every tick advances the
// manager and then calls tick, and delivery callbacks run between ticks.
func (a *App) Run(ctx context.Context, tick func(deltaSeconds float64)) error {
	return a.loop.Run(ctx, func(deltaSeconds float64) {
		a.manager.Update(deltaSeconds)
		if tick != nil {
			tick(deltaSeconds)
		}
	})
}

// Wait runs delivery callbacks until no delivery attempt is in flight.
func (a *App) Wait(ctx context.Context) error {
	return a.loop.RunUntil(ctx, func() bool {
		return a.channel.Pending() == 0
	})
}

// Close waits for in-flight deliveries, suspends the manager and persists local state.
func (a *App) Close(ctx context.Context) error {
	if err := a.Wait(ctx); err != nil {
		log.Warn("Closing with %d deliveries in flight: %v", a.channel.Pending(), err)
	}

	// ctx may already be done after waiting
	saveCtx := context.WithoutCancel(ctx)
	a.manager.Suspend(saveCtx)
	a.manager.Release()

	if err := a.statistics.Save(saveCtx, a.repository); err != nil {
		log.Error("Failed to save statistics: %v", err)
	}
	if err := a.achievements.Save(saveCtx, a.repository); err != nil {
		log.Error("Failed to save achievements: %v", err)
	}

	return a.repository.Close(saveCtx)
}
