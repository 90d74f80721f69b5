// Command puzzleflow drives the session lifecycle from the command line. Every
// invocation restores the saved sessions, performs one operation, waits for
// in-flight reports and suspends before exiting.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/cbodonnell/puzzleflow/pkg/app"
	"github.com/cbodonnell/puzzleflow/pkg/config"
	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/cbodonnell/puzzleflow/pkg/log"
	"github.com/cbodonnell/puzzleflow/pkg/reports"
	"github.com/cbodonnell/puzzleflow/pkg/version"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	slotType    string
	slotSubtype string
	difficulty  string
	levelID     string

	playMoves       int
	playTick        time.Duration
	playMistakeRate float64
	playHintRate    float64
	playSeed        int64
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "puzzleflow",
		Short:         "Puzzle session lifecycle client",
		Version:       version.Get(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./puzzleflow.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level, overrides the config")

	rootCmd.AddCommand(newBeginCmd())
	rootCmd.AddCommand(newSlotCmd("continue", "Continue a saved session", continueSession))
	rootCmd.AddCommand(newSlotCmd("leave", "Continue a saved session and leave it again", leaveSession))
	rootCmd.AddCommand(newSlotCmd("end", "Drop a saved session without reporting it", endSession))
	rootCmd.AddCommand(newSlotCmd("discard", "Discard a saved session, reporting it unless it is a daily", discardSession))
	rootCmd.AddCommand(newSlotCmd("report", "Report a saved session and end it", reportSession))
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newPlayCmd())

	return rootCmd
}

func addSlotFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&slotType, "type", "classic", "game type: classic or busted")
	cmd.Flags().StringVar(&slotSubtype, "subtype", "common", "game subtype: common, today or tutorial")
}

func parseSlot() (types.GameType, types.GameSubtype, error) {
	gameType, err := types.ParseGameType(slotType)
	if err != nil {
		return gameType, 0, err
	}
	subtype, err := types.ParseGameSubtype(slotSubtype)
	if err != nil {
		return gameType, subtype, err
	}
	return gameType, subtype, nil
}

// withApp runs fn against a freshly loaded App and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if playTick > 0 {
		cfg.Loop.TickInterval = playTick
	}
	parsedLogLevel, err := log.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	log.SetDefaultLogger(log.New(os.Stderr, "", log.DefaultLoggerFlag, parsedLogLevel))

	ctx := cmd.Context()
	a, err := app.New(ctx, app.NewAppOptions{Config: cfg})
	if err != nil {
		return err
	}

	runErr := fn(ctx, a)

	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Report.Timeout+time.Second)
	defer cancel()
	if err := a.Close(closeCtx); err != nil {
		log.Error("Failed to close: %v", err)
	}
	return runErr
}

func newSlotCmd(use string, short string, run func(cmd *cobra.Command, a *app.App, gameType types.GameType, subtype types.GameSubtype) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gameType, subtype, err := parseSlot()
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return run(cmd, a, gameType, subtype)
			})
		},
	}
	addSlotFlags(cmd)
	return cmd
}

func newBeginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "begin",
		Short: "Begin a new session; it is saved when the command exits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gameType, subtype, err := parseSlot()
			if err != nil {
				return err
			}
			parsedDifficulty, err := types.ParseDifficulty(difficulty)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				m := a.Manager()
				m.Begin(gameType, subtype, parsedDifficulty, levelID)
				if !m.IsPlaying() {
					return fmt.Errorf("failed to begin %s/%s", gameType, subtype)
				}
				printSession(cmd, m.GetMatch())
				return nil
			})
		},
	}
	addSlotFlags(cmd)
	cmd.Flags().StringVar(&difficulty, "difficulty", "easy", "difficulty: easy, medium, hard or expert")
	cmd.Flags().StringVar(&levelID, "level", "", "level id, random when empty")
	return cmd
}

func requireContinue(a *app.App, gameType types.GameType, subtype types.GameSubtype) error {
	m := a.Manager()
	m.Continue(gameType, subtype)
	if !m.IsPlaying() {
		return fmt.Errorf("no saved %s/%s session", gameType, subtype)
	}
	return nil
}

func continueSession(cmd *cobra.Command, a *app.App, gameType types.GameType, subtype types.GameSubtype) error {
	if err := requireContinue(a, gameType, subtype); err != nil {
		return err
	}
	printSession(cmd, a.Manager().GetMatch())
	return nil
}

func leaveSession(cmd *cobra.Command, a *app.App, gameType types.GameType, subtype types.GameSubtype) error {
	if err := requireContinue(a, gameType, subtype); err != nil {
		return err
	}
	a.Manager().Leave()
	return nil
}

func endSession(cmd *cobra.Command, a *app.App, gameType types.GameType, subtype types.GameSubtype) error {
	if err := requireContinue(a, gameType, subtype); err != nil {
		return err
	}
	a.Manager().End()
	return nil
}

func discardSession(cmd *cobra.Command, a *app.App, gameType types.GameType, subtype types.GameSubtype) error {
	m := a.Manager()
	if !m.IsSaved(gameType, subtype) {
		return fmt.Errorf("no saved %s/%s session", gameType, subtype)
	}
	m.Discard(gameType, subtype)
	return waitAndPrintPending(cmd, a)
}

func reportSession(cmd *cobra.Command, a *app.App, gameType types.GameType, subtype types.GameSubtype) error {
	if err := requireContinue(a, gameType, subtype); err != nil {
		return err
	}
	return reportAndEnd(cmd, a)
}

func reportAndEnd(cmd *cobra.Command, a *app.App) error {
	m := a.Manager()
	status := m.SendReport()
	m.End()
	if status == nil {
		return fmt.Errorf("failed to send report")
	}

	if err := a.Wait(cmd.Context()); err != nil {
		return err
	}
	printOutcome(cmd, status)
	return nil
}

func waitAndPrintPending(cmd *cobra.Command, a *app.App) error {
	if err := a.Wait(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pending reports: %d\n", a.Manager().PendingReports())
	return nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show saved sessions, pending reports, inventory and statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				out := cmd.OutOrStdout()
				m := a.Manager()

				sessions := m.SavedSessions()
				fmt.Fprintf(out, "saved sessions: %d\n", len(sessions))
				for _, session := range sessions {
					printSession(cmd, session)
				}
				fmt.Fprintf(out, "pending reports: %d\n", m.PendingReports())
				fmt.Fprintf(out, "not synced cost: %+v\n", m.GetNotSyncedCost())
				fmt.Fprintf(out, "inventory: %+v\n", a.Profile().Profile().Inventory)
				for _, entry := range a.Statistics().Entries() {
					fmt.Fprintf(out, "%s/%s: played %d, won %d, best score %d\n",
						entry.Type, entry.Difficulty, entry.Played, entry.Won, entry.BestScore)
				}
				return nil
			})
		},
	}
}

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Simulate moves on a session, continuing the saved one or beginning a new one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gameType, subtype, err := parseSlot()
			if err != nil {
				return err
			}
			parsedDifficulty, err := types.ParseDifficulty(difficulty)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				m := a.Manager()
				if m.IsSaved(gameType, subtype) {
					m.Continue(gameType, subtype)
				} else {
					m.Begin(gameType, subtype, parsedDifficulty, levelID)
				}
				if !m.IsPlaying() {
					return fmt.Errorf("failed to start %s/%s", gameType, subtype)
				}

				session := m.GetMatch()
				session.Resume()

				playCtx, stop := context.WithCancel(ctx)
				defer stop()
				sim := &simulator{session: session, rnd: rand.New(rand.NewSource(playSeed))}
				err := a.Run(playCtx, func(float64) {
					if !sim.step() {
						stop()
					}
				})
				if err != nil {
					return err
				}
				printSession(cmd, session)

				if !session.IsEnd() {
					m.Leave()
					return nil
				}
				return reportAndEnd(cmd, a)
			})
		},
	}
	addSlotFlags(cmd)
	cmd.Flags().StringVar(&difficulty, "difficulty", "easy", "difficulty for a new session")
	cmd.Flags().StringVar(&levelID, "level", "", "level id for a new session, random when empty")
	cmd.Flags().IntVar(&playMoves, "moves", 10, "number of moves to simulate")
	cmd.Flags().DurationVar(&playTick, "tick", 0, "loop tick interval, one move per tick (default: from config)")
	cmd.Flags().Float64Var(&playMistakeRate, "mistake-rate", 0.1, "probability of a move being a mistake (0-1)")
	cmd.Flags().Float64Var(&playHintRate, "hint-rate", 0.05, "probability of a move being a hint (0-1)")
	cmd.Flags().Int64Var(&playSeed, "seed", time.Now().UnixNano(), "random seed")
	return cmd
}

// simulator makes one random move per loop tick.
type simulator struct {
	session *game.Session
	rnd     *rand.Rand
	moves   int
}

// step makes a move and reports whether another one should follow.
func (s *simulator) step() bool {
	if s.session.IsEnd() || s.moves >= playMoves {
		return false
	}
	s.moves++
	switch r := s.rnd.Float64(); {
	case r < playMistakeRate:
		s.session.Mistake()
	case r < playMistakeRate+playHintRate:
		if !s.session.Hint() {
			s.session.Solve(1)
		}
	default:
		s.session.Solve(1)
	}
	return !s.session.IsEnd() && s.moves < playMoves
}

func printSession(cmd *cobra.Command, session *game.Session) {
	cfg := session.Config()
	player := session.Player()
	fmt.Fprintf(cmd.OutOrStdout(), "%s level=%s difficulty=%s state=%s progress=%.0f%% elapsed=%.0fs mistakes=%d hints=%d score=%d\n",
		session.Key(), cfg.LevelID(), cfg.Difficulty(), session.State(), session.Progress()*100,
		session.ElapsedSeconds(), player.Mistakes(), player.HintsUsed(), session.Score())
}

func printOutcome(cmd *cobra.Command, status *reports.Status) {
	out := cmd.OutOrStdout()
	outcome, done := status.Outcome()
	if !done || outcome.Inventory == nil {
		fmt.Fprintf(out, "report %s was not acknowledged\n", status.Result().ID)
		return
	}
	fmt.Fprintf(out, "report %s acknowledged, inventory: %+v\n", status.Result().ID, *outcome.Inventory)
	for _, achievement := range outcome.Achievements {
		fmt.Fprintf(out, "achievement unlocked: %s\n", achievement)
	}
}
