// Command score is the fantasy scoring CLI.
//
// Usage:
//
//	scoracle-score roster init --season 2023
//	scoracle-score score week --season 2023 --week 1
//	scoracle-score score week --season 2023 --week 1 --rescore
//	scoracle-score score season --season 2023 --from 1 --to 18
//	scoracle-score score season --season 2023
//	scoracle-score sync --layout weekly
//	scoracle-score snapshot show --player 00-0033873
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/scoracle-fantasy/internal/config"
	"github.com/albapepper/scoracle-fantasy/internal/db"
	"github.com/albapepper/scoracle-fantasy/internal/maintenance"
	"github.com/albapepper/scoracle-fantasy/internal/provider"
	"github.com/albapepper/scoracle-fantasy/internal/provider/nflverse"
	"github.com/albapepper/scoracle-fantasy/internal/scoring"
	"github.com/albapepper/scoracle-fantasy/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "scoracle-score",
		Short:        "Fantasy football scoring CLI",
		SilenceUsage: true,
	}

	root.AddCommand(scoreCmd())
	root.AddCommand(rosterCmd())
	root.AddCommand(syncCmd())
	root.AddCommand(snapshotCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// score command
// --------------------------------------------------------------------------

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Apply the scoring rules to downloaded season data",
	}
	cmd.AddCommand(scoreWeekCmd())
	cmd.AddCommand(scoreSeasonCmd())
	return cmd
}

func scoreWeekCmd() *cobra.Command {
	var (
		season, week int
		rescore      bool
	)
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Score a single week",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspace(func(ctx context.Context, ws *workspace) error {
				data, err := ws.loadSeason(ctx, season)
				if err != nil {
					return err
				}
				engine := scoring.NewEngine(ws.store, logger)
				result, err := engine.ScoreWeek(ctx, data, week, scoring.Options{Rescore: rescore})
				logResult("Week", result)
				if errors.Is(err, scoring.ErrPartialWeek) {
					return fmt.Errorf("%w; rerun with --rescore", err)
				}
				return err
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season year (defaults to CURRENT_SEASON)")
	cmd.Flags().IntVar(&week, "week", 1, "Week number")
	cmd.Flags().BoolVar(&rescore, "rescore", false, "Clear the week's records and ledger entries before scoring")
	return cmd
}

func scoreSeasonCmd() *cobra.Command {
	var (
		season, from, to int
		rescore          bool
	)
	cmd := &cobra.Command{
		Use:   "season",
		Short: "Score a range of weeks from one download",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspace(func(ctx context.Context, ws *workspace) error {
				data, err := ws.loadSeason(ctx, season)
				if err != nil {
					return err
				}
				engine := scoring.NewEngine(ws.store, logger)
				result, err := engine.ScoreSeason(ctx, data, from, to, scoring.Options{Rescore: rescore})
				logResult("Season", result)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season year (defaults to CURRENT_SEASON)")
	cmd.Flags().IntVar(&from, "from", 1, "First week")
	cmd.Flags().IntVar(&to, "to", 0, "Last week (defaults to the last week with plays)")
	cmd.Flags().BoolVar(&rescore, "rescore", false, "Rescore every week in the range")
	return cmd
}

func logResult(what string, result scoring.RunResult) {
	logger.Info(what+" scoring finished",
		"run_id", result.RunID,
		"duration", result.Duration.Round(time.Millisecond),
		"summary", result.Summary())
	for _, e := range result.Errors {
		logger.Error("scoring error", "error", e)
	}
}

// --------------------------------------------------------------------------
// roster command
// --------------------------------------------------------------------------

func rosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage season roster entries",
	}
	cmd.AddCommand(rosterInitCmd())
	return cmd
}

func rosterInitCmd() *cobra.Command {
	var season int
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Download the season roster and store fantasy-eligible players",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspace(func(ctx context.Context, ws *workspace) error {
				year := ws.season(season)
				start := time.Now()
				rows, err := ws.source().Roster(ctx, year)
				if err != nil {
					return fmt.Errorf("download roster %d: %w", year, err)
				}
				stored, skipped, err := scoring.LoadRoster(ctx, ws.store, rows, logger)
				logger.Info("Roster init finished",
					"season", year, "stored", stored, "skipped", skipped,
					"duration", time.Since(start).Round(time.Millisecond))
				return err
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season year (defaults to CURRENT_SEASON)")
	return cmd
}

// --------------------------------------------------------------------------
// sync command
// --------------------------------------------------------------------------

func syncCmd() *cobra.Command {
	var (
		layout    string
		keepLocal bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push the local snapshot to Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if layout == "" {
				layout = cfg.SyncLayout
			}
			l, err := store.ParseLayout(layout)
			if err != nil {
				return err
			}

			local := store.NewMemory()
			if err := local.LoadFrom(cfg.DataDir); err != nil {
				return fmt.Errorf("load snapshot: %w", err)
			}

			pool, err := db.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			result := store.Sync(ctx, local, store.NewPostgres(pool.Pool, logger), l, !keepLocal, logger)
			if err := local.SaveTo(cfg.DataDir); err != nil {
				return fmt.Errorf("save snapshot: %w", err)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("sync finished with %d errors", len(result.Errors))
			}
			if l == store.LayoutWeekly {
				return maintenance.RefreshMaterializedViews(ctx, pool, logger)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&layout, "layout", "", "Remote layout: document or weekly (defaults to SYNC_LAYOUT)")
	cmd.Flags().BoolVar(&keepLocal, "keep-local", false, "Keep the local snapshot after a successful sync")
	return cmd
}

// --------------------------------------------------------------------------
// snapshot command
// --------------------------------------------------------------------------

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect the local snapshot",
	}
	cmd.AddCommand(snapshotShowCmd())
	return cmd
}

func snapshotShowCmd() *cobra.Command {
	var playerID, team string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print one player's or team defense's records as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (playerID == "") == (team == "") {
				return fmt.Errorf("exactly one of --player or --team is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			snap, err := store.LoadSnapshot(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("load snapshot: %w", err)
			}

			var v any
			if playerID != "" {
				doc, ok := snap.Players[playerID]
				if !ok {
					return fmt.Errorf("player %s not in snapshot", playerID)
				}
				v = doc
			} else {
				weeks, ok := snap.Defenses[team]
				if !ok {
					return fmt.Errorf("team %s not in snapshot", team)
				}
				v = weeks
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}
	cmd.Flags().StringVar(&playerID, "player", "", "Player id")
	cmd.Flags().StringVar(&team, "team", "", "Team abbreviation")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// workspace is the store a command scores into, plus how to reach the data.
type workspace struct {
	cfg   *config.Config
	store store.Store
}

func (ws *workspace) season(flag int) int {
	if flag > 0 {
		return flag
	}
	return ws.cfg.CurrentSeason
}

func (ws *workspace) source() provider.Source {
	if ws.cfg.NFLVerseLocalDir != "" {
		return nflverse.DirSource{Dir: ws.cfg.NFLVerseLocalDir}
	}
	client := nflverse.NewClient(ws.cfg.NFLVerseBaseURL, ws.cfg.NFLVerseRequestsPerMinute, ws.cfg.NFLVerseTimeout, logger)
	return nflverse.NewHTTPSource(client)
}

func (ws *workspace) loadSeason(ctx context.Context, flag int) (*provider.Season, error) {
	year := ws.season(flag)
	start := time.Now()
	season, err := provider.LoadSeason(ctx, ws.source(), year)
	if err != nil {
		return nil, err
	}
	logger.Info("Season data loaded",
		"season", year,
		"plays", len(season.Plays),
		"player_rows", len(season.PlayerWeeks),
		"duration", time.Since(start).Round(time.Millisecond))
	return season, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return cfg, nil
}

// runWorkspace handles config loading, store selection and context
// cancellation. On the file backend the snapshot is loaded first and saved
// afterwards, even when fn fails, so the ledger matches the records on disk.
func runWorkspace(fn func(ctx context.Context, ws *workspace) error) (err error) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ws := &workspace{cfg: cfg}

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		ws.store = store.NewPostgres(pool.Pool, logger)
	default:
		mem := store.NewMemory()
		if err := mem.LoadFrom(cfg.DataDir); err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		ws.store = mem
		defer func() {
			if serr := mem.SaveTo(cfg.DataDir); serr != nil {
				err = errors.Join(err, fmt.Errorf("save snapshot: %w", serr))
			}
		}()
	}

	return fn(ctx, ws)
}
