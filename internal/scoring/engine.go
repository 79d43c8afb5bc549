package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/albapepper/scoracle-fantasy/internal/provider"
	"github.com/albapepper/scoracle-fantasy/internal/store"
)

// ErrPartialWeek is returned when some but not all rules of a week are in the
// ledger. Accumulating fields would double if the rest were simply re-run, so
// the week has to be rescored from scratch.
var ErrPartialWeek = errors.New("week partially scored")

// Options controls a scoring run.
type Options struct {
	// Rescore clears the week's records and ledger entries before scoring.
	Rescore bool
}

// Engine applies the rules to one store, serially.
type Engine struct {
	store  store.Store
	logger *slog.Logger
}

// NewEngine returns an engine writing to s.
func NewEngine(s store.Store, logger *slog.Logger) *Engine {
	return &Engine{store: s, logger: logger}
}

// ScoreWeek scores one week of season.
//
// Each rule is recorded in the store's ledger once it completes. A week whose
// rules are all recorded is skipped; a week with only some recorded fails with
// ErrPartialWeek unless opts.Rescore is set.
func (e *Engine) ScoreWeek(ctx context.Context, season *provider.Season, week int, opts Options) (RunResult, error) {
	start := time.Now()
	result := newRunResult(season.Year)
	year := season.Year
	log := e.logger.With("run_id", result.RunID, "year", year, "week", week)

	if opts.Rescore {
		if err := e.store.ClearWeek(ctx, year, week); err != nil {
			result.AddErrorf("clear week: %v", err)
			return result, fmt.Errorf("clear week %d/%d: %w", year, week, err)
		}
		log.Info("Cleared week for rescore")
	} else {
		applied, err := e.appliedRules(ctx, year, week)
		if err != nil {
			result.AddErrorf("ledger: %v", err)
			return result, err
		}
		switch len(applied) {
		case 0:
		case len(Rules):
			result.Skipped++
			log.Info("Week already scored, skipping")
			return result, nil
		default:
			err := fmt.Errorf("%d/%d: applied %s: %w", year, week, strings.Join(applied, ","), ErrPartialWeek)
			result.AddErrorf("%v", err)
			return result, err
		}
	}

	added, err := BackfillRoster(ctx, e.store, season.Roster)
	if err != nil {
		result.AddErrorf("roster backfill: %v", err)
		return result, err
	}
	if added > 0 {
		log.Info("Roster backfilled from season download", "added", added)
	}

	plays := season.PlaysForWeek(week)
	rows := season.PlayerWeeksForWeek(week)
	result.Plays = len(plays)
	result.PlayerRows = len(rows)
	if len(plays) == 0 && len(rows) == 0 {
		log.Warn("No input rows for week")
	}
	log.Info("Scoring week", "plays", len(plays), "player_rows", len(rows))

	phases := []struct {
		rule string
		run  func() (Tally, error)
	}{
		{RuleYardage, func() (Tally, error) { return ScoreYardage(ctx, e.store, year, week, rows) }},
		{RuleTouchdowns, func() (Tally, error) { return ScoreTouchdowns(ctx, e.store, year, week, plays) }},
		{RuleKicking, func() (Tally, error) { return ScoreKicking(ctx, e.store, year, week, plays) }},
		{RuleDefense, func() (Tally, error) { return ScoreDefense(ctx, e.store, year, week, plays) }},
	}

	for i, ph := range phases {
		log.Info(fmt.Sprintf("Phase %d/%d: %s...", i+1, len(phases), ph.rule))
		tally, err := ph.run()
		result.AddTally(tally)
		if err != nil {
			result.AddErrorf("%s: %v", ph.rule, err)
			return result, fmt.Errorf("%s %d/%d: %w", ph.rule, year, week, err)
		}
		if err := e.store.MarkApplied(ctx, store.Application{Rule: ph.rule, Year: year, Week: week}); err != nil {
			result.AddErrorf("mark %s: %v", ph.rule, err)
			return result, err
		}
		log.Info("Rule done", "rule", ph.rule, "rows", tally.Rows, "merges", tally.Merges, "dropped", tally.Dropped)
		if tally.Dropped > 0 && tally.Merges == 0 {
			log.Warn("Roster gate dropped every write; is the roster loaded?", "rule", ph.rule, "dropped", tally.Dropped)
		}
	}

	result.Weeks++
	result.Duration = time.Since(start)
	log.Info("Week scored", "summary", result.Summary(), "duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

// ScoreSeason scores weeks from..to of season in order. A to of zero means
// the last week with plays. Partially scored weeks are reported and skipped;
// any other failure stops the run.
func (e *Engine) ScoreSeason(ctx context.Context, season *provider.Season, from, to int, opts Options) (RunResult, error) {
	start := time.Now()
	total := newRunResult(season.Year)
	if to == 0 {
		weeks := season.Weeks()
		if len(weeks) == 0 {
			return total, fmt.Errorf("season %d has no plays", season.Year)
		}
		to = weeks[len(weeks)-1]
	}
	if from < 1 || to < from {
		return total, fmt.Errorf("invalid week range %d..%d", from, to)
	}
	e.logger.Info("Scoring season", "run_id", total.RunID, "year", season.Year, "from", from, "to", to)

	for week := from; week <= to; week++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		res, err := e.ScoreWeek(ctx, season, week, opts)
		total.Add(res)
		if errors.Is(err, ErrPartialWeek) {
			continue
		}
		if err != nil {
			total.Duration = time.Since(start)
			return total, err
		}
	}

	total.Duration = time.Since(start)
	e.logger.Info("Season scored", "summary", total.Summary(), "duration", total.Duration.Round(time.Millisecond))
	return total, nil
}

// appliedRules returns the rules of (year, week) already in the ledger.
func (e *Engine) appliedRules(ctx context.Context, year, week int) ([]string, error) {
	var applied []string
	for _, rule := range Rules {
		ok, err := e.store.Applied(ctx, store.Application{Rule: rule, Year: year, Week: week})
		if err != nil {
			return nil, fmt.Errorf("ledger %s %d/%d: %w", rule, year, week, err)
		}
		if ok {
			applied = append(applied, rule)
		}
	}
	return applied, nil
}
