package scoring

import (
	"context"
	"fmt"

	"github.com/albapepper/scoracle-fantasy/internal/roster"
	"github.com/albapepper/scoracle-fantasy/internal/stats"
	"github.com/albapepper/scoracle-fantasy/internal/store"
)

// Rule names, as recorded in the replay ledger.
const (
	RuleYardage    = "yardage"
	RuleTouchdowns = "touchdowns"
	RuleKicking    = "kicking"
	RuleDefense    = "defense"
)

// Rules lists every rule in application order.
var Rules = []string{RuleYardage, RuleTouchdowns, RuleKicking, RuleDefense}

// Tally counts what one rule application did.
type Tally struct {
	Rule    string
	Rows    int // input rows in scope
	Merges  int // writes that reached the store
	Dropped int // player writes discarded by the roster gate
}

// writer funnels a rule's writes for one (year, week) into the store and
// keeps the tally.
type writer struct {
	s     store.Store
	year  int
	week  int
	tally *Tally
}

func newWriter(s store.Store, year, week int, tally *Tally) *writer {
	return &writer{s: s, year: year, week: week, tally: tally}
}

// rostered reports whether playerID passes the roster gate.
func (w *writer) rostered(ctx context.Context, playerID string) (bool, error) {
	if playerID == "" {
		return false, nil
	}
	_, ok, err := w.s.Roster(ctx, playerID)
	if err != nil {
		return false, fmt.Errorf("roster %s: %w", playerID, err)
	}
	return ok, nil
}

func (w *writer) player(ctx context.Context, playerID string, delta stats.Delta) error {
	ok, err := w.rostered(ctx, playerID)
	if err != nil {
		return err
	}
	if !ok {
		w.tally.Dropped++
		return nil
	}
	if err := w.s.Merge(ctx, store.PlayerKey(playerID, w.year, w.week), delta); err != nil {
		return fmt.Errorf("merge player %s: %w", playerID, err)
	}
	w.tally.Merges++
	return nil
}

func (w *writer) setPlayer(ctx context.Context, playerID string, rec stats.Record) error {
	ok, err := w.rostered(ctx, playerID)
	if err != nil {
		return err
	}
	if !ok {
		w.tally.Dropped++
		return nil
	}
	if err := w.s.Set(ctx, store.PlayerKey(playerID, w.year, w.week), rec); err != nil {
		return fmt.Errorf("set player %s: %w", playerID, err)
	}
	w.tally.Merges++
	return nil
}

func (w *writer) defense(ctx context.Context, team string, delta stats.Delta) error {
	if team == "" {
		return nil
	}
	if err := w.s.Merge(ctx, store.DefenseKey(team, w.year, w.week), delta); err != nil {
		return fmt.Errorf("merge defense %s: %w", team, err)
	}
	w.tally.Merges++
	return nil
}

func (w *writer) getDefense(ctx context.Context, team string) (stats.Record, error) {
	rec, err := w.s.Get(ctx, store.DefenseKey(team, w.year, w.week))
	if err != nil {
		return nil, fmt.Errorf("get defense %s: %w", team, err)
	}
	return rec, nil
}

// position returns the player's roster position, "" when unknown.
func position(ctx context.Context, l roster.Lookup, playerID string) (roster.Position, error) {
	pos, err := roster.PositionOf(ctx, l, playerID)
	if err != nil {
		return "", fmt.Errorf("position %s: %w", playerID, err)
	}
	return pos, nil
}
