// Package store persists entity-week stat records keyed by (kind, id, year, week).
//
// Two backends implement Store: Memory, a process-local map snapshotted to JSON
// files, and Postgres, a remote document store. Scoring rules only ever see the
// interface.
package store

import (
	"context"
	"fmt"

	"github.com/albapepper/scoracle-fantasy/internal/roster"
	"github.com/albapepper/scoracle-fantasy/internal/stats"
)

// Key addresses one entity-week record.
type Key struct {
	Kind stats.Kind
	ID   string
	Year int
	Week int
}

// PlayerKey returns the key of a player-week record.
func PlayerKey(playerID string, year, week int) Key {
	return Key{Kind: stats.KindPlayer, ID: playerID, Year: year, Week: week}
}

// DefenseKey returns the key of a team-defense-week record.
func DefenseKey(team string, year, week int) Key {
	return Key{Kind: stats.KindDefense, ID: team, Year: year, Week: week}
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%d/week%d", k.Kind, k.ID, k.Year, k.Week)
}

func (k Key) validate() error {
	if !k.Kind.Valid() {
		return fmt.Errorf("invalid kind %q", k.Kind)
	}
	if k.ID == "" {
		return fmt.Errorf("empty %s id", k.Kind)
	}
	return nil
}

// Application identifies one rule applied to one week, for the replay ledger.
type Application struct {
	Rule string `json:"rule"`
	Year int    `json:"year"`
	Week int    `json:"week"`
}

// Store is the persistence contract the scoring rules depend on.
//
// Get never reports absence: a missing record reads as all-zero. Merge and Set
// on a player without a roster entry are silent no-ops.
type Store interface {
	roster.Lookup

	Get(ctx context.Context, key Key) (stats.Record, error)
	Merge(ctx context.Context, key Key, delta stats.Delta) error
	// Set replaces the whole record. Only the yardage rule uses it, to lay down
	// the week's baseline before any accumulating rule runs.
	Set(ctx context.Context, key Key, rec stats.Record) error

	PutRoster(ctx context.Context, e roster.Entry) error

	Applied(ctx context.Context, app Application) (bool, error)
	MarkApplied(ctx context.Context, app Application) error
	// ClearWeek removes every record and ledger entry for (year, week).
	ClearWeek(ctx context.Context, year, week int) error
}

// DocumentReader returns a player's whole history in one read. The API uses it
// for the player document route.
type DocumentReader interface {
	PlayerDocument(ctx context.Context, playerID string) (PlayerDocument, bool, error)
}
