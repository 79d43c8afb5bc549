package scoring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/albapepper/scoracle-fantasy/internal/provider"
	"github.com/albapepper/scoracle-fantasy/internal/roster"
	"github.com/albapepper/scoracle-fantasy/internal/store"
)

// RosterEntry converts a published roster row. ok is false for rows without
// an id or at a position that never scores.
func RosterEntry(r provider.RosterRow) (roster.Entry, bool) {
	pos, ok := roster.ParsePosition(r.Position)
	if !ok || r.PlayerID == "" {
		return roster.Entry{}, false
	}
	return roster.Entry{ID: r.PlayerID, Name: r.Name, Position: pos, Team: r.Team}, true
}

// LoadRoster stores every eligible row of a season roster.
func LoadRoster(ctx context.Context, s store.Store, rows []provider.RosterRow, logger *slog.Logger) (stored, skipped int, err error) {
	for _, r := range rows {
		e, ok := RosterEntry(r)
		if !ok {
			skipped++
			continue
		}
		if err := s.PutRoster(ctx, e); err != nil {
			return stored, skipped, fmt.Errorf("roster %s: %w", r.PlayerID, err)
		}
		stored++
	}
	logger.Info("Roster loaded", "stored", stored, "skipped", skipped)
	return stored, skipped, nil
}

// BackfillRoster stores the eligible rows of a season roster whose players
// have no entry yet. Existing entries are left as they are.
func BackfillRoster(ctx context.Context, s store.Store, rows []provider.RosterRow) (added int, err error) {
	for _, r := range rows {
		e, ok := RosterEntry(r)
		if !ok {
			continue
		}
		_, found, err := s.Roster(ctx, e.ID)
		if err != nil {
			return added, fmt.Errorf("roster %s: %w", e.ID, err)
		}
		if found {
			continue
		}
		if err := s.PutRoster(ctx, e); err != nil {
			return added, fmt.Errorf("roster %s: %w", e.ID, err)
		}
		added++
	}
	return added, nil
}
