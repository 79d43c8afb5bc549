package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/scoracle-fantasy/internal/stats"
)

// Layout selects how records are shaped in the remote store.
type Layout string

const (
	// LayoutDocument writes one document per entity holding every year and week.
	LayoutDocument Layout = "document"
	// LayoutWeekly writes one row per (entity, year, week).
	LayoutWeekly Layout = "weekly"
)

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(s); l {
	case LayoutDocument, LayoutWeekly:
		return l, nil
	}
	return "", fmt.Errorf("unknown sync layout %q", s)
}

// SyncResult tracks counts and errors from a sync.
type SyncResult struct {
	Rosters      int
	Documents    int // player documents, document layout only
	PlayerWeeks  int
	DefenseWeeks int
	Ledger       int
	Ungated      int
	Cleared      bool
	Errors       []string
}

// AddErrorf records a formatted error message.
func (r *SyncResult) AddErrorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the sync.
func (r *SyncResult) Summary() string {
	return fmt.Sprintf(
		"rosters=%d documents=%d player_weeks=%d defense_weeks=%d ledger=%d ungated=%d cleared=%t errors=%d",
		r.Rosters, r.Documents, r.PlayerWeeks, r.DefenseWeeks,
		r.Ledger, r.Ungated, r.Cleared, len(r.Errors),
	)
}

// Remote receives a full local snapshot. Writes overwrite, so pushing the same
// snapshot twice leaves the remote unchanged.
type Remote interface {
	SyncAll(ctx context.Context, snap Snapshot, layout Layout) SyncResult
}

// Sync pushes everything local holds to remote. When clearLocal is set and the
// push reported no errors, local is emptied afterwards.
func Sync(ctx context.Context, local *Memory, remote Remote, layout Layout, clearLocal bool, logger *slog.Logger) SyncResult {
	start := time.Now()
	snap := local.Snapshot()
	logger.Info("Syncing local store",
		"layout", layout,
		"players", len(snap.Players),
		"defenses", len(snap.Defenses),
		"ledger", len(snap.Ledger))

	result := remote.SyncAll(ctx, snap, layout)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			logger.Warn("Sync error", "error", e)
		}
		logger.Warn("Keeping local store after failed sync", "errors", len(result.Errors))
	} else if clearLocal {
		local.Clear()
		result.Cleared = true
	}

	logger.Info("Sync complete", "summary", result.Summary(), "duration", time.Since(start).Round(time.Millisecond))
	return result
}

var _ Remote = (*Postgres)(nil)

// queued labels one statement in a batch for error reporting.
type queued struct {
	label string
	count *int
}

// SyncAll writes snap in three batches: rosters, records, then the ledger.
// Player records are only written for players holding a roster entry. In the
// document layout each record is merged into its entity's document by
// (year, week), and Documents counts the player documents whose roster part
// was written.
func (p *Postgres) SyncAll(ctx context.Context, snap Snapshot, layout Layout) SyncResult {
	var result SyncResult
	if _, err := ParseLayout(string(layout)); err != nil {
		result.AddErrorf("%v", err)
		return result
	}

	// Rosters first so the weekly rows they gate are never orphaned.
	rosters := &pgx.Batch{}
	var rosterItems []queued
	for id, doc := range snap.Players {
		if !doc.Roster.Valid() {
			continue
		}
		rosters.Queue("roster_upsert", id, doc.Roster.Name, string(doc.Roster.Position), doc.Roster.Team)
		rosterItems = append(rosterItems, queued{"roster " + id, &result.Rosters})
	}
	p.sendBatch(ctx, rosters, rosterItems, &result)

	records := &pgx.Batch{}
	var recordItems []queued
	for id, doc := range snap.Players {
		if !doc.Roster.Valid() {
			result.Ungated++
			continue
		}
		if layout == LayoutDocument {
			raw, err := json.Marshal(doc.Roster)
			if err != nil {
				result.AddErrorf("encode roster %s: %v", id, err)
				continue
			}
			records.Queue("player_document_roster_upsert", id, raw)
			recordItems = append(recordItems, queued{"player document " + id, &result.Documents})
		}
		for year, ws := range doc.Scoring {
			for week, rec := range ws {
				key := PlayerKey(id, year, week)
				if p.queueRecord(records, key, rec, layout, &result) {
					recordItems = append(recordItems, queued{key.String(), &result.PlayerWeeks})
				}
			}
		}
	}
	for team, years := range snap.Defenses {
		for year, ws := range years {
			for week, rec := range ws {
				key := DefenseKey(team, year, week)
				if p.queueRecord(records, key, rec, layout, &result) {
					recordItems = append(recordItems, queued{key.String(), &result.DefenseWeeks})
				}
			}
		}
	}
	p.sendBatch(ctx, records, recordItems, &result)

	ledger := &pgx.Batch{}
	var ledgerItems []queued
	for _, app := range snap.Ledger {
		ledger.Queue("ledger_mark", app.Rule, app.Year, app.Week)
		ledgerItems = append(ledgerItems, queued{fmt.Sprintf("ledger %s %d/%d", app.Rule, app.Year, app.Week), &result.Ledger})
	}
	p.sendBatch(ctx, ledger, ledgerItems, &result)

	return result
}

// queueRecord queues one entity-week write. Both layouts address a single
// (year, week), so a push never drops weeks the remote already holds.
func (p *Postgres) queueRecord(b *pgx.Batch, key Key, rec stats.Record, layout Layout, result *SyncResult) bool {
	raw, err := json.Marshal(stats.Normalize(key.Kind, rec))
	if err != nil {
		result.AddErrorf("encode %s: %v", key, err)
		return false
	}
	stmt := statements[key.Kind].upsert
	if layout == LayoutDocument {
		stmt = statements[key.Kind].docUpsert
	}
	b.Queue(stmt, key.ID, key.Year, key.Week, raw)
	return true
}

func (p *Postgres) sendBatch(ctx context.Context, b *pgx.Batch, items []queued, result *SyncResult) {
	if b.Len() == 0 {
		return
	}
	br := p.db.SendBatch(ctx, b)
	for _, item := range items {
		if _, err := br.Exec(); err != nil {
			result.AddErrorf("%s: %v", item.label, err)
			continue
		}
		*item.count++
	}
	if err := br.Close(); err != nil {
		p.logger.Warn("Closing sync batch", "error", err)
	}
}
