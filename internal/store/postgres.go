package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/scoracle-fantasy/internal/roster"
	"github.com/albapepper/scoracle-fantasy/internal/stats"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// conn is the part of *pgxpool.Pool the store uses.
type conn interface {
	querier
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Begin(ctx context.Context) (pgx.Tx, error)
}

// weekStatements names the prepared statements for one entity kind. The doc
// pair addresses one (year, week) inside the entity's document.
type weekStatements struct {
	get, lock, ensure, upsert, clear string
	docGet, docUpsert                string
}

var statements = map[stats.Kind]weekStatements{
	stats.KindPlayer: {
		get:    "player_week_get",
		lock:   "player_week_lock",
		ensure: "player_week_ensure",
		upsert: "player_week_upsert",
		clear:  "player_weeks_clear",

		docGet:    "player_document_week_get",
		docUpsert: "player_document_week_upsert",
	},
	stats.KindDefense: {
		get:    "defense_week_get",
		lock:   "defense_week_lock",
		ensure: "defense_week_ensure",
		upsert: "defense_week_upsert",
		clear:  "defense_weeks_clear",

		docGet:    "defense_document_week_get",
		docUpsert: "defense_document_week_upsert",
	},
}

// Postgres is the remote document store. Statement names refer to the
// statements registered by the db package on every pooled connection.
type Postgres struct {
	db     conn
	logger *slog.Logger
}

// NewPostgres returns a store backed by pool.
func NewPostgres(pool *pgxpool.Pool, logger *slog.Logger) *Postgres {
	return &Postgres{db: pool, logger: logger}
}

var (
	_ Store = (*Postgres)(nil)
	_ conn  = (*pgxpool.Pool)(nil)
)

// Roster returns the roster entry for a player.
func (p *Postgres) Roster(ctx context.Context, playerID string) (roster.Entry, bool, error) {
	return rosterGet(ctx, p.db, playerID)
}

func rosterGet(ctx context.Context, q querier, playerID string) (roster.Entry, bool, error) {
	e := roster.Entry{ID: playerID}
	var pos string
	err := q.QueryRow(ctx, "roster_get", playerID).Scan(&e.Name, &pos, &e.Team)
	if errors.Is(err, pgx.ErrNoRows) {
		return roster.Entry{}, false, nil
	}
	if err != nil {
		return roster.Entry{}, false, fmt.Errorf("roster %s: %w", playerID, err)
	}
	e.Position = roster.Position(pos)
	return e, true, nil
}

// PutRoster stores or replaces a player's roster entry.
func (p *Postgres) PutRoster(ctx context.Context, e roster.Entry) error {
	if !e.Valid() {
		return nil
	}
	if _, err := p.db.Exec(ctx, "roster_upsert", e.ID, e.Name, string(e.Position), e.Team); err != nil {
		return fmt.Errorf("upsert roster %s: %w", e.ID, err)
	}
	return nil
}

// Get returns the record for key, or the zero record when absent. The weekly
// row wins; without one the week is read from the entity's document.
func (p *Postgres) Get(ctx context.Context, key Key) (stats.Record, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	stmts := statements[key.Kind]
	rec, found, err := readRecord(ctx, p.db, stmts.get, key)
	if err != nil || found {
		return rec, err
	}
	rec, _, err = readRecord(ctx, p.db, stmts.docGet, key)
	return rec, err
}

// Merge applies delta inside a transaction holding the row lock for key.
func (p *Postgres) Merge(ctx context.Context, key Key, delta stats.Delta) error {
	if err := key.validate(); err != nil {
		return err
	}
	if err := delta.Validate(key.Kind); err != nil {
		return err
	}
	stmts := statements[key.Kind]

	return pgx.BeginFunc(ctx, p.db, func(tx pgx.Tx) error {
		ok, err := gate(ctx, tx, key)
		if err != nil || !ok {
			return err
		}
		if _, err := tx.Exec(ctx, stmts.ensure, key.ID, key.Year, key.Week); err != nil {
			return fmt.Errorf("ensure %s: %w", key, err)
		}
		cur, _, err := readRecord(ctx, tx, stmts.lock, key)
		if err != nil {
			return err
		}
		next, err := stats.Merge(key.Kind, cur, delta)
		if err != nil {
			return err
		}
		return writeRecord(ctx, tx, stmts.upsert, key, next)
	})
}

// Set replaces the record for key.
func (p *Postgres) Set(ctx context.Context, key Key, rec stats.Record) error {
	if err := key.validate(); err != nil {
		return err
	}
	ok, err := gate(ctx, p.db, key)
	if err != nil || !ok {
		return err
	}
	return writeRecord(ctx, p.db, statements[key.Kind].upsert, key, stats.Normalize(key.Kind, rec))
}

// Applied reports whether app is recorded in the ledger.
func (p *Postgres) Applied(ctx context.Context, app Application) (bool, error) {
	var ok bool
	if err := p.db.QueryRow(ctx, "ledger_applied", app.Rule, app.Year, app.Week).Scan(&ok); err != nil {
		return false, fmt.Errorf("ledger lookup %s %d/%d: %w", app.Rule, app.Year, app.Week, err)
	}
	return ok, nil
}

// MarkApplied records app in the ledger.
func (p *Postgres) MarkApplied(ctx context.Context, app Application) error {
	if _, err := p.db.Exec(ctx, "ledger_mark", app.Rule, app.Year, app.Week); err != nil {
		return fmt.Errorf("ledger mark %s %d/%d: %w", app.Rule, app.Year, app.Week, err)
	}
	return nil
}

// ClearWeek drops all weekly rows and ledger entries for (year, week).
func (p *Postgres) ClearWeek(ctx context.Context, year, week int) error {
	return pgx.BeginFunc(ctx, p.db, func(tx pgx.Tx) error {
		for _, name := range []string{
			statements[stats.KindPlayer].clear,
			statements[stats.KindDefense].clear,
			"ledger_clear",
		} {
			if _, err := tx.Exec(ctx, name, year, week); err != nil {
				return fmt.Errorf("%s %d/%d: %w", name, year, week, err)
			}
		}
		return nil
	})
}

// PlayerDocument assembles the player's history from weekly rows, falling back
// to the document written by a document-layout sync.
func (p *Postgres) PlayerDocument(ctx context.Context, playerID string) (PlayerDocument, bool, error) {
	e, ok, err := rosterGet(ctx, p.db, playerID)
	if err != nil || !ok {
		return PlayerDocument{}, false, err
	}
	doc := PlayerDocument{Roster: e, Scoring: map[int]map[int]stats.Record{}}

	rows, err := p.db.Query(ctx, "player_weeks_list", playerID)
	if err != nil {
		return PlayerDocument{}, false, fmt.Errorf("list weeks %s: %w", playerID, err)
	}
	defer rows.Close()
	w := weeks(doc.Scoring)
	for rows.Next() {
		var year, week int
		var raw []byte
		if err := rows.Scan(&year, &week, &raw); err != nil {
			return PlayerDocument{}, false, fmt.Errorf("scan week %s: %w", playerID, err)
		}
		var rec stats.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return PlayerDocument{}, false, fmt.Errorf("decode week %s %d/%d: %w", playerID, year, week, err)
		}
		w.put(year, week, stats.Normalize(stats.KindPlayer, rec))
	}
	if err := rows.Err(); err != nil {
		return PlayerDocument{}, false, fmt.Errorf("list weeks %s: %w", playerID, err)
	}
	if len(doc.Scoring) > 0 {
		return doc, true, nil
	}

	var raw []byte
	err = p.db.QueryRow(ctx, "player_document_get", playerID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return doc, true, nil
	}
	if err != nil {
		return PlayerDocument{}, false, fmt.Errorf("read document %s: %w", playerID, err)
	}
	var stored PlayerDocument
	if err := json.Unmarshal(raw, &stored); err != nil {
		return PlayerDocument{}, false, fmt.Errorf("decode document %s: %w", playerID, err)
	}
	if stored.Scoring != nil {
		doc.Scoring = stored.Scoring
	}
	return doc, true, nil
}

// gate reports whether writes for key are allowed: players need a roster entry.
func gate(ctx context.Context, q querier, key Key) (bool, error) {
	if key.Kind != stats.KindPlayer {
		return true, nil
	}
	_, ok, err := rosterGet(ctx, q, key.ID)
	return ok, err
}

func readRecord(ctx context.Context, q querier, stmt string, key Key) (stats.Record, bool, error) {
	var raw []byte
	err := q.QueryRow(ctx, stmt, key.ID, key.Year, key.Week).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return stats.Zero(key.Kind), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	// A document without the week yields NULL.
	if raw == nil {
		return stats.Zero(key.Kind), false, nil
	}
	var rec stats.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return stats.Normalize(key.Kind, rec), true, nil
}

func writeRecord(ctx context.Context, q querier, stmt string, key Key, rec stats.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if _, err := q.Exec(ctx, stmt, key.ID, key.Year, key.Week, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
