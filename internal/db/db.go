// Package db provides a pgxpool-based connection pool with prepared statement
// registration, schema bootstrap and health checking.
package db

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/scoracle-fantasy/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool. The schema is created
// before the pool is returned so prepared statements can reference it.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	if err := ensureSchema(ctx, cfg.DatabaseURL); err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

func ensureSchema(ctx context.Context, url string) error {
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return fmt.Errorf("connect for schema: %w", err)
	}
	defer conn.Close(ctx)
	if _, err := conn.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// registerPreparedStatements registers all statements the store, sync and API
// layers use.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Roster
		"roster_get": "SELECT name, position, team FROM fantasy_players WHERE id = $1",
		"roster_upsert": `INSERT INTO fantasy_players (id, name, position, team, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				position = EXCLUDED.position,
				team = EXCLUDED.team,
				updated_at = NOW()`,

		// Player weeks
		"player_week_get":    "SELECT stats FROM player_weeks WHERE player_id = $1 AND year = $2 AND week = $3",
		"player_week_lock":   "SELECT stats FROM player_weeks WHERE player_id = $1 AND year = $2 AND week = $3 FOR UPDATE",
		"player_week_ensure": "INSERT INTO player_weeks (player_id, year, week, stats) VALUES ($1, $2, $3, '{}'::jsonb) ON CONFLICT DO NOTHING",
		"player_week_upsert": `INSERT INTO player_weeks (player_id, year, week, stats, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (player_id, year, week) DO UPDATE SET
				stats = EXCLUDED.stats,
				updated_at = NOW()`,
		"player_weeks_clear": "DELETE FROM player_weeks WHERE year = $1 AND week = $2",
		"player_weeks_list":  "SELECT year, week, stats FROM player_weeks WHERE player_id = $1 ORDER BY year, week",

		// Defense weeks
		"defense_week_get":    "SELECT stats FROM defense_weeks WHERE team = $1 AND year = $2 AND week = $3",
		"defense_week_lock":   "SELECT stats FROM defense_weeks WHERE team = $1 AND year = $2 AND week = $3 FOR UPDATE",
		"defense_week_ensure": "INSERT INTO defense_weeks (team, year, week, stats) VALUES ($1, $2, $3, '{}'::jsonb) ON CONFLICT DO NOTHING",
		"defense_week_upsert": `INSERT INTO defense_weeks (team, year, week, stats, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (team, year, week) DO UPDATE SET
				stats = EXCLUDED.stats,
				updated_at = NOW()`,
		"defense_weeks_clear": "DELETE FROM defense_weeks WHERE year = $1 AND week = $2",

		// Replay ledger
		"ledger_applied": "SELECT EXISTS (SELECT 1 FROM scoring_ledger WHERE rule = $1 AND year = $2 AND week = $3)",
		"ledger_mark":    "INSERT INTO scoring_ledger (rule, year, week) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING",
		"ledger_clear":   "DELETE FROM scoring_ledger WHERE year = $1 AND week = $2",

		// Document layout. Writes merge one (year, week) into the stored
		// document, so earlier weeks survive a push of newer ones.
		"player_document_get": "SELECT doc FROM player_documents WHERE id = $1",
		"player_document_week_get": `SELECT doc->'scoring'->(($2::int)::text)->(($3::int)::text)
			FROM player_documents WHERE id = $1`,
		"player_document_roster_upsert": `INSERT INTO player_documents (id, doc, updated_at)
			VALUES ($1, jsonb_build_object('roster', $2::jsonb, 'scoring', '{}'::jsonb), NOW())
			ON CONFLICT (id) DO UPDATE SET
				doc = player_documents.doc || jsonb_build_object('roster', $2::jsonb),
				updated_at = NOW()`,
		"player_document_week_upsert": `INSERT INTO player_documents (id, doc, updated_at)
			VALUES ($1, jsonb_build_object('scoring',
				jsonb_build_object(($2::int)::text, jsonb_build_object(($3::int)::text, $4::jsonb))), NOW())
			ON CONFLICT (id) DO UPDATE SET
				doc = player_documents.doc || jsonb_build_object('scoring',
					COALESCE(player_documents.doc->'scoring', '{}'::jsonb) || jsonb_build_object(($2::int)::text,
						COALESCE(player_documents.doc->'scoring'->(($2::int)::text), '{}'::jsonb)
							|| jsonb_build_object(($3::int)::text, $4::jsonb))),
				updated_at = NOW()`,
		"defense_document_week_get": `SELECT doc->(($2::int)::text)->(($3::int)::text)
			FROM defense_documents WHERE team = $1`,
		"defense_document_week_upsert": `INSERT INTO defense_documents (team, doc, updated_at)
			VALUES ($1, jsonb_build_object(($2::int)::text, jsonb_build_object(($3::int)::text, $4::jsonb)), NOW())
			ON CONFLICT (team) DO UPDATE SET
				doc = defense_documents.doc || jsonb_build_object(($2::int)::text,
					COALESCE(defense_documents.doc->(($2::int)::text), '{}'::jsonb)
						|| jsonb_build_object(($3::int)::text, $4::jsonb)),
				updated_at = NOW()`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
