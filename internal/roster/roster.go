// Package roster holds the season roster entries the scoring rules consult for
// position-based bonuses, and the gate deciding which players get records.
package roster

import (
	"context"
	"strings"
)

// Position is a fantasy-eligible offensive position.
type Position string

const (
	QB Position = "QB"
	RB Position = "RB"
	WR Position = "WR"
	TE Position = "TE"
	K  Position = "K"
)

// ParsePosition normalizes a raw position string. ok is false for positions
// that never score in this league (OL, defensive players, punters).
func ParsePosition(raw string) (Position, bool) {
	p := Position(strings.ToUpper(strings.TrimSpace(raw)))
	switch p {
	case QB, RB, WR, TE, K:
		return p, true
	}
	return "", false
}

// Entry is one player's roster record for a season.
type Entry struct {
	ID       string   `json:"-"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
	Team     string   `json:"team"`
}

// Valid reports whether e can gate stat records: it needs an id and a position.
func (e Entry) Valid() bool {
	return e.ID != "" && e.Position != ""
}

// Lookup resolves a player id to a roster entry. ok is false when the player
// is unknown; that is never an error.
type Lookup interface {
	Roster(ctx context.Context, playerID string) (Entry, bool, error)
}

// PositionOf returns the player's position, or "" when the player is unknown.
// An unknown player therefore never matches an expected position.
func PositionOf(ctx context.Context, l Lookup, playerID string) (Position, error) {
	if playerID == "" {
		return "", nil
	}
	e, ok, err := l.Roster(ctx, playerID)
	if err != nil || !ok {
		return "", err
	}
	return e.Position, nil
}
