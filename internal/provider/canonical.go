// Package provider defines the canonical rows every data source normalizes
// into. These structs are the contract between sources and the scoring
// engine: sources output them, rules read them.
//
// Adding a new source means implementing Source. The rules never change.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ErrMissingColumn is returned when an input table lacks a column a rule needs.
var ErrMissingColumn = errors.New("missing column")

// Play is one play-by-play row.
type Play struct {
	GameID string
	PlayID int
	Season int
	Week   int
	Desc   string

	PosTeam  string
	DefTeam  string
	HomeTeam string
	AwayTeam string
	// Final scores, repeated on every play of the game.
	HomeScore int
	AwayScore int

	YardsGained    int
	Touchdown      bool
	PassTouchdown  bool
	RushTouchdown  bool
	TDTeam         string
	TDPlayerID     string
	PasserPlayerID string

	FieldGoalResult  string // made, missed, blocked
	ExtraPointResult string // good, failed, blocked
	KickDistance     int
	KickerPlayerID   string

	Interception bool
	FumbleLost   bool
	Sack         bool
	Safety       bool

	DefensiveExtraPointConv bool
	DefensiveTwoPointConv   bool

	PuntAttempt     bool
	KickoffAttempt  bool
	ReturnTeam      string
	ReturnYards     int
	ReturnTouchdown bool
	LateralReturn   bool
}

// PlayerWeek is one player's aggregate line for one week.
type PlayerWeek struct {
	PlayerID string
	Name     string
	Position string
	Team     string
	Season   int
	Week     int

	PassingYards   int
	RushingYards   int
	ReceivingYards int

	Passing2pt   int
	Rushing2pt   int
	Receiving2pt int
}

// RosterRow is one player's season roster line as published by the source.
type RosterRow struct {
	PlayerID string
	Name     string
	Position string
	Team     string
	Season   int
}

// Source supplies a season of raw input.
type Source interface {
	Plays(ctx context.Context, year int) ([]Play, error)
	PlayerWeeks(ctx context.Context, year int) ([]PlayerWeek, error)
	Roster(ctx context.Context, year int) ([]RosterRow, error)
}

// Season holds every table for one year, loaded once and sliced per week.
type Season struct {
	Year        int
	Plays       []Play
	PlayerWeeks []PlayerWeek
	Roster      []RosterRow
}

// LoadSeason fetches the three tables for year concurrently.
func LoadSeason(ctx context.Context, src Source, year int) (*Season, error) {
	s := &Season{Year: year}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		plays, err := src.Plays(ctx, year)
		if err != nil {
			return fmt.Errorf("plays %d: %w", year, err)
		}
		s.Plays = plays
		return nil
	})
	g.Go(func() error {
		rows, err := src.PlayerWeeks(ctx, year)
		if err != nil {
			return fmt.Errorf("player weeks %d: %w", year, err)
		}
		s.PlayerWeeks = rows
		return nil
	})
	g.Go(func() error {
		rows, err := src.Roster(ctx, year)
		if err != nil {
			return fmt.Errorf("roster %d: %w", year, err)
		}
		s.Roster = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s, nil
}

// PlaysForWeek returns the plays of one week of this season.
func (s *Season) PlaysForWeek(week int) []Play {
	var out []Play
	for _, p := range s.Plays {
		if p.Season == s.Year && p.Week == week {
			out = append(out, p)
		}
	}
	return out
}

// PlayerWeeksForWeek returns the player lines of one week of this season.
func (s *Season) PlayerWeeksForWeek(week int) []PlayerWeek {
	var out []PlayerWeek
	for _, r := range s.PlayerWeeks {
		if r.Season == s.Year && r.Week == week {
			out = append(out, r)
		}
	}
	return out
}

// Weeks returns the distinct weeks with plays, ascending.
func (s *Season) Weeks() []int {
	seen := make(map[int]bool)
	var out []int
	for _, p := range s.Plays {
		if p.Season == s.Year && !seen[p.Week] {
			seen[p.Week] = true
			out = append(out, p.Week)
		}
	}
	sort.Ints(out)
	return out
}
