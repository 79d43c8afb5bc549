package nflverse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/albapepper/scoracle-fantasy/internal/provider"
)

// Column sets each table must carry.
var (
	playColumns = []string{
		"game_id", "play_id", "season", "week", "desc",
		"posteam", "defteam", "home_team", "away_team", "home_score", "away_score",
		"yards_gained", "touchdown", "pass_touchdown", "rush_touchdown",
		"td_team", "td_player_id", "passer_player_id",
		"field_goal_result", "extra_point_result", "kick_distance", "kicker_player_id",
		"interception", "fumble_lost", "sack", "safety",
		"defensive_extra_point_conv", "defensive_two_point_conv",
		"punt_attempt", "kickoff_attempt", "return_team", "return_yards", "return_touchdown",
	}
	playerWeekColumns = []string{
		"player_id", "position", "season", "week",
		"passing_yards", "rushing_yards", "receiving_yards",
		"passing_2pt_conversions", "rushing_2pt_conversions", "receiving_2pt_conversions",
	}
	rosterColumns = []string{"gsis_id", "full_name", "position", "team", "season"}
)

// table reads a CSV with a header row, addressing cells by column name.
type table struct {
	name string
	r    *csv.Reader
	cols map[string]int
	line int
}

func openTable(name string, r io.Reader, required []string) (*table, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[h] = i
	}
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%s: %q: %w", name, c, provider.ErrMissingColumn)
		}
	}
	return &table{name: name, r: cr, cols: cols, line: 1}, nil
}

// each calls fn for every data row until EOF.
func (t *table) each(fn func(*row) error) error {
	for {
		cells, err := t.r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		t.line++
		if err != nil {
			return fmt.Errorf("%s line %d: %w", t.name, t.line, err)
		}
		rw := &row{t: t, cells: cells}
		if err := fn(rw); err != nil {
			return err
		}
		if rw.err != nil {
			return fmt.Errorf("%s line %d: %w", t.name, t.line, rw.err)
		}
	}
}

// row is one data row. The first malformed cell is kept in err.
type row struct {
	t     *table
	cells []string
	err   error
}

func (r *row) cell(col string) string {
	i, ok := r.t.cols[col]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

func (r *row) str(col string) string {
	return provider.ExtractString(r.cell(col))
}

// first returns the first non-empty of several alternative columns.
func (r *row) first(cols ...string) string {
	for _, c := range cols {
		if v := r.str(c); v != "" {
			return v
		}
	}
	return ""
}

func (r *row) num(col string) int {
	n, ok := provider.ExtractInt(r.cell(col))
	if !ok && r.err == nil {
		r.err = fmt.Errorf("column %q: bad integer %q", col, r.cell(col))
	}
	return n
}

func (r *row) flag(col string) bool {
	b, ok := provider.ExtractBool(r.cell(col))
	if !ok && r.err == nil {
		r.err = fmt.Errorf("column %q: bad flag %q", col, r.cell(col))
	}
	return b
}

// DecodePlays reads a play-by-play table.
func DecodePlays(r io.Reader) ([]provider.Play, error) {
	t, err := openTable("play_by_play", r, playColumns)
	if err != nil {
		return nil, err
	}
	var plays []provider.Play
	err = t.each(func(rw *row) error {
		plays = append(plays, provider.Play{
			GameID:    rw.str("game_id"),
			PlayID:    rw.num("play_id"),
			Season:    rw.num("season"),
			Week:      rw.num("week"),
			Desc:      rw.str("desc"),
			PosTeam:   rw.str("posteam"),
			DefTeam:   rw.str("defteam"),
			HomeTeam:  rw.str("home_team"),
			AwayTeam:  rw.str("away_team"),
			HomeScore: rw.num("home_score"),
			AwayScore: rw.num("away_score"),

			YardsGained:    rw.num("yards_gained"),
			Touchdown:      rw.flag("touchdown"),
			PassTouchdown:  rw.flag("pass_touchdown"),
			RushTouchdown:  rw.flag("rush_touchdown"),
			TDTeam:         rw.str("td_team"),
			TDPlayerID:     rw.str("td_player_id"),
			PasserPlayerID: rw.str("passer_player_id"),

			FieldGoalResult:  rw.str("field_goal_result"),
			ExtraPointResult: rw.str("extra_point_result"),
			KickDistance:     rw.num("kick_distance"),
			KickerPlayerID:   rw.str("kicker_player_id"),

			Interception: rw.flag("interception"),
			FumbleLost:   rw.flag("fumble_lost"),
			Sack:         rw.flag("sack"),
			Safety:       rw.flag("safety"),

			DefensiveExtraPointConv: rw.flag("defensive_extra_point_conv"),
			DefensiveTwoPointConv:   rw.flag("defensive_two_point_conv"),

			PuntAttempt:     rw.flag("punt_attempt"),
			KickoffAttempt:  rw.flag("kickoff_attempt"),
			ReturnTeam:      rw.str("return_team"),
			ReturnYards:     rw.num("return_yards"),
			ReturnTouchdown: rw.flag("return_touchdown"),
			LateralReturn:   rw.flag("lateral_return"),
		})
		return nil
	})
	return plays, err
}

// DecodePlayerWeeks reads a weekly player stats table.
func DecodePlayerWeeks(r io.Reader) ([]provider.PlayerWeek, error) {
	t, err := openTable("player_stats", r, playerWeekColumns)
	if err != nil {
		return nil, err
	}
	var rows []provider.PlayerWeek
	err = t.each(func(rw *row) error {
		rows = append(rows, provider.PlayerWeek{
			PlayerID: rw.str("player_id"),
			Name:     rw.first("player_display_name", "player_name"),
			Position: rw.str("position"),
			Team:     rw.first("recent_team", "team"),
			Season:   rw.num("season"),
			Week:     rw.num("week"),

			PassingYards:   rw.num("passing_yards"),
			RushingYards:   rw.num("rushing_yards"),
			ReceivingYards: rw.num("receiving_yards"),

			Passing2pt:   rw.num("passing_2pt_conversions"),
			Rushing2pt:   rw.num("rushing_2pt_conversions"),
			Receiving2pt: rw.num("receiving_2pt_conversions"),
		})
		return nil
	})
	return rows, err
}

// DecodeRoster reads a season roster table.
func DecodeRoster(r io.Reader) ([]provider.RosterRow, error) {
	t, err := openTable("roster", r, rosterColumns)
	if err != nil {
		return nil, err
	}
	var rows []provider.RosterRow
	err = t.each(func(rw *row) error {
		rows = append(rows, provider.RosterRow{
			PlayerID: rw.str("gsis_id"),
			Name:     rw.str("full_name"),
			Position: rw.str("position"),
			Team:     rw.str("team"),
			Season:   rw.num("season"),
		})
		return nil
	})
	return rows, err
}
