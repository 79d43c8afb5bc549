package scoring

import (
	"context"
	"sort"

	"github.com/albapepper/scoracle-fantasy/internal/provider"
	"github.com/albapepper/scoracle-fantasy/internal/stats"
	"github.com/albapepper/scoracle-fantasy/internal/store"
)

// PointsAllowedPoints scores a defense by the opponent's final score.
func PointsAllowedPoints(opponentScore int) int {
	return pointsAllowedTiers.Points(opponentScore)
}

// ReturnYardPoints scores a team's accumulated punt and kickoff return yards.
func ReturnYardPoints(yards int) int {
	return returnYardTiers.Points(yards)
}

// ScoreDefense scores team defense and special teams for the week in two passes.
//
// Pass 1 walks every play once per category: defensive touchdowns, turnovers,
// sacks, safeties, returned conversions, and return yardage. Pass 2 takes the
// last play of each game for the final score, merges the points-allowed bonus
// and then the return-yardage bonus, which reads the record pass 1 built.
func ScoreDefense(ctx context.Context, s store.Store, year, week int, plays []provider.Play) (Tally, error) {
	tally := Tally{Rule: RuleDefense}
	w := newWriter(s, year, week, &tally)

	var inWeek []provider.Play
	for _, p := range plays {
		if p.Season == year && p.Week == week {
			inWeek = append(inWeek, p)
		}
	}
	tally.Rows = len(inWeek)

	for _, c := range defenseCategories {
		for _, p := range inWeek {
			team, delta := c(p)
			if delta == nil {
				continue
			}
			if err := w.defense(ctx, team, delta); err != nil {
				return tally, err
			}
		}
	}

	for _, p := range finalPlays(inWeek) {
		sides := []struct {
			team     string
			opponent int
		}{
			{p.HomeTeam, p.AwayScore},
			{p.AwayTeam, p.HomeScore},
		}
		for _, side := range sides {
			if side.team == "" {
				continue
			}
			if err := w.defense(ctx, side.team, stats.Delta{
				stats.Points:        PointsAllowedPoints(side.opponent),
				stats.PointsAllowed: side.opponent,
			}); err != nil {
				return tally, err
			}

			rec, err := w.getDefense(ctx, side.team)
			if err != nil {
				return tally, err
			}
			if bonus := ReturnYardPoints(rec[stats.ReturnYards]); bonus > 0 {
				if err := w.defense(ctx, side.team, stats.Delta{stats.Points: bonus}); err != nil {
					return tally, err
				}
			}
		}
	}
	return tally, nil
}

// category extracts one kind of defensive credit from a play. A nil delta
// means the play does not qualify.
type category func(p provider.Play) (team string, delta stats.Delta)

var defenseCategories = []category{
	defensiveTouchdown,
	turnover,
	sack,
	safety,
	returnedConversion,
	returnYardage,
}

// defensiveTouchdown credits a touchdown scored by the team on defense, or a
// kickoff returned for a score, where the receiving team is listed as posteam.
func defensiveTouchdown(p provider.Play) (string, stats.Delta) {
	if p.TDTeam == "" {
		return "", nil
	}
	kickReturn := p.KickoffAttempt && p.ReturnTouchdown && p.TDTeam == p.ReturnTeam
	if p.TDTeam != p.DefTeam && !kickReturn {
		return "", nil
	}
	return p.TDTeam, stats.Delta{stats.Points: defenseTDPoints, stats.Touchdowns: 1}
}

// turnover credits interceptions and lost fumbles to defteam. On punts and
// kickoffs defteam is the receiving team, so a muffed kick counts for the
// return unit, never for the kicking team that recovered it.
func turnover(p provider.Play) (string, stats.Delta) {
	if !p.Interception && !p.FumbleLost {
		return "", nil
	}
	return p.DefTeam, stats.Delta{stats.Points: turnoverPoints, stats.Turnovers: 1}
}

func sack(p provider.Play) (string, stats.Delta) {
	if !p.Sack {
		return "", nil
	}
	return p.DefTeam, stats.Delta{stats.Points: sackPoints, stats.Sacks: 1}
}

func safety(p provider.Play) (string, stats.Delta) {
	if !p.Safety {
		return "", nil
	}
	return p.DefTeam, stats.Delta{stats.Points: safetyPoints, stats.Safeties: 1}
}

// returnedConversion credits a blocked or turned-over try returned for two.
func returnedConversion(p provider.Play) (string, stats.Delta) {
	if !p.DefensiveExtraPointConv && !p.DefensiveTwoPointConv {
		return "", nil
	}
	return p.DefTeam, stats.Delta{stats.Points: returnedConvPoints, stats.Returned2Pts: 1}
}

// returnYardage accumulates punt and kickoff return yards. Plays without a
// returner (touchbacks, fair catches) carry no return team and are skipped.
func returnYardage(p provider.Play) (string, stats.Delta) {
	if (!p.PuntAttempt && !p.KickoffAttempt) || p.ReturnTeam == "" {
		return "", nil
	}
	yards := p.ReturnYards
	if p.LateralReturn {
		if n, ok := LateralReturnYards(p.Desc); ok {
			yards = n
		}
	}
	return p.ReturnTeam, stats.Delta{stats.ReturnYards: yards}
}

// finalPlays returns the last play of each game by play id, ordered by game id.
func finalPlays(plays []provider.Play) []provider.Play {
	last := make(map[string]provider.Play)
	for _, p := range plays {
		if p.GameID == "" {
			continue
		}
		if cur, ok := last[p.GameID]; !ok || p.PlayID > cur.PlayID {
			last[p.GameID] = p
		}
	}
	out := make([]provider.Play, 0, len(last))
	for _, p := range last {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameID < out[j].GameID })
	return out
}
