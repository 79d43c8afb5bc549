package scoring

import (
	"context"

	"github.com/albapepper/scoracle-fantasy/internal/provider"
	"github.com/albapepper/scoracle-fantasy/internal/stats"
	"github.com/albapepper/scoracle-fantasy/internal/store"
)

// YardagePoints scores one player's weekly yardage line.
func YardagePoints(passYds, rushYds, recYds, twoPtConvs int) int {
	pts := passingYardTiers.Points(passYds) +
		rushRecYardTiers.Points(rushYds) +
		rushRecYardTiers.Points(recYds)

	if rushYds >= combinedYardMinEach && recYds >= combinedYardMinEach &&
		rushYds+recYds >= combinedYardMinSum {
		pts += combinedYardBonus
	}
	return pts + twoPointConvPoints*twoPtConvs
}

// ScoreYardage writes each player's baseline record for the week: points from
// yardage and conversions, the three yardage totals, and every other field
// reset to zero. Running it twice leaves the same records.
func ScoreYardage(ctx context.Context, s store.Store, year, week int, rows []provider.PlayerWeek) (Tally, error) {
	tally := Tally{Rule: RuleYardage}
	w := newWriter(s, year, week, &tally)

	for _, r := range rows {
		if r.Season != year || r.Week != week {
			continue
		}
		tally.Rows++

		convs := r.Passing2pt + r.Rushing2pt + r.Receiving2pt
		rec := stats.Zero(stats.KindPlayer)
		rec[stats.Points] = YardagePoints(r.PassingYards, r.RushingYards, r.ReceivingYards, convs)
		rec[stats.PassYards] = r.PassingYards
		rec[stats.RushYards] = r.RushingYards
		rec[stats.RecYards] = r.ReceivingYards
		rec[stats.TwoPointConvs] = convs

		if err := w.setPlayer(ctx, r.PlayerID, rec); err != nil {
			return tally, err
		}
	}
	return tally, nil
}
