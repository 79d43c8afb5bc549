package scoring

import (
	"context"

	"github.com/albapepper/scoracle-fantasy/internal/provider"
	"github.com/albapepper/scoracle-fantasy/internal/roster"
	"github.com/albapepper/scoracle-fantasy/internal/stats"
	"github.com/albapepper/scoracle-fantasy/internal/store"
)

// TouchdownPoints returns the distance tier points, doubled when the scorer
// is not at one of the expected positions. An unknown position never matches.
func TouchdownPoints(yards int, pos roster.Position, expected ...roster.Position) int {
	pts := touchdownTiers.Points(yards)
	for _, e := range expected {
		if pos == e {
			return pts
		}
	}
	return 2 * pts
}

// ScoreTouchdowns credits passing and rushing touchdowns of the week. Return
// and recovery touchdowns belong to the defense rule and are ignored here.
func ScoreTouchdowns(ctx context.Context, s store.Store, year, week int, plays []provider.Play) (Tally, error) {
	tally := Tally{Rule: RuleTouchdowns}
	w := newWriter(s, year, week, &tally)

	for _, p := range plays {
		if p.Season != year || p.Week != week || !p.Touchdown {
			continue
		}

		switch {
		case p.PassTouchdown:
			tally.Rows++
			passerPos, err := position(ctx, s, p.PasserPlayerID)
			if err != nil {
				return tally, err
			}
			receiverPos, err := position(ctx, s, p.TDPlayerID)
			if err != nil {
				return tally, err
			}

			if err := w.player(ctx, p.PasserPlayerID, stats.Delta{
				stats.Points:  TouchdownPoints(p.YardsGained, passerPos, roster.QB),
				stats.PassTds: 1,
			}); err != nil {
				return tally, err
			}
			if err := w.player(ctx, p.TDPlayerID, stats.Delta{
				stats.Points: TouchdownPoints(p.YardsGained, receiverPos, roster.WR, roster.TE),
				stats.RecTds: 1,
			}); err != nil {
				return tally, err
			}

		case p.RushTouchdown:
			tally.Rows++
			pos, err := position(ctx, s, p.TDPlayerID)
			if err != nil {
				return tally, err
			}
			if err := w.player(ctx, p.TDPlayerID, stats.Delta{
				stats.Points:  TouchdownPoints(p.YardsGained, pos, roster.RB),
				stats.RushTds: 1,
			}); err != nil {
				return tally, err
			}
		}
	}
	return tally, nil
}
