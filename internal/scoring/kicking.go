package scoring

import (
	"context"

	"github.com/albapepper/scoracle-fantasy/internal/provider"
	"github.com/albapepper/scoracle-fantasy/internal/stats"
	"github.com/albapepper/scoracle-fantasy/internal/store"
)

// Kick results as published in the play-by-play.
const (
	fieldGoalMade  = "made"
	extraPointGood = "good"
)

// FieldGoalPoints scores a made field goal by distance.
func FieldGoalPoints(distance int) int {
	return fieldGoalTiers.Points(distance)
}

// ScoreKicking credits made field goals and good extra points. A play is one
// or the other; misses and blocks score nothing.
func ScoreKicking(ctx context.Context, s store.Store, year, week int, plays []provider.Play) (Tally, error) {
	tally := Tally{Rule: RuleKicking}
	w := newWriter(s, year, week, &tally)

	for _, p := range plays {
		if p.Season != year || p.Week != week {
			continue
		}

		var delta stats.Delta
		switch {
		case p.FieldGoalResult == fieldGoalMade:
			delta = stats.Delta{stats.Points: FieldGoalPoints(p.KickDistance), stats.FGM: 1}
		case p.ExtraPointResult == extraPointGood:
			delta = stats.Delta{stats.Points: extraPointPoints, stats.EPM: 1}
		default:
			continue
		}

		tally.Rows++
		if err := w.player(ctx, p.KickerPlayerID, delta); err != nil {
			return tally, err
		}
	}
	return tally, nil
}
