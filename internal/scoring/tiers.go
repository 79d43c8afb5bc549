// Package scoring maps a week of raw rows to stat deltas and applies them to a
// store, one rule at a time.
//
// Every rule is scoped to a single (year, week). Rules run in a fixed order
// because later ones read state earlier ones wrote: yardage lays down each
// player's baseline, touchdowns and kicking accumulate onto it, and the
// defense rule's end-of-game pass reads the return yardage its first pass
// accumulated.
package scoring

import "math"

// Tier maps a closed range [Min, Max] to a point value.
type Tier struct {
	Min, Max int
	Points   int
}

// Tiers is evaluated in order; the first matching tier wins.
type Tiers []Tier

// Points returns the points of the first tier containing v, or 0.
func (ts Tiers) Points(v int) int {
	for _, t := range ts {
		if v >= t.Min && v <= t.Max {
			return t.Points
		}
	}
	return 0
}

const (
	noMin = math.MinInt
	noMax = math.MaxInt
)

var passingYardTiers = Tiers{
	{200, 299, 6},
	{300, 399, 9},
	{400, 499, 12},
	{500, noMax, 15},
}

// 150 sits in both the fourth and fifth rows; the fourth wins.
var rushRecYardTiers = Tiers{
	{50, 74, 3},
	{75, 99, 6},
	{100, 124, 9},
	{125, 150, 12},
	{150, 199, 15},
	{200, noMax, 18},
}

var touchdownTiers = Tiers{
	{noMin, 9, 6},
	{10, 39, 9},
	{40, 69, 12},
	{70, noMax, 15},
}

var fieldGoalTiers = Tiers{
	{noMin, 39, 3},
	{40, 49, 5},
	{50, 59, 10},
	{60, 65, 15},
	{66, noMax, 20},
}

// Keyed on the opponent's final score.
var pointsAllowedTiers = Tiers{
	{0, 0, 12},
	{1, 3, 9},
	{4, 6, 6},
	{7, 10, 3},
}

var returnYardTiers = Tiers{
	{75, 99, 3},
	{100, 149, 6},
	{150, noMax, 9},
}

const (
	combinedYardBonus   = 6
	combinedYardMinEach = 20
	combinedYardMinSum  = 150

	twoPointConvPoints = 2
	extraPointPoints   = 1

	defenseTDPoints    = 10
	turnoverPoints     = 2
	sackPoints         = 1
	safetyPoints       = 12
	returnedConvPoints = 12
)
