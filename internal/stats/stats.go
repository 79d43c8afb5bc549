// Package stats defines the per-entity, per-week stat records the scoring rules
// write, and the merge semantics every store applies to them.
//
// A record is a flat map of field → integer. Each field is either accumulating
// (a merge adds the delta) or replacing (a merge overwrites with the delta).
package stats

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when a delta names a field the entity kind does not carry.
var ErrUnknownField = errors.New("unknown stat field")

// Field is a stat key as it appears in snapshots and remote documents.
type Field string

// Player fields.
const (
	Points        Field = "points"
	PassYards     Field = "passYards"
	RushYards     Field = "rushYards"
	RecYards      Field = "recYards"
	PassTds       Field = "passTds"
	RushTds       Field = "rushTds"
	RecTds        Field = "recTds"
	FGM           Field = "fgm"
	EPM           Field = "epm"
	TwoPointConvs Field = "2pConvs"
)

// Defense fields. Points is shared with players.
const (
	Touchdowns    Field = "touchdowns"
	Turnovers     Field = "turnovers"
	Sacks         Field = "sacks"
	Safeties      Field = "safeties"
	Returned2Pts  Field = "returned2pts"
	ReturnYards   Field = "returnYards"
	PointsAllowed Field = "pointsAllowed"
)

// Kind distinguishes player records from team defense records.
type Kind string

const (
	KindPlayer  Kind = "player"
	KindDefense Kind = "defense"
)

var playerFields = []Field{
	Points, PassYards, RushYards, RecYards,
	PassTds, RushTds, RecTds, FGM, EPM, TwoPointConvs,
}

var defenseFields = []Field{
	Points, Touchdowns, Turnovers, Sacks,
	Safeties, Returned2Pts, ReturnYards, PointsAllowed,
}

// replacing fields are derived once per week from a single authoritative value.
var replacing = map[Field]bool{
	PassYards:     true,
	RushYards:     true,
	RecYards:      true,
	TwoPointConvs: true,
	PointsAllowed: true,
}

// Fields returns the fields a record of this kind carries, in display order.
func (k Kind) Fields() []Field {
	switch k {
	case KindPlayer:
		return playerFields
	case KindDefense:
		return defenseFields
	default:
		return nil
	}
}

// Has reports whether f belongs to records of kind k.
func (k Kind) Has(f Field) bool {
	for _, kf := range k.Fields() {
		if kf == f {
			return true
		}
	}
	return false
}

// Valid reports whether k is a known entity kind.
func (k Kind) Valid() bool {
	return k == KindPlayer || k == KindDefense
}

// Replacing reports whether a merge overwrites f instead of adding to it.
func (f Field) Replacing() bool {
	return replacing[f]
}

// Record is one entity-week stat snapshot.
type Record map[Field]int

// Delta is a partial update applied to a Record by Merge.
type Delta map[Field]int

// Zero returns an all-zero record for kind k.
func Zero(k Kind) Record {
	r := make(Record, len(k.Fields()))
	for _, f := range k.Fields() {
		r[f] = 0
	}
	return r
}

// Normalize returns a copy of r holding exactly the fields of kind k;
// missing fields read as zero and foreign fields are dropped.
func Normalize(k Kind, r Record) Record {
	out := Zero(k)
	for _, f := range k.Fields() {
		out[f] = r[f]
	}
	return out
}

// Clone returns an independent copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for f, v := range r {
		out[f] = v
	}
	return out
}

// Validate checks that every field of d belongs to kind k.
func (d Delta) Validate(k Kind) error {
	for f := range d {
		if !k.Has(f) {
			return fmt.Errorf("%s field %q: %w", k, f, ErrUnknownField)
		}
	}
	return nil
}

// Merge applies d to a copy of r: accumulating fields add, replacing fields
// overwrite, and fields not named in d are left as they were.
func Merge(k Kind, r Record, d Delta) (Record, error) {
	if err := d.Validate(k); err != nil {
		return nil, err
	}
	out := Normalize(k, r)
	for f, v := range d {
		if f.Replacing() {
			out[f] = v
		} else {
			out[f] += v
		}
	}
	return out, nil
}
