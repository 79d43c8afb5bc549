package roster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLookup map[string]Entry

func (m mapLookup) Roster(_ context.Context, id string) (Entry, bool, error) {
	e, ok := m[id]
	return e, ok, nil
}

type failingLookup struct{}

func (failingLookup) Roster(context.Context, string) (Entry, bool, error) {
	return Entry{}, false, errors.New("backend down")
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		raw  string
		want Position
		ok   bool
	}{
		{"QB", QB, true},
		{" wr ", WR, true},
		{"K", K, true},
		{"P", "", false},
		{"LB", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParsePosition(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPositionOf(t *testing.T) {
	ctx := context.Background()
	l := mapLookup{"00-1": {ID: "00-1", Position: QB}}

	pos, err := PositionOf(ctx, l, "00-1")
	require.NoError(t, err)
	assert.Equal(t, QB, pos)

	pos, err = PositionOf(ctx, l, "unknown")
	require.NoError(t, err)
	assert.Equal(t, Position(""), pos, "unknown players have no position")

	pos, err = PositionOf(ctx, l, "")
	require.NoError(t, err)
	assert.Equal(t, Position(""), pos)

	_, err = PositionOf(ctx, failingLookup{}, "00-1")
	assert.Error(t, err)
}
