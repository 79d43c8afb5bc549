package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractInt(t *testing.T) {
	tests := []struct {
		cell string
		want int
		ok   bool
	}{
		{"12", 12, true},
		{"12.0", 12, true},
		{" -3 ", -3, true},
		{"NA", 0, true},
		{"", 0, true},
		{"7.6", 8, true},
		{"twelve", 0, false},
		{"NaN", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			got, ok := ExtractInt(tt.cell)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractBool(t *testing.T) {
	tests := []struct {
		cell string
		want bool
		ok   bool
	}{
		{"1", true, true},
		{"1.0", true, true},
		{"TRUE", true, true},
		{"0", false, true},
		{"0.0", false, true},
		{"NA", false, true},
		{"", false, true},
		{"yes", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			got, ok := ExtractBool(tt.cell)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractString(t *testing.T) {
	assert.Equal(t, "", ExtractString("NA"))
	assert.Equal(t, "KC", ExtractString(" KC "))
}

func TestSeason_WeekFiltering(t *testing.T) {
	s := &Season{
		Year: 2023,
		Plays: []Play{
			{GameID: "a", PlayID: 1, Season: 2023, Week: 2},
			{GameID: "b", PlayID: 1, Season: 2023, Week: 1},
			{GameID: "c", PlayID: 1, Season: 2022, Week: 1},
			{GameID: "b", PlayID: 2, Season: 2023, Week: 1},
		},
		PlayerWeeks: []PlayerWeek{
			{PlayerID: "x", Season: 2023, Week: 1},
			{PlayerID: "y", Season: 2023, Week: 2},
		},
	}

	plays := s.PlaysForWeek(1)
	require.Len(t, plays, 2)
	for _, p := range plays {
		assert.Equal(t, "b", p.GameID)
	}
	rows := s.PlayerWeeksForWeek(2)
	require.Len(t, rows, 1)
	assert.Equal(t, "y", rows[0].PlayerID)
	assert.Equal(t, []int{1, 2}, s.Weeks())
}

type stubSource struct {
	failRoster bool
}

func (s stubSource) Plays(_ context.Context, year int) ([]Play, error) {
	return []Play{{Season: year, Week: 1}}, nil
}

func (s stubSource) PlayerWeeks(_ context.Context, year int) ([]PlayerWeek, error) {
	return []PlayerWeek{{Season: year, Week: 1}}, nil
}

func (s stubSource) Roster(_ context.Context, year int) ([]RosterRow, error) {
	if s.failRoster {
		return nil, errors.New("boom")
	}
	return []RosterRow{{Season: year, PlayerID: "x"}}, nil
}

func TestLoadSeason(t *testing.T) {
	s, err := LoadSeason(context.Background(), stubSource{}, 2023)
	require.NoError(t, err)
	assert.Equal(t, 2023, s.Year)
	assert.Len(t, s.Plays, 1)
	assert.Len(t, s.PlayerWeeks, 1)
	assert.Len(t, s.Roster, 1)

	_, err = LoadSeason(context.Background(), stubSource{failRoster: true}, 2023)
	assert.ErrorContains(t, err, "roster 2023")
}
