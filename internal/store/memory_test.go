package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-fantasy/internal/roster"
	"github.com/albapepper/scoracle-fantasy/internal/stats"
)

func rostered(t *testing.T, m *Memory, id string, pos roster.Position) {
	t.Helper()
	require.NoError(t, m.PutRoster(context.Background(), roster.Entry{ID: id, Name: id, Position: pos, Team: "KC"}))
}

func TestMemory_GetAbsentIsZero(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	rec, err := m.Get(ctx, PlayerKey("00-1", 2023, 1))
	require.NoError(t, err)
	assert.Equal(t, stats.Zero(stats.KindPlayer), rec)

	rec, err = m.Get(ctx, DefenseKey("KC", 2023, 1))
	require.NoError(t, err)
	assert.Equal(t, stats.Zero(stats.KindDefense), rec)
}

func TestMemory_RosterGate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	key := PlayerKey("ghost", 2023, 1)
	require.NoError(t, m.Merge(ctx, key, stats.Delta{stats.Points: 6}))
	require.NoError(t, m.Set(ctx, key, stats.Record{stats.Points: 9}))

	rec, err := m.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 0, rec[stats.Points])

	players, rostered, _ := m.Counts()
	assert.Zero(t, players)
	assert.Zero(t, rostered)
}

func TestMemory_MergeSemantics(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	rostered(t, m, "00-1", roster.RB)
	key := PlayerKey("00-1", 2023, 4)

	require.NoError(t, m.Merge(ctx, key, stats.Delta{stats.Points: 6, stats.RushYards: 80}))
	require.NoError(t, m.Merge(ctx, key, stats.Delta{stats.Points: 9, stats.RushYards: 110, stats.RushTds: 1}))

	rec, err := m.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 15, rec[stats.Points])
	assert.Equal(t, 110, rec[stats.RushYards])
	assert.Equal(t, 1, rec[stats.RushTds])
}

func TestMemory_DefenseCreatedLazily(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	key := DefenseKey("BUF", 2023, 2)

	require.NoError(t, m.Merge(ctx, key, stats.Delta{stats.Sacks: 1, stats.Points: 1}))
	require.NoError(t, m.Merge(ctx, key, stats.Delta{stats.PointsAllowed: 17}))
	require.NoError(t, m.Merge(ctx, key, stats.Delta{stats.PointsAllowed: 10}))

	rec, err := m.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, rec[stats.Sacks])
	assert.Equal(t, 10, rec[stats.PointsAllowed])
}

func TestMemory_RejectsForeignField(t *testing.T) {
	m := NewMemory()
	err := m.Merge(context.Background(), DefenseKey("BUF", 2023, 2), stats.Delta{stats.PassYards: 300})
	assert.ErrorIs(t, err, stats.ErrUnknownField)
}

func TestMemory_RejectsEmptyID(t *testing.T) {
	m := NewMemory()
	_, err := m.Get(context.Background(), DefenseKey("", 2023, 2))
	assert.Error(t, err)
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	key := DefenseKey("BUF", 2023, 2)
	require.NoError(t, m.Merge(ctx, key, stats.Delta{stats.Sacks: 2}))

	rec, err := m.Get(ctx, key)
	require.NoError(t, err)
	rec[stats.Sacks] = 99

	rec, err = m.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, rec[stats.Sacks])
}

func TestMemory_ClearWeek(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	rostered(t, m, "00-1", roster.QB)

	for _, week := range []int{1, 2} {
		require.NoError(t, m.Merge(ctx, PlayerKey("00-1", 2023, week), stats.Delta{stats.Points: 3}))
		require.NoError(t, m.Merge(ctx, DefenseKey("KC", 2023, week), stats.Delta{stats.Points: 1}))
		require.NoError(t, m.MarkApplied(ctx, Application{Rule: "yardage", Year: 2023, Week: week}))
	}

	require.NoError(t, m.ClearWeek(ctx, 2023, 1))

	rec, _ := m.Get(ctx, PlayerKey("00-1", 2023, 1))
	assert.Zero(t, rec[stats.Points])
	rec, _ = m.Get(ctx, DefenseKey("KC", 2023, 1))
	assert.Zero(t, rec[stats.Points])
	ok, _ := m.Applied(ctx, Application{Rule: "yardage", Year: 2023, Week: 1})
	assert.False(t, ok)

	rec, _ = m.Get(ctx, PlayerKey("00-1", 2023, 2))
	assert.Equal(t, 3, rec[stats.Points])
	ok, _ = m.Applied(ctx, Application{Rule: "yardage", Year: 2023, Week: 2})
	assert.True(t, ok)

	_, found, _ := m.Roster(ctx, "00-1")
	assert.True(t, found, "roster survives a week clear")
}

func TestMemory_PlayerDocument(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.PlayerDocument(ctx, "00-1")
	require.NoError(t, err)
	assert.False(t, ok)

	rostered(t, m, "00-1", roster.WR)
	require.NoError(t, m.Merge(ctx, PlayerKey("00-1", 2023, 3), stats.Delta{stats.RecYards: 120, stats.Points: 9}))

	doc, ok, err := m.PlayerDocument(ctx, "00-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, roster.WR, doc.Roster.Position)
	assert.Equal(t, 120, doc.Scoring[2023][3][stats.RecYards])
}

func TestMemory_Clear(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	rostered(t, m, "00-1", roster.K)
	require.NoError(t, m.Merge(ctx, DefenseKey("KC", 2023, 1), stats.Delta{stats.Points: 1}))

	require.NoError(t, m.Merge(ctx, PlayerKey("00-1", 2023, 1), stats.Delta{stats.Points: 3}))
	require.NoError(t, m.MarkApplied(ctx, Application{Rule: "kicking", Year: 2023, Week: 1}))

	m.Clear()

	players, rosteredCount, defenses := m.Counts()
	assert.Equal(t, 1, players)
	assert.Equal(t, 1, rosteredCount)
	assert.Zero(t, defenses)

	rec, err := m.Get(ctx, PlayerKey("00-1", 2023, 1))
	require.NoError(t, err)
	assert.Zero(t, rec[stats.Points])
	ok, _ := m.Applied(ctx, Application{Rule: "kicking", Year: 2023, Week: 1})
	assert.False(t, ok)

	// The roster gate still lets writes through after a clear.
	require.NoError(t, m.Merge(ctx, PlayerKey("00-1", 2023, 2), stats.Delta{stats.Points: 4}))
	rec, _ = m.Get(ctx, PlayerKey("00-1", 2023, 2))
	assert.Equal(t, 4, rec[stats.Points])
}
