package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-fantasy/internal/roster"
	"github.com/albapepper/scoracle-fantasy/internal/stats"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	m := NewMemory()
	rostered(t, m, "00-1", roster.TE)
	require.NoError(t, m.Merge(ctx, PlayerKey("00-1", 2023, 5), stats.Delta{stats.RecYards: 88, stats.Points: 6}))
	require.NoError(t, m.Merge(ctx, DefenseKey("SF", 2023, 5), stats.Delta{stats.Turnovers: 2, stats.Points: 4}))
	require.NoError(t, m.MarkApplied(ctx, Application{Rule: "defense", Year: 2023, Week: 5}))
	require.NoError(t, m.SaveTo(dir))

	for _, name := range []string{PlayersFile, DefenseFile, LedgerFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	loaded := NewMemory()
	require.NoError(t, loaded.LoadFrom(dir))

	e, ok, err := loaded.Roster(ctx, "00-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, roster.TE, e.Position)
	assert.Equal(t, "00-1", e.ID)

	rec, err := loaded.Get(ctx, PlayerKey("00-1", 2023, 5))
	require.NoError(t, err)
	assert.Equal(t, 88, rec[stats.RecYards])
	assert.Equal(t, 6, rec[stats.Points])

	rec, err = loaded.Get(ctx, DefenseKey("SF", 2023, 5))
	require.NoError(t, err)
	assert.Equal(t, 2, rec[stats.Turnovers])

	applied, err := loaded.Applied(ctx, Application{Rule: "defense", Year: 2023, Week: 5})
	require.NoError(t, err)
	assert.True(t, applied)

	assert.Equal(t, m.Snapshot(), loaded.Snapshot())
}

func TestSnapshot_LoadEmptyDir(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.LoadFrom(t.TempDir()))

	players, _, defenses := m.Counts()
	assert.Zero(t, players)
	assert.Zero(t, defenses)
}

func TestSnapshot_FileLayout(t *testing.T) {
	dir := t.TempDir()
	m := NewMemory()
	require.NoError(t, m.Merge(context.Background(), DefenseKey("SF", 2023, 5), stats.Delta{stats.Sacks: 3}))
	require.NoError(t, m.SaveTo(dir))

	raw, err := os.ReadFile(filepath.Join(dir, DefenseFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"SF"`)
	assert.Contains(t, string(raw), `"2023"`)
	assert.Contains(t, string(raw), `"sacks": 3`)
}

func TestSnapshot_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PlayersFile), []byte("{not json"), 0o644))

	_, err := LoadSnapshot(dir)
	assert.Error(t, err)
}

func TestSnapshot_RestoreDropsIneligibleRoster(t *testing.T) {
	m := NewMemory()
	m.Restore(Snapshot{
		Players: map[string]PlayerDocument{
			"00-9": {Roster: roster.Entry{Name: "Lineman", Position: "OL"}},
		},
	})

	_, ok, err := m.Roster(context.Background(), "00-9")
	require.NoError(t, err)
	assert.False(t, ok)
}
