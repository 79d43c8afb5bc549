package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/albapepper/scoracle-fantasy/internal/stats"
)

// Snapshot file names inside the data directory.
const (
	PlayersFile = "players.json"
	DefenseFile = "defense.json"
	LedgerFile  = "ledger.json"
)

// SaveSnapshot writes snap as indented JSON files under dir.
//
//	players.json  {playerId: {"roster": {...}, "scoring": {year: {week: {stat: value}}}}}
//	defense.json  {team: {year: {week: {stat: value}}}}
//	ledger.json   [{"rule": ..., "year": ..., "week": ...}]
func SaveSnapshot(dir string, snap Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	files := []struct {
		name string
		v    any
	}{
		{PlayersFile, nonNilPlayers(snap.Players)},
		{DefenseFile, nonNilDefenses(snap.Defenses)},
		{LedgerFile, nonNilLedger(snap.Ledger)},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(dir, f.name), f.v); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}

// LoadSnapshot reads the files written by SaveSnapshot. Missing files are
// treated as empty so a fresh data directory loads cleanly.
func LoadSnapshot(dir string) (Snapshot, error) {
	snap := Snapshot{
		Players:  map[string]PlayerDocument{},
		Defenses: map[string]map[int]map[int]stats.Record{},
	}
	if err := readJSON(filepath.Join(dir, PlayersFile), &snap.Players); err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", PlayersFile, err)
	}
	if err := readJSON(filepath.Join(dir, DefenseFile), &snap.Defenses); err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", DefenseFile, err)
	}
	if err := readJSON(filepath.Join(dir, LedgerFile), &snap.Ledger); err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", LedgerFile, err)
	}
	return snap, nil
}

// SaveTo snapshots the store into dir.
func (m *Memory) SaveTo(dir string) error {
	return SaveSnapshot(dir, m.Snapshot())
}

// LoadFrom replaces the store contents with the snapshot in dir.
func (m *Memory) LoadFrom(dir string) error {
	snap, err := LoadSnapshot(dir)
	if err != nil {
		return err
	}
	m.Restore(snap)
	return nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func nonNilPlayers(m map[string]PlayerDocument) map[string]PlayerDocument {
	if m == nil {
		return map[string]PlayerDocument{}
	}
	return m
}

func nonNilDefenses(m map[string]map[int]map[int]stats.Record) map[string]map[int]map[int]stats.Record {
	if m == nil {
		return map[string]map[int]map[int]stats.Record{}
	}
	return m
}

func nonNilLedger(l []Application) []Application {
	if l == nil {
		return []Application{}
	}
	return l
}
