package store

import (
	"context"
	"sort"
	"sync"

	"github.com/albapepper/scoracle-fantasy/internal/roster"
	"github.com/albapepper/scoracle-fantasy/internal/stats"
)

// weeks maps year → week → record.
type weeks map[int]map[int]stats.Record

func (w weeks) get(year, week int) (stats.Record, bool) {
	r, ok := w[year][week]
	return r, ok
}

func (w weeks) put(year, week int, r stats.Record) {
	if w[year] == nil {
		w[year] = make(map[int]stats.Record)
	}
	w[year][week] = r
}

func (w weeks) clone() weeks {
	out := make(weeks, len(w))
	for y, ws := range w {
		for wk, r := range ws {
			out.put(y, wk, r.Clone())
		}
	}
	return out
}

type playerDoc struct {
	roster  *roster.Entry
	scoring weeks
}

// Memory is the local, in-process store. It is safe for concurrent use, but
// rule application against it is expected to be serial.
type Memory struct {
	mu       sync.RWMutex
	players  map[string]*playerDoc
	defenses map[string]weeks
	applied  map[Application]bool
}

// NewMemory returns an empty local store.
func NewMemory() *Memory {
	return &Memory{
		players:  make(map[string]*playerDoc),
		defenses: make(map[string]weeks),
		applied:  make(map[Application]bool),
	}
}

var _ Store = (*Memory)(nil)

// Roster returns the roster entry for a player.
func (m *Memory) Roster(_ context.Context, playerID string) (roster.Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.players[playerID]
	if !ok || doc.roster == nil {
		return roster.Entry{}, false, nil
	}
	return *doc.roster, true, nil
}

// PutRoster stores or replaces a player's roster entry.
func (m *Memory) PutRoster(_ context.Context, e roster.Entry) error {
	if !e.Valid() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := m.playerDocLocked(e.ID)
	entry := e
	doc.roster = &entry
	return nil
}

func (m *Memory) playerDocLocked(id string) *playerDoc {
	doc, ok := m.players[id]
	if !ok {
		doc = &playerDoc{scoring: make(weeks)}
		m.players[id] = doc
	}
	return doc
}

// Get returns the record for key, or the zero record when absent.
func (m *Memory) Get(_ context.Context, key Key) (stats.Record, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.weeksLocked(key, false).get(key.Year, key.Week); ok {
		return stats.Normalize(key.Kind, r), nil
	}
	return stats.Zero(key.Kind), nil
}

// Merge applies delta to the record for key.
func (m *Memory) Merge(_ context.Context, key Key, delta stats.Delta) error {
	if err := key.validate(); err != nil {
		return err
	}
	if err := delta.Validate(key.Kind); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.gateLocked(key) {
		return nil
	}
	w := m.weeksLocked(key, true)
	cur, _ := w.get(key.Year, key.Week)
	next, err := stats.Merge(key.Kind, cur, delta)
	if err != nil {
		return err
	}
	w.put(key.Year, key.Week, next)
	return nil
}

// Set replaces the record for key.
func (m *Memory) Set(_ context.Context, key Key, rec stats.Record) error {
	if err := key.validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.gateLocked(key) {
		return nil
	}
	m.weeksLocked(key, true).put(key.Year, key.Week, stats.Normalize(key.Kind, rec))
	return nil
}

// gateLocked reports whether writes for key are allowed: players need a roster entry.
func (m *Memory) gateLocked(key Key) bool {
	if key.Kind != stats.KindPlayer {
		return true
	}
	doc, ok := m.players[key.ID]
	return ok && doc.roster != nil
}

func (m *Memory) weeksLocked(key Key, create bool) weeks {
	switch key.Kind {
	case stats.KindPlayer:
		doc, ok := m.players[key.ID]
		if !ok {
			if !create {
				return nil
			}
			doc = m.playerDocLocked(key.ID)
		}
		return doc.scoring
	default:
		w, ok := m.defenses[key.ID]
		if !ok && create {
			w = make(weeks)
			m.defenses[key.ID] = w
		}
		return w
	}
}

// Applied reports whether app is recorded in the ledger.
func (m *Memory) Applied(_ context.Context, app Application) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.applied[app], nil
}

// MarkApplied records app in the ledger.
func (m *Memory) MarkApplied(_ context.Context, app Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied[app] = true
	return nil
}

// ClearWeek drops all records and ledger entries for (year, week).
func (m *Memory) ClearWeek(_ context.Context, year, week int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.players {
		delete(doc.scoring[year], week)
	}
	for _, w := range m.defenses {
		delete(w[year], week)
	}
	for app := range m.applied {
		if app.Year == year && app.Week == week {
			delete(m.applied, app)
		}
	}
	return nil
}

// Clear drops every record and ledger entry. Roster entries survive so the
// next scoring run still passes the roster gate. Used after a successful
// remote sync.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, doc := range m.players {
		if doc.roster == nil {
			delete(m.players, id)
			continue
		}
		doc.scoring = make(weeks)
	}
	m.defenses = make(map[string]weeks)
	m.applied = make(map[Application]bool)
}

// PlayerDocument is a player's roster entry plus all scored weeks.
type PlayerDocument struct {
	Roster  roster.Entry                 `json:"roster"`
	Scoring map[int]map[int]stats.Record `json:"scoring"`
}

// Snapshot is a deep copy of everything a Memory store holds.
type Snapshot struct {
	Players  map[string]PlayerDocument
	Defenses map[string]map[int]map[int]stats.Record
	Ledger   []Application
}

// Snapshot returns a deep copy of the store contents.
func (m *Memory) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		Players:  make(map[string]PlayerDocument, len(m.players)),
		Defenses: make(map[string]map[int]map[int]stats.Record, len(m.defenses)),
		Ledger:   make([]Application, 0, len(m.applied)),
	}
	for id, doc := range m.players {
		pd := PlayerDocument{Scoring: doc.scoring.clone()}
		if doc.roster != nil {
			pd.Roster = *doc.roster
		}
		pd.Roster.ID = id
		snap.Players[id] = pd
	}
	for team, w := range m.defenses {
		snap.Defenses[team] = w.clone()
	}
	for app := range m.applied {
		snap.Ledger = append(snap.Ledger, app)
	}
	sort.Slice(snap.Ledger, func(i, j int) bool {
		a, b := snap.Ledger[i], snap.Ledger[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		return a.Rule < b.Rule
	})
	return snap
}

// Restore replaces the store contents with snap.
func (m *Memory) Restore(snap Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.players = make(map[string]*playerDoc, len(snap.Players))
	for id, pd := range snap.Players {
		doc := &playerDoc{scoring: weeks(pd.Scoring).clone()}
		if pos, ok := roster.ParsePosition(string(pd.Roster.Position)); ok {
			e := pd.Roster
			e.ID = id
			e.Position = pos
			doc.roster = &e
		}
		m.players[id] = doc
	}
	m.defenses = make(map[string]weeks, len(snap.Defenses))
	for team, w := range snap.Defenses {
		m.defenses[team] = weeks(w).clone()
	}
	m.applied = make(map[Application]bool, len(snap.Ledger))
	for _, app := range snap.Ledger {
		m.applied[app] = true
	}
}

// PlayerDocument returns the player's roster entry and every scored week. ok is
// false for players without a roster entry.
func (m *Memory) PlayerDocument(_ context.Context, playerID string) (PlayerDocument, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.players[playerID]
	if !ok || doc.roster == nil {
		return PlayerDocument{}, false, nil
	}
	return PlayerDocument{Roster: *doc.roster, Scoring: doc.scoring.clone()}, true, nil
}

// Counts returns the number of players, rostered players and defenses held.
func (m *Memory) Counts() (players, rostered, defenses int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, doc := range m.players {
		if doc.roster != nil {
			rostered++
		}
	}
	return len(m.players), rostered, len(m.defenses)
}
