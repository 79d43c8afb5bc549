package scoring

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-fantasy/internal/provider"
	"github.com/albapepper/scoracle-fantasy/internal/roster"
	"github.com/albapepper/scoracle-fantasy/internal/stats"
	"github.com/albapepper/scoracle-fantasy/internal/store"
)

const (
	testYear = 2023
	testWeek = 1
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newStore returns a memory store holding the given roster.
func newStore(t *testing.T, players map[string]roster.Position) *store.Memory {
	t.Helper()
	s := store.NewMemory()
	for id, pos := range players {
		require.NoError(t, s.PutRoster(context.Background(), roster.Entry{ID: id, Name: id, Position: pos}))
	}
	return s
}

func player(t *testing.T, s store.Store, id string) stats.Record {
	t.Helper()
	rec, err := s.Get(context.Background(), store.PlayerKey(id, testYear, testWeek))
	require.NoError(t, err)
	return rec
}

func defense(t *testing.T, s store.Store, team string) stats.Record {
	t.Helper()
	rec, err := s.Get(context.Background(), store.DefenseKey(team, testYear, testWeek))
	require.NoError(t, err)
	return rec
}

func play(p provider.Play) provider.Play {
	if p.Season == 0 {
		p.Season = testYear
	}
	if p.Week == 0 {
		p.Week = testWeek
	}
	return p
}

func TestScoreYardage(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, map[string]roster.Position{"qb": roster.QB, "rb": roster.RB})

	rows := []provider.PlayerWeek{
		{PlayerID: "qb", Season: testYear, Week: testWeek, PassingYards: 305, RushingYards: 12, Passing2pt: 1},
		{PlayerID: "rb", Season: testYear, Week: testWeek, RushingYards: 80, ReceivingYards: 80},
		{PlayerID: "rb", Season: testYear, Week: 2, RushingYards: 200},
		{PlayerID: "ghost", Season: testYear, Week: testWeek, PassingYards: 400},
	}

	tally, err := ScoreYardage(ctx, s, testYear, testWeek, rows)
	require.NoError(t, err)
	assert.Equal(t, Tally{Rule: RuleYardage, Rows: 3, Merges: 2, Dropped: 1}, tally)

	qb := player(t, s, "qb")
	assert.Equal(t, 9+2, qb[stats.Points])
	assert.Equal(t, 305, qb[stats.PassYards])
	assert.Equal(t, 12, qb[stats.RushYards])
	assert.Equal(t, 1, qb[stats.TwoPointConvs])

	rb := player(t, s, "rb")
	assert.Equal(t, 18, rb[stats.Points])
	assert.Equal(t, 80, rb[stats.RushYards], "week 2 row must not leak into week 1")

	_, found, _ := s.Roster(ctx, "ghost")
	assert.False(t, found)
}

func TestScoreYardage_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, map[string]roster.Position{"wr": roster.WR})
	rows := []provider.PlayerWeek{{PlayerID: "wr", Season: testYear, Week: testWeek, ReceivingYards: 130}}

	_, err := ScoreYardage(ctx, s, testYear, testWeek, rows)
	require.NoError(t, err)
	first := player(t, s, "wr")

	// Touchdown points accumulated since are reset by the baseline.
	require.NoError(t, s.Merge(ctx, store.PlayerKey("wr", testYear, testWeek), stats.Delta{stats.Points: 9, stats.RecTds: 1}))

	_, err = ScoreYardage(ctx, s, testYear, testWeek, rows)
	require.NoError(t, err)
	assert.Equal(t, first, player(t, s, "wr"))
	assert.Equal(t, 12, first[stats.Points])
}

func TestScoreTouchdowns(t *testing.T) {
	tests := []struct {
		name         string
		positions    map[string]roster.Position
		play         provider.Play
		wantPasser   int
		wantReceiver int
	}{
		{
			name:         "non-QB passer to WR",
			positions:    map[string]roster.Position{"p": roster.RB, "r": roster.WR},
			play:         provider.Play{Touchdown: true, PassTouchdown: true, PasserPlayerID: "p", TDPlayerID: "r", YardsGained: 15},
			wantPasser:   18,
			wantReceiver: 9,
		},
		{
			name:         "QB to non-WR/TE",
			positions:    map[string]roster.Position{"p": roster.QB, "r": roster.RB},
			play:         provider.Play{Touchdown: true, PassTouchdown: true, PasserPlayerID: "p", TDPlayerID: "r", YardsGained: 15},
			wantPasser:   9,
			wantReceiver: 18,
		},
		{
			name:         "QB to TE long",
			positions:    map[string]roster.Position{"p": roster.QB, "r": roster.TE},
			play:         provider.Play{Touchdown: true, PassTouchdown: true, PasserPlayerID: "p", TDPlayerID: "r", YardsGained: 72},
			wantPasser:   15,
			wantReceiver: 15,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t, tt.positions)
			_, err := ScoreTouchdowns(context.Background(), s, testYear, testWeek, []provider.Play{play(tt.play)})
			require.NoError(t, err)

			p := player(t, s, "p")
			r := player(t, s, "r")
			assert.Equal(t, tt.wantPasser, p[stats.Points])
			assert.Equal(t, 1, p[stats.PassTds])
			assert.Equal(t, tt.wantReceiver, r[stats.Points])
			assert.Equal(t, 1, r[stats.RecTds])
		})
	}
}

func TestScoreTouchdowns_Rushing(t *testing.T) {
	s := newStore(t, map[string]roster.Position{"rb": roster.RB, "qb": roster.QB})
	plays := []provider.Play{
		play(provider.Play{Touchdown: true, RushTouchdown: true, TDPlayerID: "rb", YardsGained: 3}),
		play(provider.Play{Touchdown: true, RushTouchdown: true, TDPlayerID: "qb", YardsGained: 12}),
		play(provider.Play{Touchdown: true, RushTouchdown: true, TDPlayerID: "rb", YardsGained: 41, Week: 2}),
		// Return touchdowns belong to the defense rule.
		play(provider.Play{Touchdown: true, TDPlayerID: "rb", YardsGained: 90, TDTeam: "KC"}),
		// Scored by a player without a roster entry.
		play(provider.Play{Touchdown: true, RushTouchdown: true, TDPlayerID: "ghost", YardsGained: 1}),
	}

	tally, err := ScoreTouchdowns(context.Background(), s, testYear, testWeek, plays)
	require.NoError(t, err)
	assert.Equal(t, 3, tally.Rows)
	assert.Equal(t, 1, tally.Dropped)

	rb := player(t, s, "rb")
	assert.Equal(t, 6, rb[stats.Points])
	assert.Equal(t, 1, rb[stats.RushTds])

	qb := player(t, s, "qb")
	assert.Equal(t, 18, qb[stats.Points])
	assert.Equal(t, 1, qb[stats.RushTds])

	assert.Equal(t, stats.Zero(stats.KindPlayer), player(t, s, "ghost"))
}

func TestScoreKicking(t *testing.T) {
	s := newStore(t, map[string]roster.Position{"k": roster.K})
	plays := []provider.Play{
		play(provider.Play{FieldGoalResult: "made", KickDistance: 39, KickerPlayerID: "k"}),
		play(provider.Play{FieldGoalResult: "made", KickDistance: 40, KickerPlayerID: "k"}),
		play(provider.Play{FieldGoalResult: "missed", KickDistance: 55, KickerPlayerID: "k"}),
		play(provider.Play{ExtraPointResult: "good", KickerPlayerID: "k"}),
		play(provider.Play{ExtraPointResult: "failed", KickerPlayerID: "k"}),
		play(provider.Play{FieldGoalResult: "made", KickDistance: 52, KickerPlayerID: "k", Week: 3}),
	}

	tally, err := ScoreKicking(context.Background(), s, testYear, testWeek, plays)
	require.NoError(t, err)
	assert.Equal(t, 3, tally.Rows)

	k := player(t, s, "k")
	assert.Equal(t, 3+5+1, k[stats.Points])
	assert.Equal(t, 2, k[stats.FGM])
	assert.Equal(t, 1, k[stats.EPM])
}

// defenseWeek is one KC home game against DET with a final score of 24-0.
func defenseWeek() []provider.Play {
	game := func(p provider.Play) provider.Play {
		p.GameID = "2023_01_DET_KC"
		p.HomeTeam = "KC"
		p.AwayTeam = "DET"
		p.HomeScore = 24
		p.AwayScore = 0
		return play(p)
	}
	return []provider.Play{
		game(provider.Play{PlayID: 1, PuntAttempt: true, PosTeam: "DET", DefTeam: "KC", ReturnTeam: "KC", ReturnYards: 40}),
		game(provider.Play{PlayID: 2, PuntAttempt: true, PosTeam: "DET", DefTeam: "KC", ReturnTeam: "KC", ReturnYards: 40}),
		game(provider.Play{PlayID: 3, PosTeam: "DET", DefTeam: "KC", Sack: true}),
		game(provider.Play{PlayID: 4, PosTeam: "DET", DefTeam: "KC", Interception: true}),
		// KC fumbles on offense, DET recovers.
		game(provider.Play{PlayID: 5, PosTeam: "KC", DefTeam: "DET", FumbleLost: true}),
		// Touchback: no returner.
		game(provider.Play{PlayID: 6, KickoffAttempt: true, PosTeam: "DET", DefTeam: "KC", ReturnYards: 0}),
		game(provider.Play{PlayID: 7, PosTeam: "KC", DefTeam: "DET"}),
	}
}

func TestScoreDefense(t *testing.T) {
	s := store.NewMemory()

	tally, err := ScoreDefense(context.Background(), s, testYear, testWeek, defenseWeek())
	require.NoError(t, err)
	assert.Equal(t, 7, tally.Rows)

	kc := defense(t, s, "KC")
	assert.Equal(t, 80, kc[stats.ReturnYards])
	assert.Equal(t, 1, kc[stats.Sacks])
	assert.Equal(t, 1, kc[stats.Turnovers])
	assert.Equal(t, 0, kc[stats.PointsAllowed])
	// sack 1 + interception 2 + shutout 12 + 80 return yards 3
	assert.Equal(t, 18, kc[stats.Points])

	det := defense(t, s, "DET")
	assert.Equal(t, 1, det[stats.Turnovers])
	assert.Equal(t, 24, det[stats.PointsAllowed])
	assert.Equal(t, 2, det[stats.Points])
}

func TestScoreDefense_MuffedPuntCreditsReturnTeam(t *testing.T) {
	plays := []provider.Play{
		// DET punts, KC muffs the return and DET recovers.
		play(provider.Play{GameID: "g", PlayID: 1, PuntAttempt: true, PosTeam: "DET", DefTeam: "KC", ReturnTeam: "KC", FumbleLost: true}),
	}
	s := store.NewMemory()
	_, err := ScoreDefense(context.Background(), s, testYear, testWeek, plays)
	require.NoError(t, err)

	assert.Equal(t, 1, defense(t, s, "KC")[stats.Turnovers])
	assert.Equal(t, 0, defense(t, s, "DET")[stats.Turnovers])
}

func TestScoreDefense_Touchdowns(t *testing.T) {
	plays := []provider.Play{
		// Pick six.
		play(provider.Play{GameID: "g", PlayID: 1, PosTeam: "DET", DefTeam: "KC", Interception: true, Touchdown: true, TDTeam: "KC"}),
		// Kickoff return: the receiving team is posteam.
		play(provider.Play{GameID: "g", PlayID: 2, KickoffAttempt: true, PosTeam: "DET", DefTeam: "KC", ReturnTeam: "DET", ReturnYards: 100, ReturnTouchdown: true, Touchdown: true, TDTeam: "DET"}),
		// Offensive touchdown.
		play(provider.Play{GameID: "g", PlayID: 3, PosTeam: "KC", DefTeam: "DET", Touchdown: true, RushTouchdown: true, TDTeam: "KC"}),
	}
	s := store.NewMemory()
	_, err := ScoreDefense(context.Background(), s, testYear, testWeek, plays)
	require.NoError(t, err)

	kc := defense(t, s, "KC")
	assert.Equal(t, 1, kc[stats.Touchdowns])
	assert.Equal(t, 1, kc[stats.Turnovers])

	det := defense(t, s, "DET")
	assert.Equal(t, 1, det[stats.Touchdowns])
	assert.Equal(t, 100, det[stats.ReturnYards])
}

func TestScoreDefense_SafetyAndReturnedConversion(t *testing.T) {
	plays := []provider.Play{
		play(provider.Play{GameID: "g", PlayID: 1, PosTeam: "DET", DefTeam: "KC", Safety: true}),
		play(provider.Play{GameID: "g", PlayID: 2, PosTeam: "DET", DefTeam: "KC", DefensiveTwoPointConv: true}),
		play(provider.Play{GameID: "g", PlayID: 3, PosTeam: "DET", DefTeam: "KC", DefensiveExtraPointConv: true}),
	}
	s := store.NewMemory()
	_, err := ScoreDefense(context.Background(), s, testYear, testWeek, plays)
	require.NoError(t, err)

	kc := defense(t, s, "KC")
	assert.Equal(t, 1, kc[stats.Safeties])
	assert.Equal(t, 2, kc[stats.Returned2Pts])
	assert.Equal(t, 36, kc[stats.Points])
}

func TestScoreDefense_LateralReturn(t *testing.T) {
	plays := []provider.Play{
		play(provider.Play{
			GameID: "g", PlayID: 1, PuntAttempt: true, PosTeam: "DET", DefTeam: "KC", ReturnTeam: "KC",
			ReturnYards: 20, LateralReturn: true,
			Desc: "B.Smith to KC 30 for 20 yards. Lateral to C.Jones to DET 40 for 30 yards (tackle).",
		}),
		play(provider.Play{
			GameID: "g", PlayID: 2, PuntAttempt: true, PosTeam: "DET", DefTeam: "KC", ReturnTeam: "KC",
			ReturnYards: 7, LateralReturn: true, Desc: "Lateral, description garbled",
		}),
	}
	s := store.NewMemory()
	_, err := ScoreDefense(context.Background(), s, testYear, testWeek, plays)
	require.NoError(t, err)

	assert.Equal(t, 57, defense(t, s, "KC")[stats.ReturnYards])
}

func TestScoreDefense_LastPlayByPlayID(t *testing.T) {
	plays := []provider.Play{
		play(provider.Play{GameID: "g", PlayID: 90, HomeTeam: "KC", AwayTeam: "DET", HomeScore: 10, AwayScore: 3}),
		play(provider.Play{GameID: "g", PlayID: 12, HomeTeam: "KC", AwayTeam: "DET", HomeScore: 0, AwayScore: 0}),
	}
	s := store.NewMemory()
	_, err := ScoreDefense(context.Background(), s, testYear, testWeek, plays)
	require.NoError(t, err)

	kc := defense(t, s, "KC")
	assert.Equal(t, 3, kc[stats.PointsAllowed])
	assert.Equal(t, 9, kc[stats.Points])

	det := defense(t, s, "DET")
	assert.Equal(t, 10, det[stats.PointsAllowed])
	assert.Equal(t, 3, det[stats.Points])
}

// Applying an accumulating rule twice doubles it. pointsAllowed is replaced
// and stays put; the engine's ledger is what keeps a week from being re-run.
func TestScoreDefense_ReplayHazard(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	_, err := ScoreDefense(ctx, s, testYear, testWeek, defenseWeek())
	require.NoError(t, err)
	once := defense(t, s, "KC")

	_, err = ScoreDefense(ctx, s, testYear, testWeek, defenseWeek())
	require.NoError(t, err)
	twice := defense(t, s, "KC")

	assert.Equal(t, 0, twice[stats.PointsAllowed])
	assert.Equal(t, 2*once[stats.Sacks], twice[stats.Sacks])
	assert.Equal(t, 2*once[stats.ReturnYards], twice[stats.ReturnYards])
	assert.NotEqual(t, once[stats.Points], twice[stats.Points])
}

func TestLoadRoster(t *testing.T) {
	s := store.NewMemory()
	rows := []provider.RosterRow{
		{PlayerID: "a", Name: "Quarterback", Position: "QB", Team: "KC"},
		{PlayerID: "b", Name: "Guard", Position: "OL", Team: "KC"},
		{PlayerID: "", Name: "No Id", Position: "WR"},
		{PlayerID: "c", Name: "Kicker", Position: "k", Team: "DET"},
	}

	stored, skipped, err := LoadRoster(context.Background(), s, rows, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	assert.Equal(t, 2, skipped)

	e, ok, err := s.Roster(context.Background(), "c")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, roster.K, e.Position)
}
