package scoring

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunResult tracks counts and errors from scoring one or more weeks.
type RunResult struct {
	RunID      string
	Year       int
	Weeks      int // weeks scored
	Skipped    int // weeks already fully applied
	PlayerRows int
	Plays      int
	Merges     int
	Dropped    int
	Rules      map[string]Tally
	Errors     []string
	Duration   time.Duration
}

func newRunResult(year int) RunResult {
	return RunResult{
		RunID: uuid.NewString(),
		Year:  year,
		Rules: make(map[string]Tally, len(Rules)),
	}
}

// AddTally folds one rule application into the result.
func (r *RunResult) AddTally(t Tally) {
	r.Merges += t.Merges
	r.Dropped += t.Dropped
	agg := r.Rules[t.Rule]
	agg.Rule = t.Rule
	agg.Rows += t.Rows
	agg.Merges += t.Merges
	agg.Dropped += t.Dropped
	r.Rules[t.Rule] = agg
}

// Add merges another RunResult into this one. The run id is kept.
func (r *RunResult) Add(other RunResult) {
	r.Weeks += other.Weeks
	r.Skipped += other.Skipped
	r.PlayerRows += other.PlayerRows
	r.Plays += other.Plays
	for _, rule := range Rules {
		if t, ok := other.Rules[rule]; ok {
			r.AddTally(t)
		}
	}
	r.Errors = append(r.Errors, other.Errors...)
}

// AddErrorf records a formatted error message.
func (r *RunResult) AddErrorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the run.
func (r *RunResult) Summary() string {
	return fmt.Sprintf(
		"run=%s year=%d weeks=%d skipped=%d player_rows=%d plays=%d merges=%d dropped=%d errors=%d",
		r.RunID, r.Year, r.Weeks, r.Skipped,
		r.PlayerRows, r.Plays, r.Merges, r.Dropped,
		len(r.Errors),
	)
}
