package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/mj1618/uiarec/internal/runner"
)

// Run is one row of the runs table.
type Run struct {
	ID        int64         `json:"id"         yaml:"id"`
	Scenario  string        `json:"scenario"   yaml:"scenario"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration"   yaml:"duration"`
	Mode      string        `json:"mode"       yaml:"mode"`
	Steps     []string      `json:"steps,omitempty"      yaml:"steps,omitempty"`
	ExitCode  int           `json:"exit_code"  yaml:"exit_code"`
	TimedOut  bool          `json:"timed_out"  yaml:"timed_out"`
	FaultKind string        `json:"fault_kind,omitempty" yaml:"fault_kind,omitempty"`
	RecordID  string        `json:"record_id,omitempty"  yaml:"record_id,omitempty"`
	Step      string        `json:"step,omitempty"       yaml:"step,omitempty"`
	Action    string        `json:"action,omitempty"     yaml:"action,omitempty"`
	Element   string        `json:"element,omitempty"    yaml:"element,omitempty"`
	Summary   string        `json:"summary"    yaml:"summary"`
	Stderr    string        `json:"stderr,omitempty"     yaml:"stderr,omitempty"`
}

// OK reports whether the run passed.
func (r Run) OK() bool {
	return r.ExitCode == 0 && !r.TimedOut && r.FaultKind == ""
}

// FromResult converts a runner result into a history row.
func FromResult(scenario string, steps []string, res *runner.Result) Run {
	run := Run{
		Scenario:  scenario,
		StartedAt: res.Started.UTC(),
		Duration:  res.Duration,
		Mode:      res.Mode.String(),
		Steps:     steps,
		ExitCode:  res.ExitCode,
		TimedOut:  res.TimedOut,
		Summary:   res.Summary(),
		Stderr:    res.Stderr,
	}
	if res.Fault != nil {
		run.FaultKind = res.Fault.Kind.String()
		run.RecordID = res.Fault.RecordID
	}
	if loc := res.Location; loc != nil {
		run.Step = loc.Step.Name
		run.Action = loc.Action.Describe()
		run.Element = loc.Record.FriendlyName()
	}
	return run
}

// Record inserts r and returns its row id.
func (db *DB) Record(r Run) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("history: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`
		INSERT INTO runs (scenario, started_at, duration, mode, steps, exit_code, timed_out,
			fault_kind, record_id, step, action, element, summary, stderr)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.Scenario, r.StartedAt, int64(r.Duration), r.Mode, strings.Join(r.Steps, ","), r.ExitCode, r.TimedOut,
		r.FaultKind, r.RecordID, r.Step, r.Action, r.Element, r.Summary, r.Stderr)
	if err != nil {
		return 0, fmt.Errorf("history: insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: insert run: %w", err)
	}
	return id, tx.Commit()
}

// List returns the most recent runs, newest first. An empty scenario lists
// runs of every scenario; limit <= 0 means no limit.
func (db *DB) List(scenario string, limit int) ([]Run, error) {
	q := `SELECT id, scenario, started_at, duration, mode, steps, exit_code, timed_out,
		fault_kind, record_id, step, action, element, summary, stderr FROM runs`
	var args []any
	if scenario != "" {
		q += ` WHERE scenario = ?`
		args = append(args, scenario)
	}
	q += ` ORDER BY id DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r     Run
			dur   int64
			steps string
		)
		if err := rows.Scan(&r.ID, &r.Scenario, &r.StartedAt, &dur, &r.Mode, &steps, &r.ExitCode, &r.TimedOut,
			&r.FaultKind, &r.RecordID, &r.Step, &r.Action, &r.Element, &r.Summary, &r.Stderr); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		r.Duration = time.Duration(dur)
		if steps != "" {
			r.Steps = strings.Split(steps, ",")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep runs and returns how many were removed.
func (db *DB) Prune(keep int) (int64, error) {
	res, err := db.conn.Exec(`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("history: prune: %w", err)
	}
	return res.RowsAffected()
}
