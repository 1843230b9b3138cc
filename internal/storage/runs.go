package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/runger/taskrun/internal/cmdutil"
)

// Run is one recorded recipe invocation.
type Run struct {
	ID          int64
	RunID       string
	TsUnixMs    int64
	CWD         string
	Runfile     string
	Recipe      string
	CommandNorm string
	CommandHash string
	Shell       string
	ShellArgs   []string
	ExitCode    int
	DurationMs  int64
}

// RunQuery filters QueryRuns results.
type RunQuery struct {
	RecipePrefix string
	Limit        int // 0 means the default of 20
}

// RecordRun inserts a run record. The normalized form and hash are derived
// from the resolved invocation when not already set.
func (s *SQLiteStore) RecordRun(ctx context.Context, r *Run) error {
	if r == nil {
		return errors.New("run cannot be nil")
	}
	if r.RunID == "" {
		return errors.New("run_id is required")
	}
	if r.Recipe == "" {
		return errors.New("recipe is required")
	}

	if r.CommandNorm == "" {
		r.CommandNorm = cmdutil.Normalize(r.Shell + " " + strings.Join(r.ShellArgs, " "))
	}
	if r.CommandHash == "" {
		r.CommandHash = cmdutil.Hash(r.CommandNorm)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, ts_unix_ms, cwd, runfile, recipe,
			command_norm, command_hash, shell, shell_args,
			exit_code, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.RunID,
		r.TsUnixMs,
		r.CWD,
		r.Runfile,
		r.Recipe,
		r.CommandNorm,
		r.CommandHash,
		r.Shell,
		strings.Join(r.ShellArgs, "\x1f"),
		r.ExitCode,
		r.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		r.ID = id
	}
	return nil
}

// QueryRuns returns recent runs, newest first.
func (s *SQLiteStore) QueryRuns(ctx context.Context, q RunQuery) ([]Run, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, run_id, ts_unix_ms, cwd, runfile, recipe,
		       command_norm, command_hash, shell, shell_args,
		       exit_code, duration_ms
		FROM runs
	`
	var args []any
	if q.RecipePrefix != "" {
		query += ` WHERE recipe LIKE ? ESCAPE '\'`
		args = append(args, escapeLike(q.RecipePrefix)+"%")
	}
	query += ` ORDER BY ts_unix_ms DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var shellArgs string
		if err := rows.Scan(
			&r.ID, &r.RunID, &r.TsUnixMs, &r.CWD, &r.Runfile, &r.Recipe,
			&r.CommandNorm, &r.CommandHash, &r.Shell, &shellArgs,
			&r.ExitCode, &r.DurationMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if shellArgs != "" {
			r.ShellArgs = strings.Split(shellArgs, "\x1f")
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// PruneRuns deletes the oldest runs beyond max. It returns the number of
// deleted rows. A max of zero disables pruning.
func (s *SQLiteStore) PruneRuns(ctx context.Context, max int) (int64, error) {
	if max <= 0 {
		return 0, nil
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY ts_unix_ms DESC, id DESC LIMIT ?
		)
	`, max)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return result.RowsAffected()
}

// escapeLike escapes LIKE wildcards in a literal prefix.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
