package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// preflightResult reports the outcome of a startup integrity check.
type preflightResult struct {
	Healthy        bool
	Quarantined    bool
	QuarantinePath string // main file only
	Elapsed        time.Duration
	CheckpointErr  error
	CheckErr       error
}

// preflight runs a bounded WAL checkpoint and quick_check against an existing
// capture database. A file that fails either check is renamed, together with
// its sidecars, to a timestamped ".bad-" path so the recorder can start fresh.
func preflight(path string, timeout time.Duration, logf func(string, ...any)) (preflightResult, error) {
	if timeout <= 0 {
		timeout = preflightTimeout
	}
	start := time.Now()
	var res preflightResult
	existing := sidecars(path)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return res, fmt.Errorf("recorder: preflight open: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, fmt.Sprintf("pragma busy_timeout=%d", timeout.Milliseconds())); err != nil {
		return res, fmt.Errorf("recorder: preflight busy_timeout: %w", err)
	}

	_, res.CheckpointErr = db.ExecContext(ctx, "pragma wal_checkpoint(TRUNCATE)")
	res.CheckErr = quickCheck(ctx, db)
	res.Elapsed = time.Since(start)
	if res.CheckpointErr == nil && res.CheckErr == nil {
		res.Healthy = true
		return res, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("recorder: preflight timed out after %s", timeout)
	}

	_ = db.Close()
	dest, err := quarantine(path, existing, logf)
	if err != nil {
		return res, fmt.Errorf("recorder: quarantine %s: %w (checkpoint=%v, quick_check=%v)", path, err, res.CheckpointErr, res.CheckErr)
	}
	res.Quarantined = true
	res.QuarantinePath = dest
	return res, nil
}

func quickCheck(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, "pragma quick_check")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return err
		}
		if strings.TrimSpace(status) != "ok" {
			return fmt.Errorf("quick_check reported %q", status)
		}
	}
	return rows.Err()
}

// sidecars lists the database file and its journal files that exist now.
func sidecars(path string) []string {
	var out []string
	for _, candidate := range []string{path, path + "-wal", path + "-shm", path + "-journal"} {
		if _, err := os.Stat(candidate); err == nil {
			out = append(out, candidate)
		}
	}
	return out
}

func quarantine(path string, existing []string, logf func(string, ...any)) (string, error) {
	suffix := ".bad-" + time.Now().UTC().Format("20060102T150405Z")
	for _, file := range existing {
		if err := os.Rename(file, file+suffix); err != nil {
			if os.IsNotExist(err) {
				// checkpoint may have removed a sidecar
				if logf != nil {
					logf("Recorder: %s vanished during quarantine", file)
				}
				continue
			}
			return "", err
		}
	}
	return path + suffix, nil
}
