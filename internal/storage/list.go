package storage

import (
	"database/sql"
	"time"
)

// RunRow is a lightweight listing row for /runs.
type RunRow struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Root      string    `json:"root,omitempty"`
	IRVersion string    `json:"ir_version,omitempty"`
	Rules     int       `json:"rules"`
}

// ListRuns returns a lightweight list of runs with rule counts.
func (db *DB) ListRuns(limit, offset int) ([]RunRow, error) {
	const q = `
		SELECT r.id, r.started_at, r.root, r.ir_version,
		       (SELECT COUNT(1) FROM rules u WHERE u.run_id = r.id) AS rules
		  FROM runs r
		 ORDER BY r.started_at DESC, r.id DESC
		 LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var rr RunRow
		var startedAtStr string
		if err := rows.Scan(&rr.ID, &startedAtStr, &rr.Root, &rr.IRVersion, &rr.Rules); err != nil {
			return nil, err
		}
		// Parse RFC3339Nano first, fallback to RFC3339
		if t, err := time.Parse(time.RFC3339Nano, startedAtStr); err == nil {
			rr.StartedAt = t
		} else if t2, err2 := time.Parse(time.RFC3339, startedAtStr); err2 == nil {
			rr.StartedAt = t2
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// RuleRow is one stored rule, as served by /runs/{id}/rules.
type RuleRow struct {
	File    string  `json:"file"`
	Name    string  `json:"name"`
	Line    int     `json:"line"`
	Status  *string `json:"status"`
	Outcome string  `json:"outcome"`
}

// ListRules returns a run's rules, optionally restricted to one
// outcome ("" = all), in stable (file, line) order.
func (db *DB) ListRules(runID, outcome string) ([]RuleRow, error) {
	q := `SELECT file, name, line, status, outcome FROM rules WHERE run_id = ?`
	args := []any{runID}
	if outcome != "" {
		q += ` AND outcome = ?`
		args = append(args, outcome)
	}
	q += ` ORDER BY file, line, name`
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RuleRow
	for rows.Next() {
		var r RuleRow
		var status sql.NullString
		if err := rows.Scan(&r.File, &r.Name, &r.Line, &status, &r.Outcome); err != nil {
			return nil, err
		}
		if status.Valid {
			s := status.String
			r.Status = &s
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// HasRun reports whether a run id exists.
func (db *DB) HasRun(id string) (bool, error) {
	const q = `SELECT 1 FROM runs WHERE id = ? LIMIT 1`
	var one int
	err := db.conn.QueryRow(q, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}
