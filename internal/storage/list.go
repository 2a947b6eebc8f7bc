package storage

import (
	"database/sql"
	"time"
)

// statusRankSQL orders rows by effective status the same way the model does:
// conclusion when present, lifecycle status otherwise.
const statusRankSQL = `
	(CASE COALESCE(NULLIF(conclusion, ''), status)
	 WHEN 'failure' THEN 0
	 WHEN 'cancelled' THEN 1
	 WHEN 'in_progress' THEN 2
	 WHEN 'success' THEN 3
	 WHEN 'completed' THEN 4
	 ELSE 99 END)`

// ListSnapshots returns a lightweight list of snapshots with counts.
func (db *DB) ListSnapshots(limit, offset int) ([]SnapshotRow, error) {
	const q = `
		SELECT s.id, s.generated_at, s.account, s.account_type,
		       (SELECT COUNT(1) FROM records r WHERE r.snapshot_id = s.id) AS records,
		       (SELECT COUNT(1) FROM records r WHERE r.snapshot_id = s.id AND r.conclusion = 'failure') AS failing
		  FROM snapshots s
		 ORDER BY s.generated_at DESC, s.id DESC
		 LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotRow
	for rows.Next() {
		var sr SnapshotRow
		var generatedAtStr string
		if err := rows.Scan(&sr.ID, &generatedAtStr, &sr.Account, &sr.AccountType, &sr.Records, &sr.Failing); err != nil {
			return nil, err
		}
		sr.GeneratedAt = parseTS(generatedAtStr)
		out = append(out, sr)
	}
	return out, rows.Err()
}

// ListRecords returns a snapshot's record rows in display order, optionally
// restricted to one category.
func (db *DB) ListRecords(snapshotID, category string) ([]RecordRow, error) {
	q := `
		SELECT repo, workflow, category, status, conclusion, branch, run_url, updated_at,
		       jobs_total, jobs_success, jobs_failure, jobs_in_progress
		  FROM records
		 WHERE snapshot_id = ?`
	args := []any{snapshotID}
	if category != "" {
		q += ` AND category = ?`
		args = append(args, category)
	}
	q += ` ORDER BY ` + statusRankSQL + `, repo, workflow`
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecordRow
	for rows.Next() {
		var rr RecordRow
		var updatedAtStr string
		if err := rows.Scan(&rr.Repo, &rr.Workflow, &rr.Category, &rr.Status, &rr.Conclusion, &rr.Branch, &rr.RunURL, &updatedAtStr,
			&rr.Jobs.Total, &rr.Jobs.Success, &rr.Jobs.Failure, &rr.Jobs.InProgress); err != nil {
			return nil, err
		}
		rr.UpdatedAt = parseTS(updatedAtStr)
		out = append(out, rr)
	}
	return out, rows.Err()
}

// HasSnapshot reports whether a snapshot ID exists.
func (db *DB) HasSnapshot(id string) (bool, error) {
	const q = `SELECT 1 FROM snapshots WHERE id = ? LIMIT 1`
	var one int
	err := db.conn.QueryRow(q, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// parseTS parses RFC3339Nano first, falling back to RFC3339. Unparsable
// values come back as the zero time.
func parseTS(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
