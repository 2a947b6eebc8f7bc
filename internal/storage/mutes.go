package storage

import (
	"database/sql"
	"time"
)

// Mute suppresses a repository (or one workflow in it) from the dashboard's
// totals until it expires or is revoked. Muted records still render, dimmed.
type Mute struct {
	ID        int64      `json:"id"`
	Repo      string     `json:"repo"`
	Workflow  string     `json:"workflow,omitempty"`
	Reason    string     `json:"reason"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

func (db *DB) CreateMute(repo, workflow, reason string, expires time.Time) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := db.conn.Exec(`
INSERT INTO mutes(repo, workflow, reason, expires_at, created_at)
VALUES(?,?,?,?,?)`,
		repo, nz(workflow), reason, expires.UTC().Format(time.RFC3339Nano), now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (db *DB) RevokeMute(id int64) error {
	_, err := db.conn.Exec(`UPDATE mutes SET revoked_at=? WHERE id=? AND revoked_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), id)
	return err
}

func (db *DB) ListMutes(activeOnly bool) ([]Mute, error) {
	q := `
SELECT id, repo, COALESCE(workflow,''), reason, expires_at, created_at, revoked_at
FROM mutes`
	args := []any{}
	if activeOnly {
		q += ` WHERE (revoked_at IS NULL) AND (expires_at > ?)`
		args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	}
	q += ` ORDER BY id DESC`
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Mute
	for rows.Next() {
		var (
			m           Mute
			exp, ca, ra sql.NullString
			workflow    string
		)
		if err := rows.Scan(&m.ID, &m.Repo, &workflow, &m.Reason, &exp, &ca, &ra); err != nil {
			return nil, err
		}
		m.Workflow = workflow
		if exp.Valid {
			m.ExpiresAt = parseTS(exp.String)
		}
		if ca.Valid {
			m.CreatedAt = parseTS(ca.String)
		}
		if ra.Valid {
			t := parseTS(ra.String)
			m.RevokedAt = &t
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func nz(s string) any {
	if s == "" {
		return nil
	}
	return s
}
