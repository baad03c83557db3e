// Package logging persists an uncapped audit trail of evaluations and
// feedback in SQLite. The in-state session log keeps only the most recent
// 2000 entries; the archive keeps everything.
package logging

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS evaluation_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	domain      TEXT NOT NULL,
	deviation   REAL NOT NULL,
	temperature REAL NOT NULL,
	psi         REAL NOT NULL,
	verdict     TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS feedback_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	domain      TEXT NOT NULL,
	feedback    TEXT NOT NULL,
	reward      REAL NOT NULL,
	new_weight  REAL NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evaluation_session ON evaluation_log(session_id);
CREATE INDEX IF NOT EXISTS idx_evaluation_domain  ON evaluation_log(domain);
`
// #endregion schema

// #region archive-struct
// Archive manages the audit database.
type Archive struct {
	db *sql.DB
}
// #endregion archive-struct

// #region constructor
// NewArchive opens the SQLite database and runs migrations.
func NewArchive(dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return &Archive{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}
// #endregion close

// #region record-evaluation
// RecordEvaluation appends one evaluation row.
func (a *Archive) RecordEvaluation(rec EvaluationRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := a.db.Exec(
		`INSERT INTO evaluation_log (session_id, domain, deviation, temperature, psi, verdict, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Domain, rec.D, rec.T, rec.Psi, rec.Verdict,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record evaluation: %w", err)
	}
	return nil
}
// #endregion record-evaluation

// #region record-feedback
// RecordFeedback appends one feedback row.
func (a *Archive) RecordFeedback(rec FeedbackRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := a.db.Exec(
		`INSERT INTO feedback_log (session_id, domain, feedback, reward, new_weight, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Domain, rec.Feedback, rec.Reward, rec.NewWeight,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record feedback: %w", err)
	}
	return nil
}
// #endregion record-feedback

// #region recent-evaluations
// RecentEvaluations returns the most recent evaluation rows, newest first.
func (a *Archive) RecentEvaluations(limit int) ([]EvaluationRecord, error) {
	rows, err := a.db.Query(
		`SELECT session_id, domain, deviation, temperature, psi, verdict, created_at
		 FROM evaluation_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent evaluations: %w", err)
	}
	defer rows.Close()

	var recs []EvaluationRecord
	for rows.Next() {
		var rec EvaluationRecord
		var createdStr string
		if err := rows.Scan(&rec.SessionID, &rec.Domain, &rec.D, &rec.T, &rec.Psi, &rec.Verdict, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
// #endregion recent-evaluations

// #region feedback-for-session
// FeedbackForSession returns archived feedback rows for one session.
func (a *Archive) FeedbackForSession(sessionID string) ([]FeedbackRecord, error) {
	rows, err := a.db.Query(
		`SELECT session_id, domain, feedback, reward, new_weight, created_at
		 FROM feedback_log WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("feedback for session: %w", err)
	}
	defer rows.Close()

	var recs []FeedbackRecord
	for rows.Next() {
		var rec FeedbackRecord
		var createdStr string
		if err := rows.Scan(&rec.SessionID, &rec.Domain, &rec.Feedback, &rec.Reward, &rec.NewWeight, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
// #endregion feedback-for-session
