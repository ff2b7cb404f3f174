// Package storage provides the SQLite persistence layer behind drafts,
// submission locks, and the local submission archive, plus an in-memory
// variant used by tests and ephemeral deployments.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roomsathi/feedback/internal/forms"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an opened database handle and applies the pragmas the
// server depends on.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetDraft(device string, t forms.RespondentType) (*forms.DraftRecord, error) {
	row := s.db.QueryRow(
		`SELECT answers, step, locale, saved_at, started_at FROM drafts WHERE device_id = ? AND respondent_type = ?`,
		device, string(t),
	)
	var answersJSON, savedAt, startedAt string
	rec := &forms.DraftRecord{}
	if err := row.Scan(&answersJSON, &rec.Step, &rec.Locale, &savedAt, &startedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}
	if err := json.Unmarshal([]byte(answersJSON), &rec.Answers); err != nil {
		return nil, fmt.Errorf("decode draft answers: %w", err)
	}
	var err error
	if rec.SavedAt, err = parseTime(savedAt); err != nil {
		return nil, fmt.Errorf("decode draft saved_at: %w", err)
	}
	if startedAt != "" {
		if rec.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, fmt.Errorf("decode draft started_at: %w", err)
		}
	}
	return rec, nil
}

func (s *SQLiteStore) PutDraft(device string, t forms.RespondentType, rec *forms.DraftRecord) error {
	answersJSON, err := json.Marshal(rec.Answers)
	if err != nil {
		return fmt.Errorf("encode draft answers: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO drafts (device_id, respondent_type, answers, step, locale, saved_at, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(device_id, respondent_type) DO UPDATE SET
		   answers = excluded.answers, step = excluded.step, locale = excluded.locale,
		   saved_at = excluded.saved_at, started_at = excluded.started_at`,
		device, string(t), string(answersJSON), rec.Step, rec.Locale,
		formatTime(rec.SavedAt), formatTime(rec.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("put draft: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteDraft(device string, t forms.RespondentType) error {
	if _, err := s.db.Exec(`DELETE FROM drafts WHERE device_id = ? AND respondent_type = ?`, device, string(t)); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetLock(device string, t forms.RespondentType) (*forms.Lock, error) {
	row := s.db.QueryRow(
		`SELECT name, email, contact_key, user_agent, language, submitted_at FROM locks WHERE device_id = ? AND respondent_type = ?`,
		device, string(t),
	)
	lock := &forms.Lock{Type: t}
	var submittedAt string
	if err := row.Scan(&lock.Name, &lock.Email, &lock.ContactKey, &lock.Device.UserAgent, &lock.Device.Language, &submittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lock: %w", err)
	}
	var err error
	if lock.SubmittedAt, err = parseTime(submittedAt); err != nil {
		return nil, fmt.Errorf("decode lock submitted_at: %w", err)
	}
	return lock, nil
}

func (s *SQLiteStore) PutLock(device string, t forms.RespondentType, lock *forms.Lock) error {
	_, err := s.db.Exec(
		`INSERT INTO locks (device_id, respondent_type, name, email, contact_key, user_agent, language, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(device_id, respondent_type) DO UPDATE SET
		   name = excluded.name, email = excluded.email, contact_key = excluded.contact_key,
		   user_agent = excluded.user_agent, language = excluded.language, submitted_at = excluded.submitted_at`,
		device, string(t), lock.Name, lock.Email, lock.ContactKey,
		lock.Device.UserAgent, lock.Device.Language, formatTime(lock.SubmittedAt),
	)
	if err != nil {
		return fmt.Errorf("put lock: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteLock(device string, t forms.RespondentType) error {
	if _, err := s.db.Exec(`DELETE FROM locks WHERE device_id = ? AND respondent_type = ?`, device, string(t)); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveSubmission(rec *forms.SubmissionRecord) error {
	payloadJSON, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("encode submission payload: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO submissions (id, respondent_type, payload, submitted_at) VALUES (?, ?, ?, ?)`,
		rec.ID, string(rec.Type), string(payloadJSON), formatTime(rec.SubmittedAt),
	)
	if err != nil {
		return fmt.Errorf("save submission: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListSubmissions(t forms.RespondentType) ([]*forms.SubmissionRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, payload, submitted_at FROM submissions WHERE respondent_type = ? ORDER BY submitted_at`,
		string(t),
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []*forms.SubmissionRecord
	for rows.Next() {
		rec := &forms.SubmissionRecord{Type: t}
		var payloadJSON, submittedAt string
		if err := rows.Scan(&rec.ID, &payloadJSON, &submittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if err := json.Unmarshal([]byte(payloadJSON), &rec.Payload); err != nil {
			return nil, fmt.Errorf("decode submission payload: %w", err)
		}
		if rec.SubmittedAt, err = parseTime(submittedAt); err != nil {
			return nil, fmt.Errorf("decode submission submitted_at: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return out, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
