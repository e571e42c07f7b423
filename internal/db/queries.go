package db

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/minitcraft/minit/internal/errors"
	"github.com/minitcraft/minit/internal/minutes"
)

const meetingColumns = `
	id, siri, siri_norm, title, jenis, tarikh,
	record_json, source, previous_id, created_at, updated_at, deleted_at`

// ListFilter selects meetings for List.
type ListFilter struct {
	Jenis          string // "" for all
	Limit          int
	Offset         int
	IncludeDeleted bool
}

// Insert stores a new meeting. Header columns are taken from m.Record.
func Insert(ctx context.Context, db *sql.DB, m *minutes.Meeting) error {
	m.SyncHeader()
	recordJSON, err := json.Marshal(m.Record)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO meetings (
			id, siri, siri_norm, title, jenis, tarikh,
			record_json, source, previous_id, created_at, updated_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err = db.ExecContext(ctx, query,
		m.ID, m.Siri, m.SiriNorm, m.Title, m.Jenis, m.Tarikh,
		string(recordJSON), m.Source, toNullString(m.PreviousID), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetByID retrieves a meeting by its ULID.
// If includeDeleted is false, soft-deleted meetings are excluded.
func GetByID(ctx context.Context, db *sql.DB, id string, includeDeleted bool) (*minutes.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	m, err := scanMeeting(db.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return m, nil
}

// GetBySiri retrieves the most recently updated meeting with the given
// normalized serial, optionally restricted to one jenis. Serials are not
// unique: a draft and its finalized copy may share one.
// With includeDeleted, an active meeting is preferred over deleted ones.
func GetBySiri(ctx context.Context, db *sql.DB, siriNorm, jenis string, includeDeleted bool) (*minutes.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE siri_norm = ?`
	args := []any{siriNorm}
	if jenis != "" {
		query += " AND jenis = ?"
		args = append(args, jenis)
	}
	if !includeDeleted {
		query += " AND deleted_at IS NULL ORDER BY updated_at DESC, id DESC LIMIT 1"
	} else {
		query += " ORDER BY (deleted_at IS NULL) DESC, updated_at DESC, id DESC LIMIT 1"
	}

	m, err := scanMeeting(db.QueryRowContext(ctx, query, args...))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound(siriNorm)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return m, nil
}

// GetLatest retrieves the most recently updated meeting, optionally of one
// jenis. It returns nil, nil when there is none.
func GetLatest(ctx context.Context, db *sql.DB, jenis string, includeDeleted bool) (*minutes.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE 1=1`
	var args []any
	if jenis != "" {
		query += " AND jenis = ?"
		args = append(args, jenis)
	}
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	query += " ORDER BY updated_at DESC, id DESC LIMIT 1"

	m, err := scanMeeting(db.QueryRowContext(ctx, query, args...))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return m, nil
}

// UpdateRecord replaces the record of an active meeting and refreshes its
// header columns. Sets updated_at to the current timestamp.
// Does NOT change: id, source, previous_id, created_at
func UpdateRecord(ctx context.Context, db *sql.DB, m *minutes.Meeting) error {
	m.SyncHeader()
	recordJSON, err := json.Marshal(m.Record)
	if err != nil {
		return errors.NewInternal(err)
	}

	now := time.Now().Unix()
	query := `
		UPDATE meetings
		SET siri = ?, siri_norm = ?, title = ?, jenis = ?, tarikh = ?,
			record_json = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := db.ExecContext(ctx, query,
		m.Siri, m.SiriNorm, m.Title, m.Jenis, m.Tarikh,
		string(recordJSON), now, m.ID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := expectOneRow(result, m.ID); err != nil {
		return err
	}

	m.UpdatedAt = now
	return nil
}

// SoftDelete marks a meeting as deleted by setting deleted_at.
func SoftDelete(ctx context.Context, db *sql.DB, id string) error {
	query := `
		UPDATE meetings
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := db.ExecContext(ctx, query, time.Now().Unix(), id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return expectOneRow(result, id)
}

// List returns meeting summaries ordered by updated_at descending, plus the
// total number of matching rows.
func List(ctx context.Context, db *sql.DB, filter ListFilter) ([]minutes.MeetingSummary, int, error) {
	where := " WHERE 1=1"
	var args []any
	if !filter.IncludeDeleted {
		where += " AND deleted_at IS NULL"
	}
	if filter.Jenis != "" {
		where += " AND jenis = ?"
		args = append(args, filter.Jenis)
	}

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM meetings"+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `
		SELECT id, siri, title, jenis, tarikh, source, previous_id,
			COALESCE(json_array_length(record_json, '$.MattersArising'), 0),
			created_at, updated_at, deleted_at
		FROM meetings` + where + `
		ORDER BY updated_at DESC, id DESC
		LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	summaries := []minutes.MeetingSummary{}
	for rows.Next() {
		var (
			s          minutes.MeetingSummary
			previousID sql.NullString
			deletedAt  sql.NullInt64
		)
		if err := rows.Scan(
			&s.ID, &s.Siri, &s.Title, &s.Jenis, &s.Tarikh, &s.Source, &previousID,
			&s.MattersArising, &s.CreatedAt, &s.UpdatedAt, &deletedAt,
		); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		s.PreviousID = fromNullString(previousID)
		if deletedAt.Valid {
			s.DeletedAt = &deletedAt.Int64
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return summaries, total, nil
}

// PurgeDeleted permanently removes soft-deleted meetings. With olderThan > 0,
// only meetings deleted before that Unix timestamp are removed.
func PurgeDeleted(ctx context.Context, db *sql.DB, olderThan int64) (int, error) {
	query := "DELETE FROM meetings WHERE deleted_at IS NOT NULL"
	var args []any
	if olderThan > 0 {
		query += " AND deleted_at < ?"
		args = append(args, olderThan)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

func expectOneRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// scanMeeting scans a single row into a Meeting.
func scanMeeting(row *sql.Row) (*minutes.Meeting, error) {
	var (
		m          minutes.Meeting
		recordJSON string
		previousID sql.NullString
		deletedAt  sql.NullInt64
	)

	err := row.Scan(
		&m.ID, &m.Siri, &m.SiriNorm, &m.Title, &m.Jenis, &m.Tarikh,
		&recordJSON, &m.Source, &previousID, &m.CreatedAt, &m.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(recordJSON), &m.Record); err != nil {
		return nil, err
	}
	m.Record.Complete()
	m.PreviousID = fromNullString(previousID)
	if deletedAt.Valid {
		m.DeletedAt = &deletedAt.Int64
	}

	return &m, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
