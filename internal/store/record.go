// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides the PostgreSQL persistence layer: the append-only
// post history, the single-row schedule state, and the topic table.
package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"pulsepost/internal/models"
)

// PostRecordStore is the append-only history of publish cycles. Append is
// the sole mutation entry point; records are immutable once written.
// Clear is destructive and only ever invoked from the admin surface with
// explicit confirmation.
type PostRecordStore struct {
	db *sql.DB
}

// NewPostRecordStore creates a new PostRecordStore with the given database connection.
func NewPostRecordStore(db *sql.DB) *PostRecordStore {
	return &PostRecordStore{db: db}
}

// RecordFilter narrows List results. Zero values mean "no constraint".
type RecordFilter struct {
	Status  models.PostStatus
	TopicID int
	Limit   int
}

// Append inserts a finished cycle's record.
func (s *PostRecordStore) Append(ctx context.Context, rec *models.PostRecord) error {
	hashtags, err := json.Marshal(rec.Hashtags)
	if err != nil {
		return fmt.Errorf("marshal hashtags: %w", err)
	}

	// Records without a topic (cycle failed before selection) store NULL.
	var topicID sql.NullInt64
	if rec.TopicID != 0 {
		topicID = sql.NullInt64{Int64: int64(rec.TopicID), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO post_records (id, topic_id, body, hashtags, image_ref,
		                          platform_post_id, status, failure_reason,
		                          method, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, rec.ID, topicID, rec.Body, hashtags, rec.ImageRef,
		rec.PlatformPostID, rec.Status, rec.FailureReason,
		rec.Method, rec.Attempts, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append post record: %w", err)
	}
	return nil
}

// List returns records newest-first, optionally filtered by status and
// topic, capped at filter.Limit when positive.
func (s *PostRecordStore) List(ctx context.Context, filter RecordFilter) ([]models.PostRecord, error) {
	query := `
		SELECT id, topic_id, body, hashtags, image_ref,
		       platform_post_id, status, failure_reason,
		       method, attempts, created_at
		FROM post_records`

	var conds []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.TopicID != 0 {
		args = append(args, filter.TopicID)
		conds = append(conds, "topic_id = $"+strconv.Itoa(len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list post records: %w", err)
	}
	defer rows.Close()

	var records []models.PostRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Latest returns the most recent record, or nil when the history is empty.
func (s *PostRecordStore) Latest(ctx context.Context) (*models.PostRecord, error) {
	records, err := s.List(ctx, RecordFilter{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// ExportCSV writes the full history, newest-first, as CSV.
func (s *PostRecordStore) ExportCSV(ctx context.Context, w io.Writer) error {
	records, err := s.List(ctx, RecordFilter{})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{
		"id", "topic_id", "body", "hashtags", "image_ref",
		"platform_post_id", "status", "failure_reason",
		"method", "attempts", "created_at",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export csv header: %w", err)
	}

	for _, rec := range records {
		hashtags, err := json.Marshal(rec.Hashtags)
		if err != nil {
			return fmt.Errorf("export csv hashtags: %w", err)
		}
		row := []string{
			rec.ID.String(),
			strconv.Itoa(rec.TopicID),
			rec.Body,
			string(hashtags),
			rec.ImageRef,
			deref(rec.PlatformPostID),
			string(rec.Status),
			deref(rec.FailureReason),
			string(rec.Method),
			strconv.Itoa(rec.Attempts),
			rec.CreatedAt.Format(time.RFC3339Nano),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Clear deletes every record. Irreversible.
func (s *PostRecordStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM post_records`); err != nil {
		return fmt.Errorf("clear post records: %w", err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *PostRecordStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_records`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count post records: %w", err)
	}
	return count, nil
}

func scanRecord(rows *sql.Rows) (models.PostRecord, error) {
	var rec models.PostRecord
	var hashtags []byte
	var topicID sql.NullInt64
	if err := rows.Scan(
		&rec.ID, &topicID, &rec.Body, &hashtags, &rec.ImageRef,
		&rec.PlatformPostID, &rec.Status, &rec.FailureReason,
		&rec.Method, &rec.Attempts, &rec.CreatedAt,
	); err != nil {
		return rec, fmt.Errorf("scan post record: %w", err)
	}
	rec.TopicID = int(topicID.Int64)
	if err := json.Unmarshal(hashtags, &rec.Hashtags); err != nil {
		return rec, fmt.Errorf("unmarshal hashtags: %w", err)
	}
	return rec, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
