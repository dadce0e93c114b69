// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"pulsepost/internal/models"
)

// TopicStore handles the topic table. Rows are seeded from the catalog
// and never deleted; only enabled and priority change.
type TopicStore struct {
	db *sql.DB
}

// NewTopicStore creates a new TopicStore with the given database connection.
func NewTopicStore(db *sql.DB) *TopicStore {
	return &TopicStore{db: db}
}

// List returns all topics ordered by id.
func (s *TopicStore) List(ctx context.Context) ([]models.Topic, error) {
	return s.list(ctx, `SELECT id, name, category, enabled, priority FROM topics ORDER BY id`)
}

// ListEnabled returns the topics the scheduler may select from.
func (s *TopicStore) ListEnabled(ctx context.Context) ([]models.Topic, error) {
	return s.list(ctx, `SELECT id, name, category, enabled, priority FROM topics WHERE enabled ORDER BY id`)
}

func (s *TopicStore) list(ctx context.Context, query string) ([]models.Topic, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var items []models.Topic
	for rows.Next() {
		var t models.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.Enabled, &t.Priority); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// FindByID retrieves a topic by id. Returns nil if not found.
func (s *TopicStore) FindByID(ctx context.Context, id int) (*models.Topic, error) {
	t := &models.Topic{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, enabled, priority FROM topics WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Category, &t.Enabled, &t.Priority)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find topic by id: %w", err)
	}
	return t, nil
}

// Update changes a topic's enabled flag and priority, the only mutable
// fields.
func (s *TopicStore) Update(ctx context.Context, id int, enabled bool, priority int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE topics SET enabled = $1, priority = $2 WHERE id = $3
	`, enabled, priority, id)
	if err != nil {
		return fmt.Errorf("update topic: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update topic: id %d not found", id)
	}
	return nil
}
