// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"pulsepost/internal/models"
)

// ScheduleStateStore persists the scheduler's single-row state so the
// posting cadence and rotation fairness survive a restart.
type ScheduleStateStore struct {
	db *sql.DB
}

// NewScheduleStateStore creates a new ScheduleStateStore with the given database connection.
func NewScheduleStateStore(db *sql.DB) *ScheduleStateStore {
	return &ScheduleStateStore{db: db}
}

// Load reads the persisted schedule state. The row always exists; the
// initial migration inserts it.
func (s *ScheduleStateStore) Load(ctx context.Context) (models.ScheduleState, error) {
	var state models.ScheduleState
	var intervalSeconds int64
	var nextFire sql.NullTime
	var recent []byte

	err := s.db.QueryRowContext(ctx, `
		SELECT interval_seconds, next_fire_at, enabled, last_status, recent_topics, updated_at
		FROM schedule_state WHERE id = 1
	`).Scan(&intervalSeconds, &nextFire, &state.Enabled, &state.LastStatus, &recent, &state.UpdatedAt)
	if err != nil {
		return state, fmt.Errorf("load schedule state: %w", err)
	}

	state.Interval = time.Duration(intervalSeconds) * time.Second
	if nextFire.Valid {
		state.NextFireAt = nextFire.Time
	}
	if err := json.Unmarshal(recent, &state.RecentTopics); err != nil {
		return state, fmt.Errorf("unmarshal recent topics: %w", err)
	}
	return state, nil
}

// Save writes the schedule state back to its row.
func (s *ScheduleStateStore) Save(ctx context.Context, state models.ScheduleState) error {
	recent, err := json.Marshal(state.RecentTopics)
	if err != nil {
		return fmt.Errorf("marshal recent topics: %w", err)
	}

	var nextFire any
	if !state.NextFireAt.IsZero() {
		nextFire = state.NextFireAt
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE schedule_state SET
			interval_seconds = $1, next_fire_at = $2, enabled = $3,
			last_status = $4, recent_topics = $5, updated_at = NOW()
		WHERE id = 1
	`, int64(state.Interval/time.Second), nextFire, state.Enabled,
		state.LastStatus, recent,
	)
	if err != nil {
		return fmt.Errorf("save schedule state: %w", err)
	}
	return nil
}
