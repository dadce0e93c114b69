// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"pulsepost/internal/topics"
)

// SeedTopics inserts the catalog's default topics. Runs on every startup;
// topics already present are left untouched, so operator edits to
// enabled/priority survive restarts and upgrades.
func SeedTopics(db *sql.DB) error {
	inserted := 0
	for _, t := range topics.DefaultTopics() {
		res, err := db.Exec(`
			INSERT INTO topics (name, category, enabled, priority)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO NOTHING
		`, t.Name, t.Category, t.Enabled, t.Priority)
		if err != nil {
			return fmt.Errorf("seed topic %q: %w", t.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if inserted > 0 {
		slog.Info("topic catalog seeded", "inserted", inserted)
	}
	return nil
}
