// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// ScheduleState is the single mutable piece of process-wide state: when
// the next timed cycle fires, whether the scheduler is enabled, and the
// topic-rotation cursor. It is owned exclusively by the scheduler and
// persisted so a restart does not reset rotation fairness.
type ScheduleState struct {
	Interval     time.Duration `json:"interval"`
	NextFireAt   time.Time     `json:"next_fire_at"`
	Enabled      bool          `json:"enabled"`
	LastStatus   string        `json:"last_status"`
	RecentTopics []int         `json:"recent_topics"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Clone returns a deep copy, so readers can hold a consistent snapshot
// while the scheduler keeps mutating its own copy.
func (s ScheduleState) Clone() ScheduleState {
	out := s
	out.RecentTopics = append([]int(nil), s.RecentTopics...)
	return out
}
