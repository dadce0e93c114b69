// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus is the terminal outcome of a publish cycle.
type PostStatus string

const (
	PostSucceeded PostStatus = "succeeded"
	PostFailed    PostStatus = "failed"
)

// PostRecord is the durable outcome of one produce-and-publish cycle.
// Records are append-only: once written they are never mutated, only
// superseded by a new record on a later attempt.
type PostRecord struct {
	ID             uuid.UUID        `json:"id"`
	TopicID        int              `json:"topic_id"`
	Body           string           `json:"body"`
	Hashtags       []string         `json:"hashtags"`
	ImageRef       string           `json:"image_ref,omitempty"`
	PlatformPostID *string          `json:"platform_post_id,omitempty"`
	Status         PostStatus       `json:"status"`
	FailureReason  *string          `json:"failure_reason,omitempty"`
	Method         GenerationMethod `json:"method"`
	Attempts       int              `json:"attempts"`
	CreatedAt      time.Time        `json:"created_at"`
}
