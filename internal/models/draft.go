// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the entities flowing through the content
// pipeline: topics, drafts, image artifacts, post records, and the
// persisted schedule state.
package models

import "strings"

// GenerationMethod records which strategy produced a draft's body text.
type GenerationMethod string

const (
	// MethodPrimary means the external text-generation provider succeeded.
	MethodPrimary GenerationMethod = "primary"
	// MethodFallback means the local template strategy was used.
	MethodFallback GenerationMethod = "fallback"
)

// ContentDraft is the transient output of the content generator: body text
// plus hashtags for one topic. It is consumed immediately by the image
// renderer and publisher and never persisted on its own.
type ContentDraft struct {
	Topic    Topic
	Body     string
	Hashtags []string
	Method   GenerationMethod
}

// FullText returns the body followed by the hashtag block, the form
// actually submitted to the platform.
func (d ContentDraft) FullText() string {
	if len(d.Hashtags) == 0 {
		return d.Body
	}
	return d.Body + "\n\n" + strings.Join(d.Hashtags, " ")
}
