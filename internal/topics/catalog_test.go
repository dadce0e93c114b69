// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package topics

import (
	"strings"
	"testing"

	"pulsepost/internal/models"
)

func TestSeedsCoverEveryCategory(t *testing.T) {
	for _, cat := range models.Categories() {
		seeds := Seeds(cat)
		if len(seeds) != 10 {
			t.Errorf("%s: %d seeds, want 10", cat, len(seeds))
		}
	}
}

func TestHashtagPools(t *testing.T) {
	for _, cat := range models.Categories() {
		pool := Hashtags(cat)
		if len(pool) < 15 {
			t.Errorf("%s: pool has %d tags, need at least 15", cat, len(pool))
		}

		seen := map[string]bool{}
		for _, tag := range pool {
			if !strings.HasPrefix(tag, "#") {
				t.Errorf("%s: tag %q missing # prefix", cat, tag)
			}
			if seen[tag] {
				t.Errorf("%s: duplicate tag %q", cat, tag)
			}
			seen[tag] = true
		}
	}
}

func TestHashtagsUnknownCategoryFallsBack(t *testing.T) {
	got := Hashtags(models.Category("Cooking"))
	want := Hashtags(models.CategoryBitcoin)
	if len(got) != len(want) || got[0] != want[0] {
		t.Error("unknown category did not fall back to the Bitcoin pool")
	}
}

func TestAllHashtagsExcludesCategory(t *testing.T) {
	excluded := map[string]bool{}
	for _, tag := range Hashtags(models.CategoryNostr) {
		excluded[tag] = true
	}

	for _, tag := range AllHashtags(models.CategoryNostr) {
		if excluded[tag] {
			t.Errorf("tag %q from the excluded category leaked through", tag)
		}
	}
}

func TestTemplatesHaveTopicPlaceholder(t *testing.T) {
	tmpl := Templates()
	if len(tmpl) != 10 {
		t.Fatalf("got %d templates, want 10", len(tmpl))
	}
	for i, body := range tmpl {
		if !strings.Contains(body, "{topic}") {
			t.Errorf("template %d has no {topic} placeholder: %q", i, body)
		}
	}
}

func TestDefaultTopics(t *testing.T) {
	topics := DefaultTopics()
	if len(topics) != 50 {
		t.Fatalf("got %d default topics, want 50", len(topics))
	}

	names := map[string]bool{}
	for _, topic := range topics {
		if !topic.Enabled {
			t.Errorf("%q not enabled by default", topic.Name)
		}
		if topic.Priority != 1 {
			t.Errorf("%q priority = %d, want 1", topic.Name, topic.Priority)
		}
		if names[topic.Name] {
			t.Errorf("duplicate topic name %q", topic.Name)
		}
		names[topic.Name] = true
	}
}
