// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"
)

func TestTopicStoreListSeeded(t *testing.T) {
	db := testDB(t)
	s := NewTopicStore(db)
	ctx := context.Background()

	topics, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// Five categories, ten seeds each.
	if len(topics) < 50 {
		t.Errorf("got %d topics, want at least 50 seeded", len(topics))
	}
	for _, topic := range topics {
		if topic.Name == "" || topic.Category == "" {
			t.Errorf("incomplete topic: %+v", topic)
		}
	}
}

func TestTopicStoreUpdateAndListEnabled(t *testing.T) {
	db := testDB(t)
	s := NewTopicStore(db)
	ctx := context.Background()
	id := firstTopicID(t, db)

	orig, err := s.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if orig == nil {
		t.Fatal("seeded topic not found")
	}
	t.Cleanup(func() {
		s.Update(ctx, id, orig.Enabled, orig.Priority)
	})

	if err := s.Update(ctx, id, false, 9); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := s.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID after update: %v", err)
	}
	if got.Enabled || got.Priority != 9 {
		t.Errorf("got %+v, want disabled priority 9", got)
	}

	enabled, err := s.ListEnabled(ctx)
	if err != nil {
		t.Fatalf("ListEnabled: %v", err)
	}
	for _, topic := range enabled {
		if topic.ID == id {
			t.Error("disabled topic still in ListEnabled")
		}
	}
}

func TestTopicStoreFindByIDMissing(t *testing.T) {
	db := testDB(t)
	s := NewTopicStore(db)

	got, err := s.FindByID(context.Background(), 999999)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for missing topic", got)
	}
}

func TestTopicStoreUpdateMissing(t *testing.T) {
	db := testDB(t)
	s := NewTopicStore(db)

	if err := s.Update(context.Background(), 999999, true, 1); err == nil {
		t.Error("Update on missing topic returned nil error")
	}
}
