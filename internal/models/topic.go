// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Category is one of the fixed content categories the pipeline posts about.
type Category string

const (
	CategoryBitcoin   Category = "Bitcoin"
	CategoryLightning Category = "Lightning Network"
	CategoryNostr     Category = "Nostr"
	CategoryPrivacy   Category = "Privacy"
	CategoryNodeSetup Category = "Node Setup"
)

// Categories lists every known category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryBitcoin,
		CategoryLightning,
		CategoryNostr,
		CategoryPrivacy,
		CategoryNodeSetup,
	}
}

// Topic is a subject the pipeline may post about. Topics are seeded from
// the catalog at first startup and are never deleted; only Enabled and
// Priority change afterwards, through configuration updates.
type Topic struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Enabled  bool     `json:"enabled"`
	Priority int      `json:"priority"`
}
