// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// AspectProfile selects the target dimensions of a rendered image.
type AspectProfile string

const (
	ProfileWide     AspectProfile = "wide"     // 1200x675, 16:9
	ProfileSquare   AspectProfile = "square"   // 1080x1080
	ProfilePortrait AspectProfile = "portrait" // 1080x1350, 4:5
)

// ImageArtifact is a rendered image ready for upload. It is transient:
// consumed by the publisher and then discarded, or archived to object
// storage as a side artifact of the post record.
type ImageArtifact struct {
	Data        []byte
	Profile     AspectProfile
	Width       int
	Height      int
	ContentType string
}
