// Package models defines the tour catalog records: exhibit locations, the
// media files attached to them, and the DTOs used to create, patch, export
// and import locations.
package models

import "time"

// Location is one exhibit stop identified by a physical beacon.
//
// The three attachment slices partition the location's files by Category;
// slice order is display order. They are never nil once a location has
// passed through the store (absent is represented as empty).
type Location struct {
	LocationID  string           `json:"locationId"`
	BeaconID    string           `json:"beaconId"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	AudioFiles  []FileAttachment `json:"audioFiles"`
	VideoFiles  []FileAttachment `json:"videoFiles"`
	TextFiles   []FileAttachment `json:"textFiles"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Files returns a pointer to the attachment slice holding category c.
func (l *Location) Files(c Category) *[]FileAttachment {
	switch c {
	case CategoryAudio:
		return &l.AudioFiles
	case CategoryVideo:
		return &l.VideoFiles
	default:
		return &l.TextFiles
	}
}

// Normalize replaces nil attachment slices with empty ones.
func (l *Location) Normalize() {
	for _, c := range Categories {
		if files := l.Files(c); *files == nil {
			*files = []FileAttachment{}
		}
	}
}

// Clone returns a deep copy; attachment slices are not shared.
func (l Location) Clone() Location {
	out := l
	out.AudioFiles = append([]FileAttachment{}, l.AudioFiles...)
	out.VideoFiles = append([]FileAttachment{}, l.VideoFiles...)
	out.TextFiles = append([]FileAttachment{}, l.TextFiles...)
	return out
}

// FileCount returns the number of attachments across all categories.
func (l Location) FileCount() int {
	return len(l.AudioFiles) + len(l.VideoFiles) + len(l.TextFiles)
}

// LocationInput carries the fields of a new location.
type LocationInput struct {
	BeaconID    string
	Name        string
	Description string
}

// LocationPatch is a sparse update: nil fields are left unchanged.
type LocationPatch struct {
	BeaconID    *string
	Name        *string
	Description *string
}

// Apply writes the non-nil fields of p onto l.
func (p LocationPatch) Apply(l *Location) {
	if p.BeaconID != nil {
		l.BeaconID = *p.BeaconID
	}
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p LocationPatch) IsEmpty() bool {
	return p.BeaconID == nil && p.Name == nil && p.Description == nil
}

// Health is the liveness report of the catalog.
type Health struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
}

// Stats summarises the catalog for the dashboard header.
type Stats struct {
	Locations  int `json:"locations"`
	AudioFiles int `json:"audioFiles"`
	VideoFiles int `json:"videoFiles"`
	TextFiles  int `json:"textFiles"`
}

// IDKind selects the prefix of a minted identifier.
type IDKind string

const (
	IDLocation IDKind = "loc"
	IDFile     IDKind = "file"
)
