package database

import (
	"time"
)

// Audiobook is a persisted, validated catalog entry.
type Audiobook struct {
	ID          int64
	VideoID     string // External identifier, globally unique
	Title       string
	Description string
	Thumbnail   string
	Duration    *int // Seconds; nil when the source never reported one
	AuthorID    *int64
	Author      string // Resolved author name, empty when none
	Categories  []string
	CreatedAt   time.Time
}

// Author of one or more audiobooks, matched by exact name.
type Author struct {
	ID   int64
	Name string
}

// Category from the configured vocabulary, with explicit display order.
type Category struct {
	ID        int64
	Name      string
	SortOrder int
}

// SkippedVideo records a candidate rejected by the pipeline so it is never
// re-evaluated.
type SkippedVideo struct {
	ID        int64
	VideoID   string
	Reason    string
	CreatedAt time.Time
}

// BookRecord is a fully enriched candidate proposed for storage.
type BookRecord struct {
	VideoID     string
	Title       string
	Description string
	Thumbnail   string
	Author      string
	Duration    *int
	Categories  []string
}

// DuplicateGroup is a set of audiobooks sharing (title, author), ordered
// oldest first.
type DuplicateGroup struct {
	Title    string
	AuthorID int64
	BookIDs  []int64
}

// BookLink is the subset of an audiobook needed for link checking.
type BookLink struct {
	ID        int64
	VideoID   string
	Thumbnail string
}
