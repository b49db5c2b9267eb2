// Package domain defines the record types shared across the store, merge,
// and backup layers.
package domain

import (
	"time"
)

// TimeLayout is the ISO-8601 layout used everywhere a timestamp crosses a
// storage or wire boundary.
const TimeLayout = "2006-01-02T15:04:05Z"

// FormatTime formats a time.Time as ISO-8601 with Z suffix.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses an ISO-8601 timestamp.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

// Folder groups links. A link belongs to at most one folder.
type Folder struct {
	UUID        string    `json:"uuid" db:"uuid"`
	Name        string    `json:"name" db:"name"`
	IconName    string    `json:"icon_name" db:"icon_name"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
	DateCreated time.Time `json:"date_created" db:"date_created"`
}

// Tag labels links. Many-to-many with Link.
type Tag struct {
	UUID        string    `json:"uuid" db:"uuid"`
	Name        string    `json:"name" db:"name"`
	ColorHex    string    `json:"color_hex" db:"color_hex"`
	DateCreated time.Time `json:"date_created" db:"date_created"`
}

// Link is a saved URL with optional metadata and organization state.
// Favicon and preview image bytes live in the asset store keyed by UUID,
// never in the record itself.
type Link struct {
	UUID        string    `json:"uuid" db:"uuid"`
	URL         string    `json:"url" db:"url"`
	DateAdded   time.Time `json:"date_added" db:"date_added"`
	Title       *string   `json:"title,omitempty" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	IsFavorite  bool      `json:"is_favorite" db:"is_favorite"`
	IsPinned    bool      `json:"is_pinned" db:"is_pinned"`

	// FolderUUID is a weak reference; deleting the folder nullifies it.
	FolderUUID *string `json:"folder_uuid,omitempty" db:"folder_uuid"`

	// TagUUIDs is the loaded link_tags relation.
	TagUUIDs []string `json:"tag_uuids,omitempty" db:"-"`

	MetadataFetched          bool       `json:"metadata_fetched" db:"metadata_fetched"`
	LastMetadataFetchAttempt *time.Time `json:"last_metadata_fetch_attempt,omitempty" db:"last_metadata_fetch_attempt"`
}

// DisplayTitle returns the title if present, otherwise the URL.
func (l *Link) DisplayTitle() string {
	if l.Title != nil && *l.Title != "" {
		return *l.Title
	}
	return l.URL
}

// Event is a row in the event log.
type Event struct {
	ID           int64     `json:"id" db:"id"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	ResourceType string    `json:"resource_type" db:"resource_type"`
	ResourceUUID *string   `json:"resource_uuid,omitempty" db:"resource_uuid"`
	EventType    string    `json:"event_type" db:"event_type"`
	Payload      *string   `json:"payload,omitempty" db:"payload"`
}
