// Package backup serializes the link store to a portable, id-free JSON
// document and re-hydrates such documents into an existing store.
//
// Relationships are denormalized to names because record ids are not portable
// across stores. Binary assets are never included; they are asset-store-local
// and re-fetched, not backed up.
package backup

import (
	"time"

	"github.com/mowens/linkvault/internal/domain"
)

// CurrentVersion is the backup document version this build reads and writes.
const CurrentVersion = domain.BackupVersion

// Document is the portable snapshot of folders, tags, and links.
type Document struct {
	Version   int
	CreatedAt time.Time
	Folders   []FolderRecord
	Tags      []TagRecord
	Links     []LinkRecord
}

// FolderRecord is a folder without its store identity.
type FolderRecord struct {
	Name        string
	IconName    string
	DateCreated time.Time
	SortOrder   int
}

// TagRecord is a tag without its store identity.
type TagRecord struct {
	Name        string
	ColorHex    string
	DateCreated time.Time
}

// LinkRecord is a link with relationships flattened to names.
type LinkRecord struct {
	URL         string
	DateAdded   time.Time
	Title       *string
	Description *string
	Notes       *string
	IsFavorite  bool
	IsPinned    bool
	FolderName  *string
	TagNames    []string
}

// Report summarizes what an import did.
type Report struct {
	FoldersCreated int `json:"folders_created"`
	FoldersSkipped int `json:"folders_skipped"`
	TagsCreated    int `json:"tags_created"`
	TagsSkipped    int `json:"tags_skipped"`
	LinksCreated   int `json:"links_created"`
	LinksSkipped   int `json:"links_skipped"`
}
