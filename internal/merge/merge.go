// Package merge reconciles one link store into another. It is used when
// switching sync modes: the source database (the store being abandoned) is
// folded into the destination database (the store becoming active) without
// creating duplicate folders, tags, or links and without losing
// relationships.
//
// Conflict policy is destination-wins: on a name or URL collision the
// destination record is kept wholesale and the source record's fields are
// discarded. Folders are resolved before tags, tags before links; link
// relationship resolution depends on that order.
//
// The destination is mutated in a single transaction. On any failure nothing
// is committed and the destination is left exactly as it was; the caller
// keeps the prior store as the active one.
package merge

import (
	"database/sql"
	"fmt"

	"github.com/mowens/linkvault/internal/db"
	"github.com/mowens/linkvault/internal/domain"
	"github.com/mowens/linkvault/internal/events"
	"github.com/mowens/linkvault/internal/norm"
	"github.com/mowens/linkvault/internal/store"
)

// Report summarizes what a merge did.
type Report struct {
	FoldersCreated int `json:"folders_created"`
	FoldersMatched int `json:"folders_matched"`
	TagsCreated    int `json:"tags_created"`
	TagsMatched    int `json:"tags_matched"`
	LinksCreated   int `json:"links_created"`
	LinksSkipped   int `json:"links_skipped"`
}

// Merge folds the source database into the destination database. Binary
// assets are never carried across; a newly created destination link starts
// with no favicon or preview bytes and re-fetches them independently.
func Merge(source, dest *db.DB) (*Report, error) {
	sourceStore := store.New(source)
	destStore := store.New(dest)

	// Load everything up front. Merges run single-writer, so these reads
	// and the staged writes below see one consistent destination state.
	sourceFolders, err := sourceStore.Folders.List()
	if err != nil {
		return nil, fmt.Errorf("failed to read source folders: %w", err)
	}
	sourceTags, err := sourceStore.Tags.List()
	if err != nil {
		return nil, fmt.Errorf("failed to read source tags: %w", err)
	}
	sourceLinks, err := sourceStore.Links.List(store.LinkListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read source links: %w", err)
	}

	destFolders, err := destStore.Folders.List()
	if err != nil {
		return nil, fmt.Errorf("failed to read destination folders: %w", err)
	}
	destTags, err := destStore.Tags.List()
	if err != nil {
		return nil, fmt.Errorf("failed to read destination tags: %w", err)
	}
	destLinks, err := destStore.Links.List(store.LinkListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read destination links: %w", err)
	}

	// Destination lookup indices. The byUUID indices recognize records that
	// are literally the same record re-presented (both stores derived from a
	// common ancestor).
	folderByName := make(map[string]*domain.Folder, len(destFolders))
	folderByUUID := make(map[string]*domain.Folder, len(destFolders))
	for i := range destFolders {
		folderByName[norm.Name(destFolders[i].Name)] = &destFolders[i]
		folderByUUID[destFolders[i].UUID] = &destFolders[i]
	}

	tagByName := make(map[string]*domain.Tag, len(destTags))
	tagByUUID := make(map[string]*domain.Tag, len(destTags))
	for i := range destTags {
		tagByName[norm.Name(destTags[i].Name)] = &destTags[i]
		tagByUUID[destTags[i].UUID] = &destTags[i]
	}

	linkByURL := make(map[string]*domain.Link, len(destLinks))
	linkByUUID := make(map[string]*domain.Link, len(destLinks))
	for i := range destLinks {
		linkByURL[norm.URLKey(destLinks[i].URL)] = &destLinks[i]
		linkByUUID[destLinks[i].UUID] = &destLinks[i]
	}

	// Source-id -> destination-record maps so link relationships can be
	// rewired to destination identities.
	folderMap := make(map[string]*domain.Folder)
	tagMap := make(map[string]*domain.Tag)

	sourceFolderByUUID := make(map[string]*domain.Folder, len(sourceFolders))
	for i := range sourceFolders {
		sourceFolderByUUID[sourceFolders[i].UUID] = &sourceFolders[i]
	}
	sourceTagByUUID := make(map[string]*domain.Tag, len(sourceTags))
	for i := range sourceTags {
		sourceTagByUUID[sourceTags[i].UUID] = &sourceTags[i]
	}

	report := &Report{}

	tx, err := dest.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1) Folders: match by name, then by id, else create preserving the
	// source's identity and attributes.
	for i := range sourceFolders {
		src := &sourceFolders[i]

		if existing, ok := folderByName[norm.Name(src.Name)]; ok {
			folderMap[src.UUID] = existing
			report.FoldersMatched++
			continue
		}
		if existing, ok := folderByUUID[src.UUID]; ok {
			folderMap[src.UUID] = existing
			report.FoldersMatched++
			continue
		}

		if err := insertFolder(tx, src); err != nil {
			return nil, err
		}
		folderMap[src.UUID] = src
		folderByName[norm.Name(src.Name)] = src
		folderByUUID[src.UUID] = src
		report.FoldersCreated++
	}

	// 2) Tags: identical policy to folders.
	for i := range sourceTags {
		src := &sourceTags[i]

		if existing, ok := tagByName[norm.Name(src.Name)]; ok {
			tagMap[src.UUID] = existing
			report.TagsMatched++
			continue
		}
		if existing, ok := tagByUUID[src.UUID]; ok {
			tagMap[src.UUID] = existing
			report.TagsMatched++
			continue
		}

		if err := insertTag(tx, src); err != nil {
			return nil, err
		}
		tagMap[src.UUID] = src
		tagByName[norm.Name(src.Name)] = src
		tagByUUID[src.UUID] = src
		report.TagsCreated++
	}

	// 3) Links: skip on URL or id collision (destination wins, including its
	// folder/tag assignments), else create with relationships rewired.
	for i := range sourceLinks {
		src := &sourceLinks[i]

		if _, ok := linkByURL[norm.URLKey(src.URL)]; ok {
			report.LinksSkipped++
			continue
		}
		if _, ok := linkByUUID[src.UUID]; ok {
			// Link exists by id; treat as already present.
			report.LinksSkipped++
			continue
		}

		var folderUUID *string
		if src.FolderUUID != nil {
			if mapped, ok := folderMap[*src.FolderUUID]; ok {
				folderUUID = &mapped.UUID
			} else if srcFolder, ok := sourceFolderByUUID[*src.FolderUUID]; ok {
				// Tolerate a folder created earlier in this pass under a
				// different id: fall back to a name-based lookup.
				if byName, ok := folderByName[norm.Name(srcFolder.Name)]; ok {
					folderUUID = &byName.UUID
				}
			}
		}

		var tagUUIDs []string
		for _, srcTagUUID := range src.TagUUIDs {
			if mapped, ok := tagMap[srcTagUUID]; ok {
				tagUUIDs = append(tagUUIDs, mapped.UUID)
				continue
			}
			if srcTag, ok := sourceTagByUUID[srcTagUUID]; ok {
				if byName, ok := tagByName[norm.Name(srcTag.Name)]; ok {
					tagUUIDs = append(tagUUIDs, byName.UUID)
					continue
				}
			}
			// Unresolvable tags are dropped, not an error.
		}

		if err := insertLink(tx, src, folderUUID, tagUUIDs); err != nil {
			return nil, err
		}
		linkByURL[norm.URLKey(src.URL)] = src
		linkByUUID[src.UUID] = src
		report.LinksCreated++
	}

	ew := events.NewWriter(dest.DB)
	if err := ew.LogMergeCompleted(tx, report); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit merge: %w", err)
	}

	return report, nil
}

func insertFolder(tx *sql.Tx, f *domain.Folder) error {
	_, err := tx.Exec(`
		INSERT INTO folders (uuid, name, icon_name, sort_order, date_created)
		VALUES (?, ?, ?, ?, ?)
	`, f.UUID, f.Name, f.IconName, f.SortOrder, domain.FormatTime(f.DateCreated))
	if err != nil {
		return fmt.Errorf("failed to merge folder %q: %w", f.Name, err)
	}
	return nil
}

func insertTag(tx *sql.Tx, t *domain.Tag) error {
	_, err := tx.Exec(`
		INSERT INTO tags (uuid, name, color_hex, date_created)
		VALUES (?, ?, ?, ?)
	`, t.UUID, t.Name, t.ColorHex, domain.FormatTime(t.DateCreated))
	if err != nil {
		return fmt.Errorf("failed to merge tag %q: %w", t.Name, err)
	}
	return nil
}

func insertLink(tx *sql.Tx, l *domain.Link, folderUUID *string, tagUUIDs []string) error {
	var lastFetch *string
	if l.LastMetadataFetchAttempt != nil {
		formatted := domain.FormatTime(*l.LastMetadataFetchAttempt)
		lastFetch = &formatted
	}

	_, err := tx.Exec(`
		INSERT INTO links (
			uuid, url, date_added, title, description, notes,
			is_favorite, is_pinned, folder_uuid, metadata_fetched, last_metadata_fetch_attempt
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.UUID, l.URL, domain.FormatTime(l.DateAdded), l.Title, l.Description, l.Notes,
		l.IsFavorite, l.IsPinned, folderUUID, l.MetadataFetched, lastFetch)
	if err != nil {
		return fmt.Errorf("failed to merge link %q: %w", l.URL, err)
	}

	for _, tagUUID := range tagUUIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO link_tags (link_uuid, tag_uuid) VALUES (?, ?)`, l.UUID, tagUUID); err != nil {
			return fmt.Errorf("failed to merge link tags for %q: %w", l.URL, err)
		}
	}
	return nil
}
