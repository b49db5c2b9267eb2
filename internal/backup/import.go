package backup

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/mowens/linkvault/internal/db"
	"github.com/mowens/linkvault/internal/domain"
	"github.com/mowens/linkvault/internal/events"
	"github.com/mowens/linkvault/internal/norm"
	"github.com/mowens/linkvault/internal/store"
)

// Import re-hydrates a backup document into the destination database.
//
// Importing is strictly additive: existing records are never modified or
// deleted. Records whose normalized name (folders, tags) or normalized URL
// (links) already exists are skipped. New records get fresh identities, since
// backup documents carry no ids. Everything is committed in one transaction;
// a failure at any point leaves no newly created record visible.
func Import(database *db.DB, doc *Document) (*Report, error) {
	if doc.Version != CurrentVersion {
		return nil, &domain.UnsupportedVersionError{Version: doc.Version}
	}

	s := store.New(database)

	destFolders, err := s.Folders.List()
	if err != nil {
		return nil, fmt.Errorf("failed to read folders: %w", err)
	}
	destTags, err := s.Tags.List()
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}
	destLinks, err := s.Links.List(store.LinkListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read links: %w", err)
	}

	folderUUIDByName := make(map[string]string, len(destFolders))
	for _, f := range destFolders {
		folderUUIDByName[norm.Name(f.Name)] = f.UUID
	}
	tagUUIDByName := make(map[string]string, len(destTags))
	for _, t := range destTags {
		tagUUIDByName[norm.Name(t.Name)] = t.UUID
	}
	linkByURL := make(map[string]bool, len(destLinks))
	for _, l := range destLinks {
		linkByURL[norm.URLKey(l.URL)] = true
	}

	report := &Report{}

	tx, err := database.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Folders (skip if same name exists)
	for _, record := range doc.Folders {
		key := norm.Name(record.Name)
		if _, ok := folderUUIDByName[key]; ok {
			report.FoldersSkipped++
			continue
		}

		folderUUID := uuid.New().String()
		_, err := tx.Exec(`
			INSERT INTO folders (uuid, name, icon_name, sort_order, date_created)
			VALUES (?, ?, ?, ?, ?)
		`, folderUUID, key, record.IconName, record.SortOrder, domain.FormatTime(record.DateCreated))
		if err != nil {
			return nil, fmt.Errorf("failed to import folder %q: %w", record.Name, err)
		}

		folderUUIDByName[key] = folderUUID
		report.FoldersCreated++
	}

	// Tags (skip if same name exists)
	for _, record := range doc.Tags {
		key := norm.Name(record.Name)
		if _, ok := tagUUIDByName[key]; ok {
			report.TagsSkipped++
			continue
		}

		tagUUID := uuid.New().String()
		_, err := tx.Exec(`
			INSERT INTO tags (uuid, name, color_hex, date_created)
			VALUES (?, ?, ?, ?)
		`, tagUUID, key, domain.NormalizeColorHex(record.ColorHex), domain.FormatTime(record.DateCreated))
		if err != nil {
			return nil, fmt.Errorf("failed to import tag %q: %w", record.Name, err)
		}

		tagUUIDByName[key] = tagUUID
		report.TagsCreated++
	}

	// Links (skip if same URL exists). Assets are never part of a backup, so
	// imported links start with none.
	for _, record := range doc.Links {
		key := norm.URLKey(record.URL)
		if linkByURL[key] {
			report.LinksSkipped++
			continue
		}

		linkUUID := uuid.New().String()

		var folderUUID *string
		if record.FolderName != nil {
			if resolved, ok := folderUUIDByName[norm.Name(*record.FolderName)]; ok {
				folderUUID = &resolved
			}
			// Unresolved folder names leave the link unfiled.
		}

		_, err := tx.Exec(`
			INSERT INTO links (
				uuid, url, date_added, title, description, notes,
				is_favorite, is_pinned, folder_uuid
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, linkUUID, record.URL, domain.FormatTime(record.DateAdded), record.Title,
			record.Description, record.Notes, record.IsFavorite, record.IsPinned, folderUUID)
		if err != nil {
			return nil, fmt.Errorf("failed to import link %q: %w", record.URL, err)
		}

		for _, tagName := range record.TagNames {
			resolved, ok := tagUUIDByName[norm.Name(tagName)]
			if !ok {
				// Unresolved tag names are dropped silently.
				continue
			}
			if _, err := tx.Exec(`INSERT OR IGNORE INTO link_tags (link_uuid, tag_uuid) VALUES (?, ?)`, linkUUID, resolved); err != nil {
				return nil, fmt.Errorf("failed to import link tags for %q: %w", record.URL, err)
			}
		}

		linkByURL[key] = true
		report.LinksCreated++
	}

	ew := events.NewWriter(database.DB)
	if err := ew.LogBackupImported(tx, report); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	return report, nil
}

// ImportFile reads, decodes, and imports a backup file.
func ImportFile(database *db.DB, path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}

	return Import(database, doc)
}
