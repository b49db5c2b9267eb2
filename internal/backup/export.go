package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mowens/linkvault/internal/db"
	"github.com/mowens/linkvault/internal/store"
)

// Make builds a backup Document from the store's current state.
func Make(database *db.DB) (*Document, error) {
	s := store.New(database)

	folders, err := s.Folders.List()
	if err != nil {
		return nil, fmt.Errorf("failed to read folders: %w", err)
	}
	tags, err := s.Tags.List()
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}
	links, err := s.Links.List(store.LinkListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read links: %w", err)
	}

	folderNameByUUID := make(map[string]string, len(folders))
	for _, f := range folders {
		folderNameByUUID[f.UUID] = f.Name
	}
	tagNameByUUID := make(map[string]string, len(tags))
	for _, t := range tags {
		tagNameByUUID[t.UUID] = t.Name
	}

	doc := &Document{
		Version:   CurrentVersion,
		CreatedAt: time.Now(),
	}

	for _, f := range folders {
		doc.Folders = append(doc.Folders, FolderRecord{
			Name:        f.Name,
			IconName:    f.IconName,
			DateCreated: f.DateCreated,
			SortOrder:   f.SortOrder,
		})
	}
	for _, t := range tags {
		doc.Tags = append(doc.Tags, TagRecord{
			Name:        t.Name,
			ColorHex:    t.ColorHex,
			DateCreated: t.DateCreated,
		})
	}
	for _, l := range links {
		var folderName *string
		if l.FolderUUID != nil {
			if name, ok := folderNameByUUID[*l.FolderUUID]; ok {
				folderName = &name
			}
		}

		tagNames := []string{}
		for _, tagUUID := range l.TagUUIDs {
			if name, ok := tagNameByUUID[tagUUID]; ok {
				tagNames = append(tagNames, name)
			}
		}

		doc.Links = append(doc.Links, LinkRecord{
			URL:         l.URL,
			DateAdded:   l.DateAdded,
			Title:       l.Title,
			Description: l.Description,
			Notes:       l.Notes,
			IsFavorite:  l.IsFavorite,
			IsPinned:    l.IsPinned,
			FolderName:  folderName,
			TagNames:    tagNames,
		})
	}

	return doc, nil
}

// Export writes the store's backup document to path.
func Export(database *db.DB, path string) (*Document, error) {
	doc, err := Make(database)
	if err != nil {
		return nil, err
	}

	data, err := Encode(doc)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create backup directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	return doc, nil
}
