package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/mowens/linkvault/internal/domain"
	"github.com/mowens/linkvault/internal/events"
	"github.com/mowens/linkvault/internal/norm"
)

// LinkStore handles link persistence operations.
type LinkStore struct {
	store *Store
}

// LinkCreateParams contains parameters for creating a new link.
type LinkCreateParams struct {
	UUID        string // optional: force specific UUID instead of auto-generating
	URL         string
	Title       *string
	Description *string
	Notes       *string
	FolderUUID  *string
	TagUUIDs    []string
	IsFavorite  bool
	IsPinned    bool
	DateAdded   string // optional ISO-8601 override, defaults to now

	MetadataFetched          bool
	LastMetadataFetchAttempt *string // ISO-8601
}

// Create creates a new link and logs a link.created event. It returns a
// DuplicateURLError when the store already holds a link with the same
// normalized URL.
func (ls *LinkStore) Create(params LinkCreateParams) (*domain.Link, error) {
	if norm.URLKey(params.URL) == "" {
		return nil, fmt.Errorf("invalid URL: must not be empty")
	}

	if existing, err := ls.GetByURL(params.URL); err == nil && existing != nil {
		return nil, &domain.DuplicateURLError{URL: params.URL}
	}

	linkUUID := params.UUID
	if linkUUID == "" {
		linkUUID = uuid.New().String()
	}

	var created *domain.Link
	err := ls.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		var query string
		var args []interface{}

		if params.DateAdded != "" {
			query = `
				INSERT INTO links (
					uuid, url, title, description, notes, is_favorite, is_pinned,
					folder_uuid, metadata_fetched, last_metadata_fetch_attempt, date_added
				)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`
			args = []interface{}{
				linkUUID, params.URL, params.Title, params.Description, params.Notes,
				params.IsFavorite, params.IsPinned, params.FolderUUID,
				params.MetadataFetched, params.LastMetadataFetchAttempt, params.DateAdded,
			}
		} else {
			query = `
				INSERT INTO links (
					uuid, url, title, description, notes, is_favorite, is_pinned,
					folder_uuid, metadata_fetched, last_metadata_fetch_attempt
				)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`
			args = []interface{}{
				linkUUID, params.URL, params.Title, params.Description, params.Notes,
				params.IsFavorite, params.IsPinned, params.FolderUUID,
				params.MetadataFetched, params.LastMetadataFetchAttempt,
			}
		}

		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to create link: %w", err)
		}

		for _, tagUUID := range params.TagUUIDs {
			if _, err := tx.Exec(`INSERT OR IGNORE INTO link_tags (link_uuid, tag_uuid) VALUES (?, ?)`, linkUUID, tagUUID); err != nil {
				return fmt.Errorf("failed to tag link: %w", err)
			}
		}

		created = &domain.Link{UUID: linkUUID, URL: params.URL}
		return ew.LogLinkCreated(tx, created)
	})
	if err != nil {
		return nil, err
	}

	return ls.GetByUUID(created.UUID)
}

const linkColumns = `uuid, url, date_added, title, description, notes,
	   is_favorite, is_pinned, folder_uuid, metadata_fetched, last_metadata_fetch_attempt`

func (ls *LinkStore) scanLink(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Link, error) {
	link := &domain.Link{}
	// Use string intermediates for time fields since SQLite stores times as strings
	var dateAdded string
	var lastFetch *string

	err := row.Scan(
		&link.UUID, &link.URL, &dateAdded, &link.Title, &link.Description, &link.Notes,
		&link.IsFavorite, &link.IsPinned, &link.FolderUUID, &link.MetadataFetched, &lastFetch,
	)
	if err != nil {
		return nil, err
	}

	if parsed, err := domain.ParseTime(dateAdded); err == nil {
		link.DateAdded = parsed
	}
	if lastFetch != nil {
		if parsed, err := domain.ParseTime(*lastFetch); err == nil {
			link.LastMetadataFetchAttempt = &parsed
		}
	}
	return link, nil
}

// GetByUUID retrieves a link by UUID, including its tag relation.
func (ls *LinkStore) GetByUUID(linkUUID string) (*domain.Link, error) {
	row := ls.store.db.QueryRow(`SELECT `+linkColumns+` FROM links WHERE uuid = ?`, linkUUID)
	link, err := ls.scanLink(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.NotFoundError{Resource: "link", Key: linkUUID}
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	if err := ls.loadTags(link); err != nil {
		return nil, err
	}
	return link, nil
}

// GetByURL retrieves a link whose normalized URL matches the given URL.
func (ls *LinkStore) GetByURL(rawURL string) (*domain.Link, error) {
	links, err := ls.List(LinkListOptions{})
	if err != nil {
		return nil, err
	}
	key := norm.URLKey(rawURL)
	for i := range links {
		if norm.URLKey(links[i].URL) == key {
			return &links[i], nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "link", Key: rawURL}
}

// LinkListOptions filters the link listing.
type LinkListOptions struct {
	FolderUUID    string
	TagUUID       string
	FavoritesOnly bool
	PinnedOnly    bool
	NeedsMetadata bool // links with metadata_fetched = 0
}

// List returns links newest first, with tag relations loaded.
func (ls *LinkStore) List(opts LinkListOptions) ([]domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links`
	var conditions []string
	var args []interface{}

	if opts.FolderUUID != "" {
		conditions = append(conditions, "folder_uuid = ?")
		args = append(args, opts.FolderUUID)
	}
	if opts.TagUUID != "" {
		conditions = append(conditions, "uuid IN (SELECT link_uuid FROM link_tags WHERE tag_uuid = ?)")
		args = append(args, opts.TagUUID)
	}
	if opts.FavoritesOnly {
		conditions = append(conditions, "is_favorite = 1")
	}
	if opts.PinnedOnly {
		conditions = append(conditions, "is_pinned = 1")
	}
	if opts.NeedsMetadata {
		conditions = append(conditions, "metadata_fetched = 0")
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY is_pinned DESC, date_added DESC"

	rows, err := ls.store.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		link, err := ls.scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, *link)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range links {
		if err := ls.loadTags(&links[i]); err != nil {
			return nil, err
		}
	}
	return links, nil
}

func (ls *LinkStore) loadTags(link *domain.Link) error {
	rows, err := ls.store.db.Query(`
		SELECT lt.tag_uuid
		FROM link_tags lt
		JOIN tags t ON t.uuid = lt.tag_uuid
		WHERE lt.link_uuid = ?
		ORDER BY t.name
	`, link.UUID)
	if err != nil {
		return fmt.Errorf("failed to query link tags: %w", err)
	}
	defer rows.Close()

	link.TagUUIDs = nil
	for rows.Next() {
		var tagUUID string
		if err := rows.Scan(&tagUUID); err != nil {
			return fmt.Errorf("failed to scan link tag: %w", err)
		}
		link.TagUUIDs = append(link.TagUUIDs, tagUUID)
	}
	return rows.Err()
}

// LinkUpdateParams contains optional field updates; nil fields are unchanged.
type LinkUpdateParams struct {
	Title       *string
	Description *string
	Notes       *string
	IsFavorite  *bool
	IsPinned    *bool

	// SetFolder assigns FolderUUID when true, even to nil (unfiled).
	SetFolder  bool
	FolderUUID *string

	// SetTags replaces the tag relation when true.
	SetTags  bool
	TagUUIDs []string
}

// Update applies field updates to a link and logs a link.updated event.
func (ls *LinkStore) Update(linkUUID string, params LinkUpdateParams) error {
	if _, err := ls.GetByUUID(linkUUID); err != nil {
		return err
	}

	return ls.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		changes := map[string]interface{}{}

		set := func(column string, value interface{}) error {
			if _, err := tx.Exec(`UPDATE links SET `+column+` = ? WHERE uuid = ?`, value, linkUUID); err != nil {
				return fmt.Errorf("failed to update link %s: %w", column, err)
			}
			changes[column] = value
			return nil
		}

		if params.Title != nil {
			if err := set("title", *params.Title); err != nil {
				return err
			}
		}
		if params.Description != nil {
			if err := set("description", *params.Description); err != nil {
				return err
			}
		}
		if params.Notes != nil {
			if err := set("notes", *params.Notes); err != nil {
				return err
			}
		}
		if params.IsFavorite != nil {
			if err := set("is_favorite", *params.IsFavorite); err != nil {
				return err
			}
		}
		if params.IsPinned != nil {
			if err := set("is_pinned", *params.IsPinned); err != nil {
				return err
			}
		}
		if params.SetFolder {
			if _, err := tx.Exec(`UPDATE links SET folder_uuid = ? WHERE uuid = ?`, params.FolderUUID, linkUUID); err != nil {
				return fmt.Errorf("failed to update link folder: %w", err)
			}
			changes["folder_uuid"] = params.FolderUUID
		}
		if params.SetTags {
			if _, err := tx.Exec(`DELETE FROM link_tags WHERE link_uuid = ?`, linkUUID); err != nil {
				return fmt.Errorf("failed to clear link tags: %w", err)
			}
			for _, tagUUID := range params.TagUUIDs {
				if _, err := tx.Exec(`INSERT OR IGNORE INTO link_tags (link_uuid, tag_uuid) VALUES (?, ?)`, linkUUID, tagUUID); err != nil {
					return fmt.Errorf("failed to tag link: %w", err)
				}
			}
			changes["tags"] = params.TagUUIDs
		}

		if len(changes) == 0 {
			return nil
		}
		return ew.LogLinkUpdated(tx, linkUUID, changes)
	})
}

// MarkMetadataFetched records a metadata fetch attempt. title, description
// may be nil to leave the stored values alone (a failed fetch still stamps
// the attempt time).
func (ls *LinkStore) MarkMetadataFetched(linkUUID string, title, description *string, fetched bool, attemptedAt string) error {
	return ls.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		if title != nil {
			if _, err := tx.Exec(`UPDATE links SET title = ? WHERE uuid = ? AND (title IS NULL OR title = '')`, *title, linkUUID); err != nil {
				return fmt.Errorf("failed to update link title: %w", err)
			}
		}
		if description != nil {
			if _, err := tx.Exec(`UPDATE links SET description = ? WHERE uuid = ? AND (description IS NULL OR description = '')`, *description, linkUUID); err != nil {
				return fmt.Errorf("failed to update link description: %w", err)
			}
		}
		if _, err := tx.Exec(`UPDATE links SET metadata_fetched = ?, last_metadata_fetch_attempt = ? WHERE uuid = ?`, fetched, attemptedAt, linkUUID); err != nil {
			return fmt.Errorf("failed to update link fetch status: %w", err)
		}
		return nil
	})
}

// Delete removes a link and logs a link.deleted event. Asset cleanup is the
// caller's responsibility (see assets.Store.DeleteLinkDir).
func (ls *LinkStore) Delete(linkUUID string) error {
	link, err := ls.GetByUUID(linkUUID)
	if err != nil {
		return err
	}

	return ls.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		if _, err := tx.Exec(`DELETE FROM links WHERE uuid = ?`, linkUUID); err != nil {
			return fmt.Errorf("failed to delete link: %w", err)
		}
		return ew.LogLinkDeleted(tx, link)
	})
}

// Count returns the number of links in the store.
func (ls *LinkStore) Count() (int, error) {
	var count int
	if err := ls.store.db.QueryRow(`SELECT COUNT(*) FROM links`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return count, nil
}
