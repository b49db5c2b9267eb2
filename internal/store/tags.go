package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/mowens/linkvault/internal/domain"
	"github.com/mowens/linkvault/internal/events"
	"github.com/mowens/linkvault/internal/norm"
)

// TagStore handles tag persistence operations.
type TagStore struct {
	store *Store
}

// TagCreateParams contains parameters for creating a new tag.
type TagCreateParams struct {
	UUID        string // optional: force specific UUID instead of auto-generating
	Name        string
	ColorHex    string // invalid values fall back to the default blue
	DateCreated string // optional ISO-8601 override, defaults to now
}

// Create creates a new tag and logs a tag.created event.
func (ts *TagStore) Create(params TagCreateParams) (*domain.Tag, error) {
	if err := domain.ValidateName(params.Name); err != nil {
		return nil, err
	}

	tagUUID := params.UUID
	if tagUUID == "" {
		tagUUID = uuid.New().String()
	}
	colorHex := domain.NormalizeColorHex(params.ColorHex)

	var created *domain.Tag
	err := ts.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		var query string
		var args []interface{}

		if params.DateCreated != "" {
			query = `INSERT INTO tags (uuid, name, color_hex, date_created) VALUES (?, ?, ?, ?)`
			args = []interface{}{tagUUID, norm.Name(params.Name), colorHex, params.DateCreated}
		} else {
			query = `INSERT INTO tags (uuid, name, color_hex) VALUES (?, ?, ?)`
			args = []interface{}{tagUUID, norm.Name(params.Name), colorHex}
		}

		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to create tag: %w", err)
		}

		created = &domain.Tag{
			UUID:     tagUUID,
			Name:     norm.Name(params.Name),
			ColorHex: colorHex,
		}
		return ew.LogTagCreated(tx, created)
	})
	if err != nil {
		return nil, err
	}

	return ts.GetByUUID(created.UUID)
}

// GetByUUID retrieves a tag by UUID.
func (ts *TagStore) GetByUUID(tagUUID string) (*domain.Tag, error) {
	tag := &domain.Tag{}
	var dateCreated string

	err := ts.store.db.QueryRow(`
		SELECT uuid, name, color_hex, date_created
		FROM tags WHERE uuid = ?
	`, tagUUID).Scan(&tag.UUID, &tag.Name, &tag.ColorHex, &dateCreated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.NotFoundError{Resource: "tag", Key: tagUUID}
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	if parsed, err := domain.ParseTime(dateCreated); err == nil {
		tag.DateCreated = parsed
	}
	return tag, nil
}

// GetByName retrieves a tag whose normalized name matches the given name.
func (ts *TagStore) GetByName(name string) (*domain.Tag, error) {
	tags, err := ts.List()
	if err != nil {
		return nil, err
	}
	key := norm.Name(name)
	for i := range tags {
		if norm.Name(tags[i].Name) == key {
			return &tags[i], nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "tag", Key: name}
}

// List returns all tags ordered by name.
func (ts *TagStore) List() ([]domain.Tag, error) {
	rows, err := ts.store.db.Query(`
		SELECT uuid, name, color_hex, date_created
		FROM tags
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		var dateCreated string
		if err := rows.Scan(&tag.UUID, &tag.Name, &tag.ColorHex, &dateCreated); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		if parsed, err := domain.ParseTime(dateCreated); err == nil {
			tag.DateCreated = parsed
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// Rename updates a tag's name.
func (ts *TagStore) Rename(tagUUID, name string) error {
	if err := domain.ValidateName(name); err != nil {
		return err
	}

	return ts.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		res, err := tx.Exec(`UPDATE tags SET name = ? WHERE uuid = ?`, norm.Name(name), tagUUID)
		if err != nil {
			return fmt.Errorf("failed to rename tag: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &domain.NotFoundError{Resource: "tag", Key: tagUUID}
		}
		return nil
	})
}

// Recolor updates a tag's color, falling back to the default on bad input.
func (ts *TagStore) Recolor(tagUUID, colorHex string) error {
	return ts.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		res, err := tx.Exec(`UPDATE tags SET color_hex = ? WHERE uuid = ?`, domain.NormalizeColorHex(colorHex), tagUUID)
		if err != nil {
			return fmt.Errorf("failed to recolor tag: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &domain.NotFoundError{Resource: "tag", Key: tagUUID}
		}
		return nil
	})
}

// Delete removes a tag. Join rows are cascaded by the schema; links survive.
func (ts *TagStore) Delete(tagUUID string) error {
	tag, err := ts.GetByUUID(tagUUID)
	if err != nil {
		return err
	}

	return ts.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		if _, err := tx.Exec(`DELETE FROM tags WHERE uuid = ?`, tagUUID); err != nil {
			return fmt.Errorf("failed to delete tag: %w", err)
		}
		return ew.LogTagDeleted(tx, tag)
	})
}

// LinkCount returns the number of links carrying the tag.
func (ts *TagStore) LinkCount(tagUUID string) (int, error) {
	var count int
	err := ts.store.db.QueryRow(`SELECT COUNT(*) FROM link_tags WHERE tag_uuid = ?`, tagUUID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tagged links: %w", err)
	}
	return count, nil
}
