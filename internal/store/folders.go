package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/mowens/linkvault/internal/domain"
	"github.com/mowens/linkvault/internal/events"
	"github.com/mowens/linkvault/internal/norm"
)

// FolderStore handles folder persistence operations.
type FolderStore struct {
	store *Store
}

// FolderCreateParams contains parameters for creating a new folder.
type FolderCreateParams struct {
	UUID        string // optional: force specific UUID instead of auto-generating
	Name        string
	IconName    string
	SortOrder   int
	DateCreated string // optional ISO-8601 override, defaults to now
}

// Create creates a new folder and logs a folder.created event.
func (fs *FolderStore) Create(params FolderCreateParams) (*domain.Folder, error) {
	if err := domain.ValidateName(params.Name); err != nil {
		return nil, err
	}

	folderUUID := params.UUID
	if folderUUID == "" {
		folderUUID = uuid.New().String()
	}
	iconName := params.IconName
	if iconName == "" {
		iconName = "folder"
	}

	var created *domain.Folder
	err := fs.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		var query string
		var args []interface{}

		if params.DateCreated != "" {
			query = `INSERT INTO folders (uuid, name, icon_name, sort_order, date_created) VALUES (?, ?, ?, ?, ?)`
			args = []interface{}{folderUUID, norm.Name(params.Name), iconName, params.SortOrder, params.DateCreated}
		} else {
			query = `INSERT INTO folders (uuid, name, icon_name, sort_order) VALUES (?, ?, ?, ?)`
			args = []interface{}{folderUUID, norm.Name(params.Name), iconName, params.SortOrder}
		}

		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to create folder: %w", err)
		}

		created = &domain.Folder{
			UUID:      folderUUID,
			Name:      norm.Name(params.Name),
			IconName:  iconName,
			SortOrder: params.SortOrder,
		}
		return ew.LogFolderCreated(tx, created)
	})
	if err != nil {
		return nil, err
	}

	return fs.GetByUUID(created.UUID)
}

// GetByUUID retrieves a folder by UUID.
func (fs *FolderStore) GetByUUID(folderUUID string) (*domain.Folder, error) {
	folder := &domain.Folder{}
	// Use a string intermediate for the time field since SQLite stores times as strings
	var dateCreated string

	err := fs.store.db.QueryRow(`
		SELECT uuid, name, icon_name, sort_order, date_created
		FROM folders WHERE uuid = ?
	`, folderUUID).Scan(
		&folder.UUID, &folder.Name, &folder.IconName, &folder.SortOrder, &dateCreated,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.NotFoundError{Resource: "folder", Key: folderUUID}
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	if parsed, err := domain.ParseTime(dateCreated); err == nil {
		folder.DateCreated = parsed
	}
	return folder, nil
}

// GetByName retrieves a folder whose normalized name matches the given name.
func (fs *FolderStore) GetByName(name string) (*domain.Folder, error) {
	folders, err := fs.List()
	if err != nil {
		return nil, err
	}
	key := norm.Name(name)
	for i := range folders {
		if norm.Name(folders[i].Name) == key {
			return &folders[i], nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "folder", Key: name}
}

// List returns all folders ordered by sort order, then name.
func (fs *FolderStore) List() ([]domain.Folder, error) {
	rows, err := fs.store.db.Query(`
		SELECT uuid, name, icon_name, sort_order, date_created
		FROM folders
		ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query folders: %w", err)
	}
	defer rows.Close()

	var folders []domain.Folder
	for rows.Next() {
		var folder domain.Folder
		var dateCreated string
		if err := rows.Scan(&folder.UUID, &folder.Name, &folder.IconName, &folder.SortOrder, &dateCreated); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		if parsed, err := domain.ParseTime(dateCreated); err == nil {
			folder.DateCreated = parsed
		}
		folders = append(folders, folder)
	}
	return folders, rows.Err()
}

// Rename updates a folder's name.
func (fs *FolderStore) Rename(folderUUID, name string) error {
	if err := domain.ValidateName(name); err != nil {
		return err
	}

	return fs.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		res, err := tx.Exec(`UPDATE folders SET name = ? WHERE uuid = ?`, norm.Name(name), folderUUID)
		if err != nil {
			return fmt.Errorf("failed to rename folder: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &domain.NotFoundError{Resource: "folder", Key: folderUUID}
		}
		return nil
	})
}

// SetIcon updates a folder's icon name.
func (fs *FolderStore) SetIcon(folderUUID, iconName string) error {
	return fs.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		res, err := tx.Exec(`UPDATE folders SET icon_name = ? WHERE uuid = ?`, iconName, folderUUID)
		if err != nil {
			return fmt.Errorf("failed to set folder icon: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &domain.NotFoundError{Resource: "folder", Key: folderUUID}
		}
		return nil
	})
}

// Reorder assigns sort order positions following the given UUID order.
// Folders not listed keep their relative order after the listed ones.
func (fs *FolderStore) Reorder(orderedUUIDs []string) error {
	return fs.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		for i, folderUUID := range orderedUUIDs {
			if _, err := tx.Exec(`UPDATE folders SET sort_order = ? WHERE uuid = ?`, i, folderUUID); err != nil {
				return fmt.Errorf("failed to reorder folder %s: %w", folderUUID, err)
			}
		}
		return nil
	})
}

// Delete removes a folder. Member links keep their rows; the folder
// reference is nullified by the schema's ON DELETE SET NULL.
func (fs *FolderStore) Delete(folderUUID string) error {
	folder, err := fs.GetByUUID(folderUUID)
	if err != nil {
		return err
	}

	return fs.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		if _, err := tx.Exec(`DELETE FROM folders WHERE uuid = ?`, folderUUID); err != nil {
			return fmt.Errorf("failed to delete folder: %w", err)
		}
		return ew.LogFolderDeleted(tx, folder)
	})
}
