// Package events writes rows to the event log. Events are written with the
// same transaction as the mutation they describe, so a rolled-back mutation
// leaves no event behind.
package events

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mowens/linkvault/internal/domain"
)

// Writer handles writing events to the event log
type Writer struct {
	db *sql.DB
}

// NewWriter creates a new event writer
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

type executor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func (w *Writer) getExecutor(tx *sql.Tx) executor {
	if tx != nil {
		return tx
	}
	return w.db
}

// LogEvent writes an event to the event log
func (w *Writer) LogEvent(tx *sql.Tx, event *domain.Event) error {
	query := `
		INSERT INTO event_log (resource_type, resource_uuid, event_type, payload)
		VALUES (?, ?, ?, ?)
	`

	executor := w.getExecutor(tx)
	_, err := executor.Exec(query, event.ResourceType, event.ResourceUUID, event.EventType, event.Payload)
	if err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// LogLinkCreated logs a link.created event
func (w *Writer) LogLinkCreated(tx *sql.Tx, link *domain.Link) error {
	return w.logResource(tx, "link", link.UUID, "link.created", map[string]interface{}{
		"url": link.URL,
	})
}

// LogLinkUpdated logs a link.updated event with the changed fields
func (w *Writer) LogLinkUpdated(tx *sql.Tx, linkUUID string, changes map[string]interface{}) error {
	return w.logResource(tx, "link", linkUUID, "link.updated", changes)
}

// LogLinkDeleted logs a link.deleted event
func (w *Writer) LogLinkDeleted(tx *sql.Tx, link *domain.Link) error {
	return w.logResource(tx, "link", link.UUID, "link.deleted", map[string]interface{}{
		"url": link.URL,
	})
}

// LogFolderCreated logs a folder.created event
func (w *Writer) LogFolderCreated(tx *sql.Tx, folder *domain.Folder) error {
	return w.logResource(tx, "folder", folder.UUID, "folder.created", map[string]interface{}{
		"name": folder.Name,
	})
}

// LogFolderDeleted logs a folder.deleted event
func (w *Writer) LogFolderDeleted(tx *sql.Tx, folder *domain.Folder) error {
	return w.logResource(tx, "folder", folder.UUID, "folder.deleted", map[string]interface{}{
		"name": folder.Name,
	})
}

// LogTagCreated logs a tag.created event
func (w *Writer) LogTagCreated(tx *sql.Tx, tag *domain.Tag) error {
	return w.logResource(tx, "tag", tag.UUID, "tag.created", map[string]interface{}{
		"name": tag.Name,
	})
}

// LogTagDeleted logs a tag.deleted event
func (w *Writer) LogTagDeleted(tx *sql.Tx, tag *domain.Tag) error {
	return w.logResource(tx, "tag", tag.UUID, "tag.deleted", map[string]interface{}{
		"name": tag.Name,
	})
}

// LogMergeCompleted logs a merge.completed event with the merge report
func (w *Writer) LogMergeCompleted(tx *sql.Tx, report interface{}) error {
	return w.logResource(tx, "store", "", "merge.completed", report)
}

// LogBackupImported logs a backup.imported event with the import report
func (w *Writer) LogBackupImported(tx *sql.Tx, report interface{}) error {
	return w.logResource(tx, "backup", "", "backup.imported", report)
}

func (w *Writer) logResource(tx *sql.Tx, resourceType, resourceUUID, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	payloadStr := string(data)
	event := &domain.Event{
		ResourceType: resourceType,
		EventType:    eventType,
		Payload:      &payloadStr,
	}
	if resourceUUID != "" {
		event.ResourceUUID = &resourceUUID
	}

	return w.LogEvent(tx, event)
}

// List returns the most recent events, newest first, up to limit.
func (w *Writer) List(limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := w.db.Query(`
		SELECT id, timestamp, resource_type, resource_uuid, event_type, payload
		FROM event_log
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.ResourceType, &e.ResourceUUID, &e.EventType, &e.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if parsed, err := domain.ParseTime(ts); err == nil {
			e.Timestamp = parsed
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
