package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultTagColor is the fallback tag color when a hex string does not parse.
const DefaultTagColor = "#007AFF"

// BackupVersion is the only backup document version this build reads or writes.
const BackupVersion = 1

var colorHexRegex = regexp.MustCompile(`^[0-9a-fA-F]{6}([0-9a-fA-F]{2})?$`)

// UUIDRegex validates lowercase UUID format
var UUIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateUUID validates a UUID format (lowercase with hyphens)
func ValidateUUID(uuid string) error {
	if !UUIDRegex.MatchString(uuid) {
		return fmt.Errorf("invalid UUID: must be lowercase UUID format (e.g., 550e8400-e29b-41d4-a716-446655440000)")
	}
	return nil
}

// NormalizeColorHex returns a "#RRGGBB" or "#RRGGBBAA" color string, falling
// back to DefaultTagColor when the input does not parse as 6 or 8 hex digits.
func NormalizeColorHex(s string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if !colorHexRegex.MatchString(trimmed) {
		return DefaultTagColor
	}
	return "#" + strings.ToUpper(trimmed)
}

// ValidateName checks that a folder or tag name is non-empty after trimming.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("invalid name: must not be empty")
	}
	return nil
}

// ValidateResourceType validates an event resource type
func ValidateResourceType(resourceType string) error {
	switch resourceType {
	case "link", "folder", "tag", "store", "backup":
		return nil
	default:
		return fmt.Errorf("invalid resource type: must be one of: link, folder, tag, store, backup")
	}
}

// UnsupportedVersionError is returned when a backup document's version is not
// the one this build understands. No mutation happens before it is raised.
type UnsupportedVersionError struct {
	Version int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported backup version %d (supported: %d)", e.Version, BackupVersion)
}

// NotFoundError is returned when a record lookup misses.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// DuplicateURLError is returned when creating a link whose normalized URL is
// already present in the store.
type DuplicateURLError struct {
	URL string
}

func (e *DuplicateURLError) Error() string {
	return fmt.Sprintf("link already exists for URL: %s", e.URL)
}
