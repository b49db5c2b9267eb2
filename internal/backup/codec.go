package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mowens/linkvault/internal/domain"
)

// Encode produces the backup wire form: pretty-printed JSON with object keys
// in sorted order and ISO-8601 timestamps. The ordering makes two backups of
// the same store byte-comparable, which the diff command relies on.
func Encode(doc *Document) ([]byte, error) {
	compact, err := json.Marshal(buildOrderedDocument(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent backup: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Decode parses backup bytes. It succeeds for any well-formed document shape
// so the caller can inspect Version before deciding to import.
func Decode(data []byte) (*Document, error) {
	var wire wireDocument
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to parse backup: %w", err)
	}

	doc := &Document{
		Version:   wire.Version,
		CreatedAt: parseTime(wire.CreatedAt),
	}

	for _, f := range wire.Folders {
		doc.Folders = append(doc.Folders, FolderRecord{
			Name:        f.Name,
			IconName:    f.IconName,
			DateCreated: parseTime(f.DateCreated),
			SortOrder:   f.SortOrder,
		})
	}
	for _, t := range wire.Tags {
		doc.Tags = append(doc.Tags, TagRecord{
			Name:        t.Name,
			ColorHex:    t.ColorHex,
			DateCreated: parseTime(t.DateCreated),
		})
	}
	for _, l := range wire.Links {
		tagNames := l.TagNames
		if tagNames == nil {
			tagNames = []string{}
		}
		doc.Links = append(doc.Links, LinkRecord{
			URL:         l.URL,
			DateAdded:   parseTime(l.DateAdded),
			Title:       l.Title,
			Description: l.LinkDescription,
			Notes:       l.Notes,
			IsFavorite:  l.IsFavorite,
			IsPinned:    l.IsPinned,
			FolderName:  l.FolderName,
			TagNames:    tagNames,
		})
	}

	return doc, nil
}

func parseTime(s string) time.Time {
	if t, err := domain.ParseTime(s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

// Wire structs for decoding. Field names follow the backup file format;
// the document calls a link's description "linkDescription".
type wireDocument struct {
	Version   int          `json:"version"`
	CreatedAt string       `json:"createdAt"`
	Folders   []wireFolder `json:"folders"`
	Tags      []wireTag    `json:"tags"`
	Links     []wireLink   `json:"links"`
}

type wireFolder struct {
	Name        string `json:"name"`
	IconName    string `json:"iconName"`
	DateCreated string `json:"dateCreated"`
	SortOrder   int    `json:"sortOrder"`
}

type wireTag struct {
	Name        string `json:"name"`
	ColorHex    string `json:"colorHex"`
	DateCreated string `json:"dateCreated"`
}

type wireLink struct {
	URL             string   `json:"url"`
	DateAdded       string   `json:"dateAdded"`
	Title           *string  `json:"title"`
	LinkDescription *string  `json:"linkDescription"`
	Notes           *string  `json:"notes"`
	IsFavorite      bool     `json:"isFavorite"`
	IsPinned        bool     `json:"isPinned"`
	FolderName      *string  `json:"folderName"`
	TagNames        []string `json:"tagNames"`
}

// orderedMap is a slice of key-value pairs that marshals as a JSON object
// with keys in the order they appear in the slice.
type orderedMap []keyValue

type keyValue struct {
	Key   string
	Value interface{}
}

func (om orderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, kv := range om {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyJSON, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')

		valJSON, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// buildOrderedDocument lays out the document with keys in lexicographic
// order at every level.
func buildOrderedDocument(doc *Document) orderedMap {
	folders := make([]orderedMap, 0, len(doc.Folders))
	for _, f := range doc.Folders {
		folders = append(folders, orderedMap{
			{"dateCreated", domain.FormatTime(f.DateCreated)},
			{"iconName", f.IconName},
			{"name", f.Name},
			{"sortOrder", f.SortOrder},
		})
	}

	tags := make([]orderedMap, 0, len(doc.Tags))
	for _, t := range doc.Tags {
		tags = append(tags, orderedMap{
			{"colorHex", t.ColorHex},
			{"dateCreated", domain.FormatTime(t.DateCreated)},
			{"name", t.Name},
		})
	}

	links := make([]orderedMap, 0, len(doc.Links))
	for _, l := range doc.Links {
		tagNames := l.TagNames
		if tagNames == nil {
			tagNames = []string{}
		}
		links = append(links, orderedMap{
			{"dateAdded", domain.FormatTime(l.DateAdded)},
			{"folderName", l.FolderName},
			{"isFavorite", l.IsFavorite},
			{"isPinned", l.IsPinned},
			{"linkDescription", l.Description},
			{"notes", l.Notes},
			{"tagNames", tagNames},
			{"title", l.Title},
			{"url", l.URL},
		})
	}

	return orderedMap{
		{"createdAt", domain.FormatTime(doc.CreatedAt)},
		{"folders", folders},
		{"links", links},
		{"tags", tags},
		{"version", doc.Version},
	}
}
