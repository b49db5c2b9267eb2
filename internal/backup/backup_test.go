package backup

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mowens/linkvault/internal/db"
	"github.com/mowens/linkvault/internal/domain"
	"github.com/mowens/linkvault/internal/store"
	"github.com/mowens/linkvault/internal/testutil"
)

func seedStore(t *testing.T) (*db.DB, *store.Store) {
	t.Helper()
	database, _ := testutil.TempDB(t)
	s := store.New(database)

	folder, err := s.Folders.Create(store.FolderCreateParams{Name: "Work", IconName: "briefcase"})
	testutil.AssertNoError(t, err)
	tag, err := s.Tags.Create(store.TagCreateParams{Name: "Tech", ColorHex: "#AABBCC"})
	testutil.AssertNoError(t, err)

	title := "Example"
	notes := "remember this"
	_, err = s.Links.Create(store.LinkCreateParams{
		URL:        "https://example.com",
		Title:      &title,
		Notes:      &notes,
		FolderUUID: &folder.UUID,
		TagUUIDs:   []string{tag.UUID},
		IsFavorite: true,
		DateAdded:  "2024-02-01T08:00:00Z",
	})
	testutil.AssertNoError(t, err)
	_, err = s.Links.Create(store.LinkCreateParams{
		URL:       "https://other.example.com",
		DateAdded: "2024-02-02T08:00:00Z",
	})
	testutil.AssertNoError(t, err)

	return database, s
}

func TestExportImportRoundTrip(t *testing.T) {
	srcDB, _ := seedStore(t)

	path := filepath.Join(t.TempDir(), "backup.json")
	doc, err := Export(srcDB, path)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, CurrentVersion, doc.Version)
	testutil.AssertEqual(t, 1, len(doc.Folders))
	testutil.AssertEqual(t, 1, len(doc.Tags))
	testutil.AssertEqual(t, 2, len(doc.Links))

	destDB, _ := testutil.TempDB(t)
	report, err := ImportFile(destDB, path)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, report.FoldersCreated)
	testutil.AssertEqual(t, 1, report.TagsCreated)
	testutil.AssertEqual(t, 2, report.LinksCreated)

	dest := store.New(destDB)
	link, err := dest.Links.GetByURL("https://example.com")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "Example", *link.Title)
	testutil.AssertEqual(t, "remember this", *link.Notes)
	testutil.AssertEqual(t, true, link.IsFavorite)

	// Relationships survive the name-based round trip.
	folder, err := dest.Folders.GetByName("Work")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "briefcase", folder.IconName)
	testutil.AssertEqual(t, folder.UUID, *link.FolderUUID)

	tag, err := dest.Tags.GetByName("Tech")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "#AABBCC", tag.ColorHex)
	testutil.AssertEqual(t, 1, len(link.TagUUIDs))
	testutil.AssertEqual(t, tag.UUID, link.TagUUIDs[0])
}

func TestImportMintsFreshIdentities(t *testing.T) {
	srcDB, src := seedStore(t)

	doc, err := Make(srcDB)
	testutil.AssertNoError(t, err)

	destDB, _ := testutil.TempDB(t)
	_, err = Import(destDB, doc)
	testutil.AssertNoError(t, err)

	srcFolder, err := src.Folders.GetByName("Work")
	testutil.AssertNoError(t, err)
	destFolder, err := store.New(destDB).Folders.GetByName("Work")
	testutil.AssertNoError(t, err)
	if srcFolder.UUID == destFolder.UUID {
		t.Fatal("imported folder should not reuse the source identity")
	}
}

func TestImportIsAdditive(t *testing.T) {
	srcDB, _ := seedStore(t)

	doc, err := Make(srcDB)
	testutil.AssertNoError(t, err)

	destDB, _ := testutil.TempDB(t)
	dest := store.New(destDB)
	keep := "Do Not Touch"
	_, err = dest.Links.Create(store.LinkCreateParams{URL: "https://example.com", Title: &keep})
	testutil.AssertNoError(t, err)

	report, err := Import(destDB, doc)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, report.LinksCreated)
	testutil.AssertEqual(t, 1, report.LinksSkipped)

	// The colliding link keeps its existing fields.
	link, err := dest.Links.GetByURL("https://example.com")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "Do Not Touch", *link.Title)
}

func TestImportRejectsUnsupportedVersion(t *testing.T) {
	destDB, _ := testutil.TempDB(t)
	dest := store.New(destDB)

	doc := &Document{
		Version:   2,
		CreatedAt: time.Now(),
		Links: []LinkRecord{
			{URL: "https://example.com", DateAdded: time.Now()},
		},
	}

	_, err := Import(destDB, doc)
	var uv *domain.UnsupportedVersionError
	if !errors.As(err, &uv) {
		t.Fatalf("expected UnsupportedVersionError, got %v", err)
	}
	testutil.AssertEqual(t, 2, uv.Version)

	// The gate fires before any mutation.
	count, err := dest.Links.Count()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 0, count)
}

func TestImportFailureLeavesStoreUntouched(t *testing.T) {
	srcDB, _ := seedStore(t)
	doc, err := Make(srcDB)
	testutil.AssertNoError(t, err)

	destDB, _ := testutil.TempDB(t)
	dest := store.New(destDB)
	_, err = dest.Links.Create(store.LinkCreateParams{URL: "https://existing.example.com"})
	testutil.AssertNoError(t, err)

	// Break the event log so the import fails inside its transaction, after
	// the folder, tag, and link inserts.
	_, err = destDB.Exec(`DROP TABLE event_log`)
	testutil.AssertNoError(t, err)

	_, err = Import(destDB, doc)
	testutil.AssertError(t, err)

	// Nothing staged became visible.
	count, err := dest.Links.Count()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, count)

	folders, err := dest.Folders.List()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 0, len(folders))

	tags, err := dest.Tags.List()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 0, len(tags))
}

func TestEncodeIsDeterministic(t *testing.T) {
	srcDB, _ := seedStore(t)

	doc, err := Make(srcDB)
	testutil.AssertNoError(t, err)
	doc.CreatedAt = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	a, err := Encode(doc)
	testutil.AssertNoError(t, err)
	b, err := Encode(doc)
	testutil.AssertNoError(t, err)
	if !bytes.Equal(a, b) {
		t.Fatal("encoding the same document twice produced different bytes")
	}

	testutil.AssertStringContains(t, string(a), `"version": 1`)
	testutil.AssertStringContains(t, string(a), `"linkDescription"`)
	testutil.AssertStringContains(t, string(a), `"createdAt": "2024-05-01T00:00:00Z"`)
}

func TestDecodeTolerantOfUnknownVersion(t *testing.T) {
	data := []byte(`{"version": 9, "createdAt": "2024-01-01T00:00:00Z", "folders": [], "tags": [], "links": []}`)
	doc, err := Decode(data)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 9, doc.Version)
}

func TestImportUnresolvedNamesDegradeGracefully(t *testing.T) {
	destDB, _ := testutil.TempDB(t)
	dest := store.New(destDB)

	missingFolder := "No Such Folder"
	doc := &Document{
		Version:   CurrentVersion,
		CreatedAt: time.Now(),
		Links: []LinkRecord{
			{
				URL:        "https://example.com",
				DateAdded:  time.Now(),
				FolderName: &missingFolder,
				TagNames:   []string{"no-such-tag"},
			},
		},
	}

	report, err := Import(destDB, doc)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, report.LinksCreated)

	link, err := dest.Links.GetByURL("https://example.com")
	testutil.AssertNoError(t, err)
	if link.FolderUUID != nil {
		t.Fatal("expected link with unknown folder name to be unfiled")
	}
	if len(link.TagUUIDs) != 0 {
		t.Fatalf("expected unknown tag names to be dropped, got %v", link.TagUUIDs)
	}
}

func TestDiffFiles(t *testing.T) {
	srcDB, src := seedStore(t)

	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.json")
	_, err := Export(srcDB, aPath)
	testutil.AssertNoError(t, err)

	identical, err := DiffFiles(aPath, aPath)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "", identical)

	_, err = src.Links.Create(store.LinkCreateParams{URL: "https://new.example.com", DateAdded: "2024-03-01T00:00:00Z"})
	testutil.AssertNoError(t, err)

	bPath := filepath.Join(dir, "b.json")
	_, err = Export(srcDB, bPath)
	testutil.AssertNoError(t, err)

	diff, err := DiffFiles(aPath, bPath)
	testutil.AssertNoError(t, err)
	testutil.AssertStringContains(t, diff, "new.example.com")
}
