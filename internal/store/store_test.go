package store

import (
	"errors"
	"testing"

	"github.com/mowens/linkvault/internal/domain"
	"github.com/mowens/linkvault/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, _ := testutil.TempDB(t)
	return New(database)
}

func TestFolderCRUD(t *testing.T) {
	s := newTestStore(t)

	folder, err := s.Folders.Create(FolderCreateParams{Name: "  Work  ", SortOrder: 1})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "Work", folder.Name)
	testutil.AssertEqual(t, "folder", folder.IconName)
	if folder.UUID == "" {
		t.Fatal("expected generated UUID")
	}

	byName, err := s.Folders.GetByName("Work ")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, folder.UUID, byName.UUID)

	testutil.AssertNoError(t, s.Folders.Rename(folder.UUID, "Projects"))
	renamed, err := s.Folders.GetByUUID(folder.UUID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "Projects", renamed.Name)

	_, err = s.Folders.Create(FolderCreateParams{Name: "   "})
	testutil.AssertError(t, err)

	testutil.AssertNoError(t, s.Folders.Delete(folder.UUID))
	_, err = s.Folders.GetByUUID(folder.UUID)
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestFolderReorder(t *testing.T) {
	s := newTestStore(t)

	a, err := s.Folders.Create(FolderCreateParams{Name: "Alpha", SortOrder: 0})
	testutil.AssertNoError(t, err)
	b, err := s.Folders.Create(FolderCreateParams{Name: "Beta", SortOrder: 1})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, s.Folders.Reorder([]string{b.UUID, a.UUID}))

	folders, err := s.Folders.List()
	testutil.AssertNoError(t, err)
	if len(folders) != 2 {
		t.Fatalf("expected 2 folders, got %d", len(folders))
	}
	testutil.AssertEqual(t, b.UUID, folders[0].UUID)
	testutil.AssertEqual(t, a.UUID, folders[1].UUID)
}

func TestFolderDeleteUnfilesLinks(t *testing.T) {
	s := newTestStore(t)

	folder, err := s.Folders.Create(FolderCreateParams{Name: "Work"})
	testutil.AssertNoError(t, err)
	link, err := s.Links.Create(LinkCreateParams{URL: "https://example.com", FolderUUID: &folder.UUID})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, s.Folders.Delete(folder.UUID))

	got, err := s.Links.GetByUUID(link.UUID)
	testutil.AssertNoError(t, err)
	if got.FolderUUID != nil {
		t.Fatalf("expected link to be unfiled after folder delete, got folder %s", *got.FolderUUID)
	}
}

func TestTagCRUD(t *testing.T) {
	s := newTestStore(t)

	tag, err := s.Tags.Create(TagCreateParams{Name: "golang", ColorHex: "#ff0000"})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "#FF0000", tag.ColorHex)

	// Bad colors fall back rather than fail.
	fallback, err := s.Tags.Create(TagCreateParams{Name: "reading", ColorHex: "not-a-color"})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, domain.DefaultTagColor, fallback.ColorHex)

	testutil.AssertNoError(t, s.Tags.Recolor(tag.UUID, "00ff00"))
	recolored, err := s.Tags.GetByUUID(tag.UUID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "#00FF00", recolored.ColorHex)

	tags, err := s.Tags.List()
	testutil.AssertNoError(t, err)
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	testutil.AssertEqual(t, "golang", tags[0].Name)
	testutil.AssertEqual(t, "reading", tags[1].Name)
}

func TestTagDeleteDetachesLinks(t *testing.T) {
	s := newTestStore(t)

	tag, err := s.Tags.Create(TagCreateParams{Name: "golang"})
	testutil.AssertNoError(t, err)
	link, err := s.Links.Create(LinkCreateParams{URL: "https://example.com", TagUUIDs: []string{tag.UUID}})
	testutil.AssertNoError(t, err)

	count, err := s.Tags.LinkCount(tag.UUID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, count)

	testutil.AssertNoError(t, s.Tags.Delete(tag.UUID))

	got, err := s.Links.GetByUUID(link.UUID)
	testutil.AssertNoError(t, err)
	if len(got.TagUUIDs) != 0 {
		t.Fatalf("expected no tags after tag delete, got %v", got.TagUUIDs)
	}
}

func TestLinkCreateDuplicateURL(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Links.Create(LinkCreateParams{URL: "https://example.com/post"})
	testutil.AssertNoError(t, err)

	// The same URL in a different surface form is still a duplicate.
	_, err = s.Links.Create(LinkCreateParams{URL: "example.com/post"})
	var dup *domain.DuplicateURLError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateURLError, got %v", err)
	}

	count, err := s.Links.Count()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, count)
}

func TestLinkListFilters(t *testing.T) {
	s := newTestStore(t)

	folder, err := s.Folders.Create(FolderCreateParams{Name: "Work"})
	testutil.AssertNoError(t, err)
	tag, err := s.Tags.Create(TagCreateParams{Name: "golang"})
	testutil.AssertNoError(t, err)

	_, err = s.Links.Create(LinkCreateParams{
		URL:        "https://a.example.com",
		FolderUUID: &folder.UUID,
		TagUUIDs:   []string{tag.UUID},
		IsFavorite: true,
		DateAdded:  "2024-01-01T00:00:00Z",
	})
	testutil.AssertNoError(t, err)
	pinned, err := s.Links.Create(LinkCreateParams{
		URL:       "https://b.example.com",
		IsPinned:  true,
		DateAdded: "2023-01-01T00:00:00Z",
	})
	testutil.AssertNoError(t, err)

	all, err := s.Links.List(LinkListOptions{})
	testutil.AssertNoError(t, err)
	if len(all) != 2 {
		t.Fatalf("expected 2 links, got %d", len(all))
	}
	// Pinned links sort first even when older.
	testutil.AssertEqual(t, pinned.UUID, all[0].UUID)

	inFolder, err := s.Links.List(LinkListOptions{FolderUUID: folder.UUID})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, len(inFolder))

	tagged, err := s.Links.List(LinkListOptions{TagUUID: tag.UUID})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, len(tagged))

	favorites, err := s.Links.List(LinkListOptions{FavoritesOnly: true})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, len(favorites))

	needing, err := s.Links.List(LinkListOptions{NeedsMetadata: true})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 2, len(needing))
}

func TestLinkUpdate(t *testing.T) {
	s := newTestStore(t)

	folder, err := s.Folders.Create(FolderCreateParams{Name: "Work"})
	testutil.AssertNoError(t, err)
	link, err := s.Links.Create(LinkCreateParams{URL: "https://example.com", FolderUUID: &folder.UUID})
	testutil.AssertNoError(t, err)

	title := "Example"
	fav := true
	testutil.AssertNoError(t, s.Links.Update(link.UUID, LinkUpdateParams{
		Title:      &title,
		IsFavorite: &fav,
	}))

	got, err := s.Links.GetByUUID(link.UUID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "Example", *got.Title)
	testutil.AssertEqual(t, true, got.IsFavorite)

	// SetFolder with a nil UUID unfiles the link.
	testutil.AssertNoError(t, s.Links.Update(link.UUID, LinkUpdateParams{SetFolder: true}))
	got, err = s.Links.GetByUUID(link.UUID)
	testutil.AssertNoError(t, err)
	if got.FolderUUID != nil {
		t.Fatal("expected link to be unfiled")
	}

	tag, err := s.Tags.Create(TagCreateParams{Name: "golang"})
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, s.Links.Update(link.UUID, LinkUpdateParams{
		SetTags:  true,
		TagUUIDs: []string{tag.UUID},
	}))
	got, err = s.Links.GetByUUID(link.UUID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, len(got.TagUUIDs))
}

func TestMarkMetadataFetched(t *testing.T) {
	s := newTestStore(t)

	existing := "My Title"
	link, err := s.Links.Create(LinkCreateParams{URL: "https://example.com", Title: &existing})
	testutil.AssertNoError(t, err)

	fetched := "Fetched Title"
	desc := "Fetched description"
	err = s.Links.MarkMetadataFetched(link.UUID, &fetched, &desc, true, "2024-06-01T12:00:00Z")
	testutil.AssertNoError(t, err)

	got, err := s.Links.GetByUUID(link.UUID)
	testutil.AssertNoError(t, err)
	// A user-entered title is never overwritten by a fetch.
	testutil.AssertEqual(t, "My Title", *got.Title)
	testutil.AssertEqual(t, "Fetched description", *got.Description)
	testutil.AssertEqual(t, true, got.MetadataFetched)
	if got.LastMetadataFetchAttempt == nil {
		t.Fatal("expected fetch attempt timestamp")
	}
}

func TestLinkDelete(t *testing.T) {
	s := newTestStore(t)

	link, err := s.Links.Create(LinkCreateParams{URL: "https://example.com"})
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, s.Links.Delete(link.UUID))

	_, err = s.Links.GetByUUID(link.UUID)
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestEventLog(t *testing.T) {
	s := newTestStore(t)

	link, err := s.Links.Create(LinkCreateParams{URL: "https://example.com"})
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, s.Links.Delete(link.UUID))

	events, err := s.Events().List(10)
	testutil.AssertNoError(t, err)
	if len(events) < 2 {
		t.Fatalf("expected at least 2 events, got %d", len(events))
	}
}
