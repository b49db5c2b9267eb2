package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mowens/linkvault/internal/assets"
	"github.com/mowens/linkvault/internal/domain"
	"github.com/mowens/linkvault/internal/logger"
	"github.com/mowens/linkvault/internal/metadata"
	"github.com/mowens/linkvault/internal/store"
	"github.com/mowens/linkvault/internal/testutil"
)

func newTestServer(t *testing.T) (*httptest.Server, Deps) {
	t.Helper()
	database, _ := testutil.TempDB(t)
	log := logger.Nop()
	assetStore := assets.New(t.TempDir(), log)
	deps := Deps{
		Store:   store.New(database),
		Assets:  assetStore,
		Fetcher: metadata.NewFetcher(assetStore, log, time.Second),
		Logger:  log,
	}

	srv := httptest.NewServer(New("127.0.0.1:0", deps).Handler())
	t.Cleanup(srv.Close)
	return srv, deps
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	testutil.AssertNoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	testutil.AssertNoError(t, err)
	return resp
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	testutil.AssertNoError(t, err)
	defer resp.Body.Close()
	testutil.AssertEqual(t, http.StatusOK, resp.StatusCode)
}

func TestCreateLink(t *testing.T) {
	srv, deps := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/links", map[string]string{
		"url":    "https://example.com/article",
		"title":  "An Article",
		"folder": "Inbox",
	})
	defer resp.Body.Close()
	testutil.AssertEqual(t, http.StatusCreated, resp.StatusCode)

	var link domain.Link
	testutil.AssertNoError(t, json.NewDecoder(resp.Body).Decode(&link))
	testutil.AssertEqual(t, "https://example.com/article", link.URL)
	testutil.AssertEqual(t, "An Article", *link.Title)

	// The folder was created on the fly.
	folder, err := deps.Store.Folders.GetByName("Inbox")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, folder.UUID, *link.FolderUUID)
}

func TestCreateLinkRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/links", map[string]string{"url": "not a url"})
	defer resp.Body.Close()
	testutil.AssertEqual(t, http.StatusBadRequest, resp.StatusCode)

	raw, err := http.Post(srv.URL+"/api/links", "application/json", bytes.NewReader([]byte("{not json")))
	testutil.AssertNoError(t, err)
	defer raw.Body.Close()
	testutil.AssertEqual(t, http.StatusBadRequest, raw.StatusCode)
}

func TestCreateLinkDuplicateConflict(t *testing.T) {
	srv, _ := newTestServer(t)

	first := postJSON(t, srv.URL+"/api/links", map[string]string{"url": "https://example.com"})
	first.Body.Close()
	testutil.AssertEqual(t, http.StatusCreated, first.StatusCode)

	second := postJSON(t, srv.URL+"/api/links", map[string]string{"url": "example.com"})
	defer second.Body.Close()
	testutil.AssertEqual(t, http.StatusConflict, second.StatusCode)
}

func TestListLinks(t *testing.T) {
	srv, deps := newTestServer(t)

	_, err := deps.Store.Links.Create(store.LinkCreateParams{URL: "https://a.example.com", IsFavorite: true})
	testutil.AssertNoError(t, err)
	_, err = deps.Store.Links.Create(store.LinkCreateParams{URL: "https://b.example.com"})
	testutil.AssertNoError(t, err)

	resp, err := http.Get(srv.URL + "/api/links")
	testutil.AssertNoError(t, err)
	defer resp.Body.Close()
	testutil.AssertEqual(t, http.StatusOK, resp.StatusCode)

	var links []domain.Link
	testutil.AssertNoError(t, json.NewDecoder(resp.Body).Decode(&links))
	testutil.AssertEqual(t, 2, len(links))

	favResp, err := http.Get(srv.URL + "/api/links?favorites=true")
	testutil.AssertNoError(t, err)
	defer favResp.Body.Close()

	var favorites []domain.Link
	testutil.AssertNoError(t, json.NewDecoder(favResp.Body).Decode(&favorites))
	testutil.AssertEqual(t, 1, len(favorites))
	testutil.AssertEqual(t, "https://a.example.com", favorites[0].URL)
}

func TestGetAndDeleteLink(t *testing.T) {
	srv, deps := newTestServer(t)

	link, err := deps.Store.Links.Create(store.LinkCreateParams{URL: "https://example.com"})
	testutil.AssertNoError(t, err)
	deps.Assets.Save(link.UUID, []byte("icon"), nil)

	resp, err := http.Get(fmt.Sprintf("%s/api/links/%s", srv.URL, link.UUID))
	testutil.AssertNoError(t, err)
	resp.Body.Close()
	testutil.AssertEqual(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/links/%s", srv.URL, link.UUID), nil)
	testutil.AssertNoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	testutil.AssertNoError(t, err)
	delResp.Body.Close()
	testutil.AssertEqual(t, http.StatusNoContent, delResp.StatusCode)

	// Record and assets are both gone.
	gone, err := http.Get(fmt.Sprintf("%s/api/links/%s", srv.URL, link.UUID))
	testutil.AssertNoError(t, err)
	gone.Body.Close()
	testutil.AssertEqual(t, http.StatusNotFound, gone.StatusCode)
	if deps.Assets.LoadFavicon(link.UUID) != nil {
		t.Fatal("expected assets to be deleted with the link")
	}
}

func TestLinkAssetEndpoints(t *testing.T) {
	srv, deps := newTestServer(t)

	link, err := deps.Store.Links.Create(store.LinkCreateParams{URL: "https://example.com"})
	testutil.AssertNoError(t, err)
	deps.Assets.Save(link.UUID, []byte("icon-bytes"), nil)

	resp, err := http.Get(fmt.Sprintf("%s/api/links/%s/favicon", srv.URL, link.UUID))
	testutil.AssertNoError(t, err)
	defer resp.Body.Close()
	testutil.AssertEqual(t, http.StatusOK, resp.StatusCode)
	testutil.AssertEqual(t, "image/jpeg", resp.Header.Get("Content-Type"))

	missing, err := http.Get(fmt.Sprintf("%s/api/links/%s/preview", srv.URL, link.UUID))
	testutil.AssertNoError(t, err)
	missing.Body.Close()
	testutil.AssertEqual(t, http.StatusNotFound, missing.StatusCode)
}
