package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mowens/linkvault/internal/domain"
	"github.com/mowens/linkvault/internal/logger"
	"github.com/mowens/linkvault/internal/norm"
	"github.com/mowens/linkvault/internal/store"
)

type saveRequest struct {
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
	Notes  string `json:"notes,omitempty"`
	Folder string `json:"folder,omitempty"` // folder name, created if missing
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func handleHealthz(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleCreateLink(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		canonical, ok := norm.URL(req.URL)
		if !ok {
			writeError(w, http.StatusBadRequest, "not a valid web URL")
			return
		}

		params := store.LinkCreateParams{URL: canonical}
		if req.Title != "" {
			params.Title = &req.Title
		}
		if req.Notes != "" {
			params.Notes = &req.Notes
		}
		if req.Folder != "" {
			folder, err := d.Store.Folders.GetByName(req.Folder)
			if err != nil {
				folder, err = d.Store.Folders.Create(store.FolderCreateParams{Name: req.Folder})
				if err != nil {
					writeError(w, http.StatusInternalServerError, err.Error())
					return
				}
			}
			params.FolderUUID = &folder.UUID
		}

		link, err := d.Store.Links.Create(params)
		if err != nil {
			var dup *domain.DuplicateURLError
			if errors.As(err, &dup) {
				writeError(w, http.StatusConflict, dup.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		d.Logger.Info("link saved", logger.String("url", link.URL))

		// Metadata is fetched after the response; asset bytes land in the
		// asset store whenever the fetch completes.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := d.Fetcher.FetchAndStore(ctx, d.Store, link); err != nil {
				d.Logger.Debug("metadata fetch failed",
					logger.String("url", link.URL), logger.Error(err))
			}
		}()

		writeJSON(w, http.StatusCreated, link)
	}
}

func handleListLinks(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := store.LinkListOptions{
			FavoritesOnly: r.URL.Query().Get("favorites") == "true",
			PinnedOnly:    r.URL.Query().Get("pinned") == "true",
		}

		if folderName := r.URL.Query().Get("folder"); folderName != "" {
			folder, err := d.Store.Folders.GetByName(folderName)
			if err != nil {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			opts.FolderUUID = folder.UUID
		}
		if tagName := r.URL.Query().Get("tag"); tagName != "" {
			tag, err := d.Store.Tags.GetByName(tagName)
			if err != nil {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			opts.TagUUID = tag.UUID
		}

		links, err := d.Store.Links.List(opts)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if links == nil {
			links = []domain.Link{}
		}
		writeJSON(w, http.StatusOK, links)
	}
}

func handleGetLink(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link, err := d.Store.Links.GetByUUID(chi.URLParam(r, "uuid"))
		if err != nil {
			var notFound *domain.NotFoundError
			if errors.As(err, &notFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, link)
	}
}

func handleDeleteLink(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		linkUUID := chi.URLParam(r, "uuid")
		if err := d.Store.Links.Delete(linkUUID); err != nil {
			var notFound *domain.NotFoundError
			if errors.As(err, &notFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		// Assets must not outlive the record.
		if err := d.Assets.DeleteLinkDir(linkUUID); err != nil {
			d.Logger.Warn("failed to delete link assets",
				logger.String("link", linkUUID), logger.Error(err))
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleLinkAsset(d Deps, load func(string) []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := load(chi.URLParam(r, "uuid"))
		if data == nil {
			writeError(w, http.StatusNotFound, "asset not found")
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
