// Package metadata fetches page metadata (title, description, preview image,
// favicon) for saved links. Fetching is asynchronous to link creation and has
// no bearing on merge/import correctness: a failed fetch only stamps the
// attempt time, and fetched bytes go to the asset store, never the record.
package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/mowens/linkvault/internal/assets"
	"github.com/mowens/linkvault/internal/domain"
	"github.com/mowens/linkvault/internal/logger"
	"github.com/mowens/linkvault/internal/norm"
	"github.com/mowens/linkvault/internal/store"
)

// maxBodyBytes caps how much of a page or image response is read.
const maxBodyBytes = 2 << 20

const userAgent = "linkvault/1.0"

// PageMetadata holds the fields extracted from a page.
type PageMetadata struct {
	Title           string
	Description     string
	PreviewImageURL string
}

// Fetcher retrieves page metadata and stores binary assets.
type Fetcher struct {
	client *http.Client
	assets *assets.Store
	log    logger.Logger
}

// NewFetcher creates a Fetcher. assetStore may be nil to skip asset storage.
func NewFetcher(assetStore *assets.Store, log logger.Logger, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		assets: assetStore,
		log:    log,
	}
}

// Fetch retrieves and parses a page's metadata.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*PageMetadata, error) {
	canonical, ok := norm.URL(rawURL)
	if !ok {
		return nil, fmt.Errorf("not a fetchable web URL: %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, canonical, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	meta, err := Extract(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	// og:image URLs are often relative; resolve against the final URL.
	if meta.PreviewImageURL != "" {
		if base := resp.Request.URL; base != nil {
			if ref, err := url.Parse(meta.PreviewImageURL); err == nil {
				meta.PreviewImageURL = base.ResolveReference(ref).String()
			}
		}
	}

	return meta, nil
}

// FetchAndStore fetches metadata for a link, updates the record's title,
// description, and fetch status, and saves favicon/preview bytes to the
// asset store. Asset failures are swallowed; only the page fetch itself and
// the record update can fail.
func (f *Fetcher) FetchAndStore(ctx context.Context, s *store.Store, link *domain.Link) error {
	attemptedAt := domain.FormatTime(time.Now())

	meta, err := f.Fetch(ctx, link.URL)
	if err != nil {
		// A failed attempt still gets stamped so retry policy can back off.
		if markErr := s.Links.MarkMetadataFetched(link.UUID, nil, nil, false, attemptedAt); markErr != nil {
			return markErr
		}
		return err
	}

	var title, description *string
	if meta.Title != "" {
		title = &meta.Title
	}
	if meta.Description != "" {
		description = &meta.Description
	}
	if err := s.Links.MarkMetadataFetched(link.UUID, title, description, true, attemptedAt); err != nil {
		return err
	}

	if f.assets == nil {
		return nil
	}

	var favicon, preview []byte
	if faviconURL := norm.FaviconURL(link.URL); faviconURL != "" {
		favicon = f.download(ctx, faviconURL)
	}
	if meta.PreviewImageURL != "" {
		preview = f.download(ctx, meta.PreviewImageURL)
	}
	if favicon != nil || preview != nil {
		f.assets.Save(link.UUID, favicon, preview)
	}

	return nil
}

// download fetches bytes best-effort, returning nil on any failure.
func (f *Fetcher) download(ctx context.Context, rawURL string) []byte {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Debug("asset download failed", logger.String("url", rawURL), logger.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil || len(data) == 0 {
		return nil
	}
	return data
}

// Extract parses HTML and pulls out the title, description, and preview
// image URL. og: properties win over the plain title/description tags.
func Extract(r io.Reader) (*PageMetadata, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	meta := &PageMetadata{}
	var ogTitle, ogDescription string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if meta.Title == "" && n.FirstChild != nil {
					meta.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				name := attr(n, "name")
				property := attr(n, "property")
				content := strings.TrimSpace(attr(n, "content"))
				if content == "" {
					break
				}
				switch {
				case property == "og:title":
					ogTitle = content
				case property == "og:description":
					ogDescription = content
				case property == "og:image":
					if meta.PreviewImageURL == "" {
						meta.PreviewImageURL = content
					}
				case name == "description":
					if meta.Description == "" {
						meta.Description = content
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if ogTitle != "" {
		meta.Title = ogTitle
	}
	if ogDescription != "" {
		meta.Description = ogDescription
	}

	return meta, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
