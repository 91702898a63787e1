package research

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const titleFetchTimeout = 5 * time.Second

// resolveTitles fills in real page titles for sources that entered the
// citation payload under the placeholder title (URL-context tool calls only
// carry a URL). Fetch failures leave the placeholder in place; resolution
// never fails the session.
func resolveTitles(ctx context.Context, payload *GroundingPayload, client *http.Client) {
	if payload == nil {
		return
	}
	if client == nil {
		client = &http.Client{Timeout: titleFetchTimeout}
	}
	for i := range payload.Sources {
		if payload.Sources[i].Title != untitledSource {
			continue
		}
		if title := fetchTitle(ctx, client, payload.Sources[i].URI); title != "" {
			payload.Sources[i].Title = title
		}
	}
}

func fetchTitle(ctx context.Context, client *http.Client, uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, titleFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return ""
	}
	resp, err := client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.Title)
}
