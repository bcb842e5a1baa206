// Package news watches RSS feeds for items mentioning tracked keywords.
package news

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"

	"legisradar/internal/keyword"
	"legisradar/internal/model"
)

const (
	userAgent   = "LegisRadar/1.0"
	maxBodySize = 5 * 1024 * 1024
	maxSummary  = 300
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Feed identifies one RSS source to watch.
type Feed struct {
	Name string
	URL  string
}

// Watcher downloads the configured feeds and keeps the items that mention a
// tracked keyword.
type Watcher struct {
	client  HTTPClient
	matcher *keyword.Matcher
	feeds   []Feed
	log     *slog.Logger
}

// New creates a Watcher over the given feeds.
func New(client HTTPClient, matcher *keyword.Matcher, feeds []Feed, log *slog.Logger) *Watcher {
	return &Watcher{client: client, matcher: matcher, feeds: feeds, log: log}
}

// Check fetches every configured feed once and hands matching items to emit.
// A failing feed is logged and does not affect the others.
func (w *Watcher) Check(ctx context.Context, emit func(*model.NewsItem)) {
	for _, feed := range w.feeds {
		if ctx.Err() != nil {
			return
		}
		if err := w.checkFeed(ctx, feed, emit); err != nil {
			w.log.Error("check news feed", "feed", feed.Name, "error", err)
		}
	}
}

func (w *Watcher) checkFeed(ctx context.Context, feed Feed, emit func(*model.NewsItem)) error {
	parsed, err := w.fetch(ctx, feed.URL)
	if err != nil {
		return err
	}

	for _, item := range parsed.Items {
		matched := w.matcher.Match(item.Title + " " + item.Description)
		if w.matcher.Enabled() && len(matched) == 0 {
			continue
		}
		emit(&model.NewsItem{
			GUID:        itemGUID(item),
			Title:       item.Title,
			Summary:     truncate(item.Description, maxSummary),
			Link:        item.Link,
			Keywords:    strings.Join(matched, ", "),
			FeedName:    feed.Name,
			PublishedAt: item.PublishedParsed,
		})
	}
	return nil
}

// fetch downloads and parses one RSS feed.
func (w *Watcher) fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// itemGUID returns the item's GUID, or a hash of title+link when the feed
// does not provide one.
func itemGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	h := sha256.Sum256([]byte(item.Title + "|" + item.Link))
	return fmt.Sprintf("sha256:%x", h[:16])
}

// truncate shortens s to at most max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
