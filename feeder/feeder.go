package feeder

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"fire-base/logger"
)

type RssFeedItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
}

// FetchRssFeeds fetches RSS feeds from the given URL.
// If limit is greater than 0, it returns only the first limit items.
func FetchRssFeeds(ctx context.Context, client *http.Client, rssUrl string, limit int) ([]RssFeedItem, error) {
	fp := gofeed.NewParser()
	if client != nil {
		fp.Client = client
	}

	feed, err := fp.ParseURLWithContext(rssUrl, ctx)
	if err != nil {
		return nil, err
	}

	var items []RssFeedItem
	for _, item := range feed.Items {
		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		items = append(items, RssFeedItem{
			Title:       title,
			Link:        item.Link,
			PublishedAt: published,
		})
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

// Inspiration collects recent headlines from the configured feeds so they can
// be offered as brainstorm topics. Results are cached for ttl.
type Inspiration struct {
	feeds   []string
	perFeed int
	ttl     time.Duration
	client  *http.Client

	mu        sync.Mutex
	cached    []RssFeedItem
	fetchedAt time.Time
	now       func() time.Time
}

func NewInspiration(feeds []string, perFeed int, ttl time.Duration) *Inspiration {
	return &Inspiration{
		feeds:   feeds,
		perFeed: perFeed,
		ttl:     ttl,
		client:  &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
}

// Headlines returns the cached items, refreshing them when stale. A feed that
// fails is logged and skipped; the others still contribute.
func (i *Inspiration) Headlines(ctx context.Context) []RssFeedItem {
	if i == nil || len(i.feeds) == 0 {
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.cached != nil && i.now().Sub(i.fetchedAt) < i.ttl {
		return append([]RssFeedItem(nil), i.cached...)
	}

	items := []RssFeedItem{}
	for _, url := range i.feeds {
		feedItems, err := FetchRssFeeds(ctx, i.client, url, i.perFeed)
		if err != nil {
			logger.WarnWithFields("failed to fetch inspiration feed", logger.Fields{
				"feed":  url,
				"error": err.Error(),
			})
			continue
		}
		items = append(items, feedItems...)
	}
	i.cached = items
	i.fetchedAt = i.now()
	return append([]RssFeedItem(nil), items...)
}
