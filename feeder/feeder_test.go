package feeder_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fire-base/feeder"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>재테크 소식</title>
  <link>https://example.com</link>
  <description>feed</description>
  <item>
    <title>월 배당 ETF 비교</title>
    <link>https://example.com/1</link>
    <pubDate>Thu, 01 May 2025 09:00:00 +0900</pubDate>
  </item>
  <item>
    <title>   </title>
    <link>https://example.com/blank</link>
  </item>
  <item>
    <title>고정비 줄이는 법</title>
    <link>https://example.com/2</link>
  </item>
  <item>
    <title>사이드 프로젝트로 월 50만원</title>
    <link>https://example.com/3</link>
  </item>
</channel>
</rss>`

func newFeedServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path == "/broken" {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssBody))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchRssFeeds(t *testing.T) {
	var hits int32
	srv := newFeedServer(t, &hits)

	items, err := feeder.FetchRssFeeds(context.Background(), nil, srv.URL+"/feed", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "월 배당 ETF 비교", items[0].Title)
	assert.Equal(t, "https://example.com/1", items[0].Link)
	assert.False(t, items[0].PublishedAt.IsZero())
	assert.Equal(t, "고정비 줄이는 법", items[1].Title)
}

func TestInspiration_SkipsBrokenFeedsAndCaches(t *testing.T) {
	var hits int32
	srv := newFeedServer(t, &hits)

	insp := feeder.NewInspiration([]string{srv.URL + "/broken", srv.URL + "/feed"}, 10, time.Hour)
	items := insp.Headlines(context.Background())
	require.Len(t, items, 3)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	again := insp.Headlines(context.Background())
	assert.Equal(t, items, again)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestInspiration_NoFeeds(t *testing.T) {
	assert.Empty(t, feeder.NewInspiration(nil, 5, time.Hour).Headlines(context.Background()))

	var nilInsp *feeder.Inspiration
	assert.Empty(t, nilInsp.Headlines(context.Background()))
}
