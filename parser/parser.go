package parser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"fire-base/config"
	"fire-base/logger"
	"fire-base/models"
)

// maxPageBytes caps how much of a source page is read.
const maxPageBytes = 2 << 20

type PageMeta struct {
	Title   string
	Excerpt string
	Image   string
}

// ParsePageMeta extracts a title for a page. readability wins; og:title and
// <title> are the fallbacks.
func ParsePageMeta(htmlStr, pageURL string) (*PageMeta, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return nil, err
	}

	var base *url.URL
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil {
			base = u
		}
	}

	meta := &PageMeta{}
	if article, err := readability.FromDocument(doc, base); err == nil {
		meta.Title = strings.TrimSpace(article.Title)
		meta.Excerpt = strings.TrimSpace(article.Excerpt)
		meta.Image = article.Image
	}
	if meta.Title == "" {
		meta.Title = findMetaContent(doc, "og:title")
	}
	if meta.Title == "" {
		meta.Title = findTitleTag(doc)
	}
	return meta, nil
}

func findMetaContent(n *html.Node, property string) string {
	if n.Type == html.ElementNode && n.Data == "meta" {
		var prop, content string
		for _, a := range n.Attr {
			switch strings.ToLower(a.Key) {
			case "property", "name":
				prop = strings.ToLower(a.Val)
			case "content":
				content = a.Val
			}
		}
		if prop == property && strings.TrimSpace(content) != "" {
			return strings.TrimSpace(content)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if v := findMetaContent(c, property); v != "" {
			return v
		}
	}
	return ""
}

func findTitleTag(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if v := findTitleTag(c); v != "" {
			return v
		}
	}
	return ""
}

// Enricher fills in titles for grounding sources that came back without a
// readable one (search grounding often returns only the domain).
type Enricher struct {
	enabled bool
	client  *http.Client
}

func NewEnricher(cfg config.SourceEnrichmentConfig) *Enricher {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Enricher{
		enabled: cfg.Enabled,
		client:  &http.Client{Timeout: timeout},
	}
}

// Enrich returns a copy of sources with missing titles filled in. Failures are
// logged and leave the source unchanged.
func (e *Enricher) Enrich(ctx context.Context, sources []models.GroundingChunk) []models.GroundingChunk {
	out := make([]models.GroundingChunk, len(sources))
	for i, s := range sources {
		out[i] = s
		if s.Web != nil {
			web := *s.Web
			out[i].Web = &web
		}
	}
	if e == nil || !e.enabled {
		return out
	}

	var wg sync.WaitGroup
	for i := range out {
		web := out[i].Web
		if web == nil || web.URI == "" || !needsTitle(web) {
			continue
		}
		wg.Add(1)
		go func(web *models.WebSource) {
			defer wg.Done()
			title, err := e.fetchTitle(ctx, web.URI)
			if err != nil {
				logger.DebugWithFields("source enrichment failed", logger.Fields{
					"uri":   web.URI,
					"error": err.Error(),
				})
				return
			}
			if title != "" {
				web.Title = title
			}
		}(web)
	}
	wg.Wait()
	return out
}

// needsTitle reports whether the title is blank or just a host name.
func needsTitle(web *models.WebSource) bool {
	t := strings.TrimSpace(web.Title)
	if t == "" {
		return true
	}
	return !strings.ContainsAny(t, " \t") && strings.Contains(t, ".")
}

func (e *Enricher) fetchTitle(ctx context.Context, uri string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "fire-base/1.0 (+source enrichment)")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	pageURL := uri
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL.String()
	}
	meta, err := ParsePageMeta(string(body), pageURL)
	if err != nil {
		return "", err
	}
	return meta.Title, nil
}
