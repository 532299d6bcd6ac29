package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/gocolly/colly/v2"
	"golang.org/x/net/html"

	"github.com/easel-ai/easel/internal/log"
	"github.com/easel-ai/easel/internal/security"
)

// LocalConfig tunes the in-process extraction backend.
type LocalConfig struct {
	// Parallelism is the number of concurrent page fetches while mapping.
	Parallelism int
	// Delay is the pause between requests to the same host.
	Delay time.Duration
	// MaxPages caps how many URLs a single map or extract call touches.
	MaxPages int
}

// Local crawls and parses pages in-process. It has no model behind it,
// so Extract always produces raw page records: URL, title, and the
// page's main text content. Every fetched URL passes the security
// validator first.
type Local struct {
	validator   URLValidator
	parallelism int
	delay       time.Duration
	maxPages    int
	logger      log.Logger
}

// NewLocal creates a Local extractor.
func NewLocal(validator URLValidator, cfg LocalConfig, logger log.Logger) (*Local, error) {
	if validator == nil {
		return nil, fmt.Errorf("url validator is required")
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 2
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 30
	}
	if logger == nil {
		logger = log.NewNop()
	}

	return &Local{
		validator:   validator,
		parallelism: cfg.Parallelism,
		delay:       cfg.Delay,
		maxPages:    cfg.MaxPages,
		logger:      logger,
	}, nil
}

// MapURL crawls a site root and collects the same-host URLs it links to.
func (l *Local) MapURL(ctx context.Context, rawURL string) (*MapResult, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("URL is required")
	}
	if err := l.validator.ValidateURL(rawURL); err != nil {
		return &MapResult{Success: false, Error: err.Error()}, nil
	}

	root, err := url.Parse(rawURL)
	if err != nil {
		return &MapResult{Success: false, Error: fmt.Sprintf("invalid URL: %v", err)}, nil
	}
	host := root.Hostname()

	c := colly.NewCollector(
		colly.AllowedDomains(host),
		colly.MaxDepth(2),
		colly.Async(true),
		colly.StdlibContext(ctx),
	)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: l.parallelism,
		Delay:       l.delay,
	}); err != nil {
		return nil, fmt.Errorf("failed to configure crawl limits: %w", err)
	}

	var mu sync.Mutex
	seen := make(map[string]struct{})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" {
			return
		}
		u, err := url.Parse(link)
		if err != nil || u.Hostname() != host {
			return
		}
		u.Fragment = ""
		link = u.String()

		mu.Lock()
		if _, ok := seen[link]; ok || len(seen) >= l.maxPages {
			mu.Unlock()
			return
		}
		seen[link] = struct{}{}
		mu.Unlock()

		if err := e.Request.Visit(link); err != nil {
			l.logger.Debug("skipping link during site map",
				"link", link,
				"error", err)
		}
	})

	if err := c.Visit(rawURL); err != nil {
		return &MapResult{Success: false, Error: fmt.Sprintf("failed to crawl %s: %v", rawURL, err)}, nil
	}
	c.Wait()

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)

	l.logger.Info("site map completed",
		"url", rawURL,
		"link_count", len(links))

	return &MapResult{Success: true, Links: links}, nil
}

// Extract fetches each URL and produces a raw content record per page.
// The prompt and schema hint are accepted for interface compatibility
// but unused: structured extraction needs the remote backend.
func (l *Local) Extract(ctx context.Context, urls []string, prompt, schemaHint string) (*ExtractResult, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("at least one URL is required")
	}
	if len(urls) > l.maxPages {
		urls = urls[:l.maxPages]
	}

	client := l.validator.CreateSafeHTTPClient()

	var items []map[string]any
	var failures []string

	for _, pageURL := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := l.validator.ValidateURL(pageURL); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", pageURL, err))
			continue
		}

		item, err := l.fetchPage(ctx, client, pageURL)
		if err != nil {
			l.logger.Warn("page fetch failed during extraction",
				"url", pageURL,
				"error", err)
			failures = append(failures, fmt.Sprintf("%s: %v", pageURL, err))
			continue
		}
		items = append(items, item)
	}

	// A single failed page fails the whole extraction. Success is
	// all-or-nothing, never a partial item set.
	if len(failures) > 0 {
		return &ExtractResult{
			Success: false,
			Error:   strings.Join(failures, "; "),
		}, nil
	}

	return &ExtractResult{
		Success:  true,
		DataType: DataTypeRaw,
		Items:    items,
	}, nil
}

func (l *Local) fetchPage(ctx context.Context, client *http.Client, pageURL string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, security.DefaultMaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	title, content := parsePage(body, parsed)
	return map[string]any{
		"url":     pageURL,
		"title":   title,
		"content": content,
	}, nil
}

// parsePage extracts a title and the main text content from an HTML
// document. Readability handles article-like pages; pages it cannot
// parse fall back to a goquery body scrape, and finally to a bare
// HTML text walk.
func parsePage(body []byte, pageURL *url.URL) (title, content string) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil {
		title = strings.TrimSpace(article.Title)
		content = strings.TrimSpace(article.TextContent)
	}
	if content != "" {
		return title, content
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		doc.Find("script, style, noscript").Remove()
		if title == "" {
			title = strings.TrimSpace(doc.Find("title").First().Text())
		}
		content = collapseWhitespace(doc.Find("body").Text())
	}
	if content != "" {
		return title, content
	}

	return title, textFromHTML(body)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// textFromHTML walks the parse tree directly, collecting text nodes
// outside script and style elements.
func textFromHTML(body []byte) string {
	node, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	return b.String()
}
