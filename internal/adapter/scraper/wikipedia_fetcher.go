package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/logger"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	defaultUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultMaxContentChars = 20000
	// The largest Wikipedia articles render to a few MiB of HTML.
	defaultMaxBodyBytes int64 = 8 << 20
)

// Elements dropped from the article body before text extraction.
var unwantedSelectors = strings.Join([]string{
	"sup",
	"table",
	".reference",
	".reflist",
	".navbox",
	".infobox",
	".thumb",
	".mw-editsection",
	"#toc",
	".toc",
	"style",
	"script",
	".hatnote",
	".sistersitebox",
	".noprint",
	".metadata",
	".ambox",
}, ", ")

var (
	citationRe      = regexp.MustCompile(`\[\d+\]`)
	citationNeeded  = regexp.MustCompile(`\[citation needed\]`)
	editMarkerRe    = regexp.MustCompile(`\[edit\]`)
	multiSpaceRe    = regexp.MustCompile(` +`)
	multiNewlinesRe = regexp.MustCompile(`\n{3,}`)
)

// WikipediaFetcher implements domain.ArticleFetcher over plain HTTP and goquery.
type WikipediaFetcher struct {
	client          *http.Client
	userAgent       string
	maxContentChars int
	maxBodyBytes    int64
}

// Option configures a WikipediaFetcher.
type Option func(*WikipediaFetcher)

func WithHTTPClient(c *http.Client) Option {
	return func(f *WikipediaFetcher) { f.client = c }
}

func WithUserAgent(ua string) Option {
	return func(f *WikipediaFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxContentChars bounds the extracted text to the first n runes.
func WithMaxContentChars(n int) Option {
	return func(f *WikipediaFetcher) {
		if n > 0 {
			f.maxContentChars = n
		}
	}
}

// WithMaxBodyBytes bounds how much of the response body is read and parsed.
// Markup past the cap is ignored.
func WithMaxBodyBytes(n int64) Option {
	return func(f *WikipediaFetcher) {
		if n > 0 {
			f.maxBodyBytes = n
		}
	}
}

// NewWikipediaFetcher creates a fetcher. timeout bounds the single outbound request.
func NewWikipediaFetcher(timeout time.Duration, opts ...Option) *WikipediaFetcher {
	f := &WikipediaFetcher{
		client:          &http.Client{Timeout: timeout},
		userAgent:       defaultUserAgent,
		maxContentChars: defaultMaxContentChars,
		maxBodyBytes:    defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the page once and extracts title, cleaned content and section headings.
func (f *WikipediaFetcher) Fetch(ctx context.Context, url string) (*domain.Article, error) {
	l := logger.Get()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.NewFetchError("Could not build request for the article.", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, domain.NewFetchError("Request timeout. The Wikipedia server took too long to respond.", err)
		}
		return nil, domain.NewFetchError("Network error while fetching the article.", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewFetchError(
			fmt.Sprintf("Wikipedia returned status %d.", resp.StatusCode),
			fmt.Errorf("unexpected status %s", resp.Status),
		).WithContext("status", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, domain.NewFetchError("Could not parse the article HTML.", err)
	}

	article, err := f.Extract(doc)
	if err != nil {
		return nil, err
	}
	article.URL = url

	l.Info("Fetched article",
		zap.String("url", url),
		zap.String("title", article.Title),
		zap.Int("content_chars", utf8.RuneCountInString(article.Content)),
		zap.Int("sections", len(article.Sections)))
	return article, nil
}

// Extract pulls the article out of an already parsed page.
func (f *WikipediaFetcher) Extract(doc *goquery.Document) (*domain.Article, error) {
	title := extractTitle(doc)

	body := doc.Find("div#mw-content-text .mw-parser-output").First()
	if body.Length() == 0 {
		return nil, domain.NewFetchError("Could not extract content from the article.", nil)
	}
	body.Find(unwantedSelectors).Remove()

	var (
		parts    []string
		sections []string
	)
	body.Find("p, h2, h3, h4, ul, ol").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		switch goquery.NodeName(s) {
		case "h2", "h3", "h4":
			heading := strings.TrimSpace(editMarkerRe.ReplaceAllString(text, ""))
			if heading != "" {
				sections = append(sections, heading)
			}
			parts = append(parts, "\n\n## "+heading+"\n")
		case "p":
			parts = append(parts, text)
		case "ul", "ol":
			s.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
				if item := strings.TrimSpace(li.Text()); item != "" {
					parts = append(parts, "- "+item)
				}
			})
		}
	})

	content := cleanText(strings.Join(parts, "\n\n"))
	if content == "" {
		return nil, domain.NewFetchError("Could not extract content from the article.", nil)
	}

	return &domain.Article{
		Title:    title,
		Content:  truncateRunes(content, f.maxContentChars),
		Sections: sections,
	}, nil
}

func extractTitle(doc *goquery.Document) string {
	if h1 := doc.Find("h1.firstHeading").First(); h1.Length() > 0 {
		if t := strings.TrimSpace(h1.Text()); t != "" {
			return t
		}
	}
	if t := doc.Find("title").First(); t.Length() > 0 {
		return strings.ReplaceAll(strings.TrimSpace(t.Text()), " - Wikipedia", "")
	}
	return "Unknown Title"
}

func cleanText(text string) string {
	text = citationRe.ReplaceAllString(text, "")
	text = citationNeeded.ReplaceAllString(text, "")
	text = editMarkerRe.ReplaceAllString(text, "")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = multiNewlinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// truncateRunes keeps the first n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

var _ domain.ArticleFetcher = (*WikipediaFetcher)(nil)
