package seeder

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/myproject/website/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	defaultUserAgent = "WebsiteSeeder/1.0"
	summaryLength    = 160
)

// PageWriter stores crawled pages.
type PageWriter interface {
	Upsert(page *models.Page) error
}

type Config struct {
	StartURL  string
	MaxDepth  int // 0 means unlimited
	MaxPages  int // 0 means unlimited
	Delay     time.Duration
	Timeout   time.Duration
	UserAgent string
	DryRun    bool
}

// Result summarizes one crawl.
type Result struct {
	Requested int
	Parsed    int
	Imported  int
	Failed    int
}

// Crawler imports the HTML pages of an existing site as live pages. Only
// links on the start URL's host are followed.
type Crawler struct {
	cfg       Config
	pages     PageWriter
	processor *ContentProcessor
	logger    *logrus.Logger
}

func NewCrawler(cfg Config, pages PageWriter, logger *logrus.Logger) *Crawler {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Crawler{
		cfg:       cfg,
		pages:     pages,
		processor: NewContentProcessor(),
		logger:    logger,
	}
}

// Crawl visits the site breadth-first from StartURL and upserts every HTML
// page it parses, keyed by url path.
func (cr *Crawler) Crawl(ctx context.Context) (Result, error) {
	var result Result

	start, err := url.Parse(cr.cfg.StartURL)
	if err != nil || start.Hostname() == "" {
		return result, fmt.Errorf("invalid start url %q", cr.cfg.StartURL)
	}

	c := colly.NewCollector(
		colly.UserAgent(cr.cfg.UserAgent),
		colly.AllowedDomains(start.Hostname()),
		colly.MaxDepth(cr.cfg.MaxDepth),
	)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       cr.cfg.Delay,
	}); err != nil {
		return result, fmt.Errorf("failed to configure crawler: %w", err)
	}
	c.SetRequestTimeout(cr.cfg.Timeout)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil || (cr.cfg.MaxPages > 0 && result.Requested >= cr.cfg.MaxPages) {
			r.Abort()
			return
		}
		result.Requested++
	})

	// Links are collected before the page handler trims the document.
	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		_ = e.Request.Visit(e.Attr("href"))
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		page := cr.extractPage(e.Request.URL, e.DOM)
		result.Parsed++

		fields := logrus.Fields{
			"url_path": page.URLPath,
			"title":    page.Title,
			"words":    cr.processor.CountWords(page.Body),
		}
		if cr.cfg.DryRun {
			cr.logger.WithFields(fields).Info("DRY RUN: Would import page")
			return
		}
		if err := cr.pages.Upsert(page); err != nil {
			result.Failed++
			cr.logger.WithError(err).WithFields(fields).Error("Failed to import page")
			return
		}
		result.Imported++
		cr.logger.WithFields(fields).Info("Page imported")
	})

	c.OnError(func(r *colly.Response, err error) {
		result.Failed++
		cr.logger.WithError(err).WithFields(logrus.Fields{
			"url":    r.Request.URL.String(),
			"status": r.StatusCode,
		}).Warn("Failed to fetch page")
	})

	visitErr := c.Visit(start.String())
	c.Wait()

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if visitErr != nil {
		return result, fmt.Errorf("failed to visit start url: %w", visitErr)
	}
	return result, nil
}

// extractPage builds a live page from a parsed document.
func (cr *Crawler) extractPage(u *url.URL, doc *goquery.Selection) *models.Page {
	urlPath := pagePath(u)

	h1 := strings.TrimSpace(doc.Find("h1").First().Text())
	title := strings.TrimSpace(doc.Find("head title").First().Text())
	if title == "" {
		title = h1
	}
	if title == "" {
		title = cr.processor.Slug(urlPath)
	}

	root := doc.Find("main, article, [role=main]").First()
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}
	root = root.Clone()
	root.Find("script, style, noscript, nav, header, footer, form, aside, h1").Remove()

	var blocks []string
	root.Find("h2, h3, h4, h5, h6, p, li, blockquote, pre").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p, li").Length() > 0 {
			return
		}
		blocks = append(blocks, s.Text())
	})

	body := cr.processor.JoinParagraphs(blocks)
	if body == "" {
		body = cr.processor.CleanContent(root.Text())
	}

	description := strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	if description == "" {
		description = cr.processor.Summarize(body, summaryLength)
	}

	page := &models.Page{
		Title:             title,
		Slug:              cr.processor.Slug(urlPath),
		URLPath:           urlPath,
		PageType:          models.PageTypeLanding,
		Live:              true,
		Body:              body,
		HeroTitle:         h1,
		SearchDescription: description,
		SEOTitle:          strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", "")),
	}
	if urlPath == "/" {
		page.PageType = models.PageTypeHome
	}
	return page
}

// pagePath maps a URL to a page url path. Extensionless paths get a
// trailing slash so "/about" and "/about/" are one page.
func pagePath(u *url.URL) string {
	p := u.Path
	if p == "" {
		return "/"
	}
	if !strings.HasSuffix(p, "/") && path.Ext(p) == "" {
		p += "/"
	}
	return p
}
