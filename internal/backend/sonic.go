package backend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/expectedsh/go-sonic/sonic"
	"github.com/myproject/website/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	sonicLiveBucket  = "live"
	sonicDraftBucket = "draft"
	sonicPageLimit   = 100
	// sonic rejects long pushes; longer page text is truncated.
	sonicMaxText = 16 * 1024
)

type SonicConfig struct {
	Host       string
	Port       int
	Password   string
	Collection string
}

// sonicSearcher and sonicIngester are the parts of the sonic channels used here.
type sonicSearcher interface {
	Query(collection, bucket, term string, limit, offset int) ([]string, error)
}

type sonicIngester interface {
	Push(collection, bucket, object, text string) error
	FlushBucket(collection, bucket string) error
}

// PageLoader resolves page ids to pages, preserving order.
type PageLoader interface {
	GetByIDs(ids []uint, liveOnly bool) ([]models.Page, error)
}

// SonicBackend queries a Sonic server for page ids and loads the pages from
// the page store. Live pages and drafts are pushed to separate buckets; draft
// matches follow the live ones when drafts are requested.
type SonicBackend struct {
	mu       sync.Mutex
	cfg      SonicConfig
	search   sonicSearcher
	ingester sonicIngester
	closers  []func() error
	dial     func() error
	pages    PageLoader
	logger   *logrus.Logger
}

func NewSonicBackend(cfg SonicConfig, pages PageLoader, logger *logrus.Logger) (*SonicBackend, error) {
	s := &SonicBackend{cfg: cfg, pages: pages, logger: logger}
	s.dial = s.connect
	if err := s.dial(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SonicBackend) connect() error {
	ingester, err := sonic.NewIngester(s.cfg.Host, s.cfg.Port, s.cfg.Password)
	if err != nil {
		return fmt.Errorf("failed to connect to sonic server: %w", err)
	}

	search, err := sonic.NewSearch(s.cfg.Host, s.cfg.Port, s.cfg.Password)
	if err != nil {
		ingester.Quit()
		return fmt.Errorf("failed to connect to sonic server: %w", err)
	}

	s.ingester = ingester
	s.search = search
	s.closers = []func() error{ingester.Quit, search.Quit}
	return nil
}

func (s *SonicBackend) reconnect() error {
	s.logger.Warn("Re-connecting to Sonic backend")
	return s.dial()
}

func (s *SonicBackend) Search(ctx context.Context, query string, liveOnly bool) ([]models.Document, error) {
	term := strings.Join(terms(query), " ")
	if term == "" {
		return []models.Document{}, nil
	}

	buckets := []string{sonicLiveBucket}
	if !liveOnly {
		buckets = append(buckets, sonicDraftBucket)
	}

	var ids []uint
	seen := make(map[uint]bool)
	s.mu.Lock()
	for _, bucket := range buckets {
		found, err := s.queryAll(ctx, bucket, term)
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		for _, id := range found {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	s.mu.Unlock()

	pages, err := s.pages.GetByIDs(ids, liveOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to load sonic matches: %w", err)
	}

	docs := make([]models.Document, len(pages))
	for i := range pages {
		docs[i] = pages[i].Document()
	}
	return docs, nil
}

// queryAll pages through sonic results until a short page is returned.
func (s *SonicBackend) queryAll(ctx context.Context, bucket, term string) ([]uint, error) {
	var ids []uint
	seen := make(map[uint]bool)

	for offset := 0; ; offset += sonicPageLimit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		results, err := s.search.Query(s.cfg.Collection, bucket, term, sonicPageLimit, offset)
		if isSonicClosed(err) {
			if rerr := s.reconnect(); rerr != nil {
				return nil, rerr
			}
			results, err = s.search.Query(s.cfg.Collection, bucket, term, sonicPageLimit, offset)
		}
		if err != nil {
			return nil, fmt.Errorf("sonic error while fulfilling search request: %w", err)
		}

		got := 0
		for _, r := range results {
			if r == "" {
				continue
			}
			got++
			id, err := strconv.ParseUint(r, 10, 64)
			if err != nil || seen[uint(id)] {
				continue
			}
			seen[uint(id)] = true
			ids = append(ids, uint(id))
		}

		if got < sonicPageLimit {
			return ids, nil
		}
	}
}

// IndexPages replaces the pushed set with pages.
func (s *SonicBackend) IndexPages(ctx context.Context, pages []models.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, bucket := range []string{sonicLiveBucket, sonicDraftBucket} {
		if err := s.flush(bucket); err != nil {
			return err
		}
	}

	pushed := 0
	for i := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := &pages[i]
		bucket := sonicLiveBucket
		if !p.Live {
			bucket = sonicDraftBucket
		}
		id := strconv.FormatUint(uint64(p.ID), 10)
		if err := s.ingester.Push(s.cfg.Collection, bucket, id, truncateText(p.SearchText(), sonicMaxText)); err != nil {
			return fmt.Errorf("sonic error while indexing page %s: %w", id, err)
		}
		pushed++
	}

	s.logger.WithField("pages", pushed).Info("Sonic index updated")
	return nil
}

func (s *SonicBackend) flush(bucket string) error {
	err := s.ingester.FlushBucket(s.cfg.Collection, bucket)
	if isSonicClosed(err) {
		if rerr := s.reconnect(); rerr != nil {
			return rerr
		}
		err = s.ingester.FlushBucket(s.cfg.Collection, bucket)
	}
	if err != nil {
		return fmt.Errorf("sonic error while flushing bucket %s: %w", bucket, err)
	}
	return nil
}

// truncateText cuts text to at most max bytes without splitting a rune.
func truncateText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max]
}

func (s *SonicBackend) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, quit := range s.closers {
		if err := quit(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func isSonicClosed(err error) bool {
	return err != nil && (errors.Is(err, sonic.ErrClosed) || strings.Contains(err.Error(), "EOF"))
}
