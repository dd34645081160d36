// Package backend holds the swappable full-text engines behind site search.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/myproject/website/internal/config"
	"github.com/myproject/website/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Searcher returns every page matching query, best match first. Matching
// is case-insensitive. With liveOnly set, draft pages never match.
type Searcher interface {
	Search(ctx context.Context, query string, liveOnly bool) ([]models.Document, error)
}

// Indexer is implemented by engines that keep their own copy of page text.
type Indexer interface {
	IndexPages(ctx context.Context, pages []models.Page) error
}

// Engine is a configured backend.
type Engine struct {
	Name     string
	Searcher Searcher
	// Indexer is nil for engines that query the page store directly.
	Indexer Indexer
	closers []io.Closer
}

func (e *Engine) Close() error {
	var errs []error
	for _, c := range e.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// New builds the engine selected by cfg.Search.Backend.
func New(cfg *config.Config, db *gorm.DB, pages models.PageRepository, logger *logrus.Logger) (*Engine, error) {
	name := cfg.Search.Backend
	logger.WithField("backend", name).Info("Initializing search backend")

	switch name {
	case config.BackendDatabase, "":
		return &Engine{Name: config.BackendDatabase, Searcher: NewDatabaseBackend(db, logger)}, nil

	case config.BackendBleve:
		b, err := NewBleveBackend(filepath.Join(cfg.Search.IndexPath, "pages.bleve"), logger)
		if err != nil {
			return nil, err
		}
		return &Engine{Name: name, Searcher: b, Indexer: b, closers: []io.Closer{b}}, nil

	case config.BackendFTS5:
		f, err := NewFTSBackend(filepath.Join(cfg.Search.IndexPath, "pages.fts.db"), logger)
		if err != nil {
			return nil, err
		}
		return &Engine{Name: name, Searcher: f, Indexer: f, closers: []io.Closer{f}}, nil

	case config.BackendSonic:
		s, err := NewSonicBackend(SonicConfig{
			Host:       cfg.Search.Sonic.Host,
			Port:       cfg.Search.Sonic.Port,
			Password:   cfg.Search.Sonic.Password,
			Collection: cfg.Search.Sonic.Collection,
		}, pages, logger)
		if err != nil {
			return nil, err
		}
		return &Engine{Name: name, Searcher: s, Indexer: s, closers: []io.Closer{s}}, nil

	case config.BackendRemote:
		r := NewRemoteBackend(cfg.Search.Remote.BaseURL, cfg.Search.Remote.APIKey, logger)
		return &Engine{Name: name, Searcher: r}, nil

	default:
		return nil, fmt.Errorf("unknown search backend: %q", name)
	}
}

// terms splits a query into its whitespace-separated terms.
func terms(query string) []string {
	return strings.Fields(query)
}
