package services

import (
	"context"
	"fmt"
	"time"

	"github.com/myproject/website/internal/models"
	"github.com/sirupsen/logrus"
)

// PageIndexer is implemented by backends that keep their own index.
type PageIndexer interface {
	IndexPages(ctx context.Context, pages []models.Page) error
}

// PageLister loads every stored page.
type PageLister interface {
	GetAll() ([]models.Page, error)
}

type IndexService struct {
	pages   PageLister
	indexer PageIndexer
	logger  *logrus.Logger
}

// NewIndexService returns a service that rebuilds indexer from pages.
// A nil indexer makes Rebuild a no-op.
func NewIndexService(pages PageLister, indexer PageIndexer, logger *logrus.Logger) *IndexService {
	return &IndexService{pages: pages, indexer: indexer, logger: logger}
}

// Rebuild replaces the backend index with the current page store contents and
// returns how many pages were handed to the indexer.
func (s *IndexService) Rebuild(ctx context.Context) (int, error) {
	if s.indexer == nil {
		s.logger.Debug("Search backend keeps no index, skipping rebuild")
		return 0, nil
	}

	start := time.Now()
	pages, err := s.pages.GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to load pages: %w", err)
	}

	if err := s.indexer.IndexPages(ctx, pages); err != nil {
		return 0, fmt.Errorf("failed to index pages: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"pages":    len(pages),
		"duration": time.Since(start).String(),
	}).Info("Search index rebuilt")
	return len(pages), nil
}
