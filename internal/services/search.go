package services

import (
	"context"
	"fmt"

	"github.com/myproject/website/internal/models"
	"github.com/myproject/website/internal/pagination"
	"github.com/sirupsen/logrus"
)

// SearchBackend finds documents matching a query. The full ordered match
// list is returned; pagination happens in SearchService.
type SearchBackend interface {
	Search(ctx context.Context, query string, liveOnly bool) ([]models.Document, error)
}

type SearchService struct {
	backend SearchBackend
	logger  *logrus.Logger
}

func NewSearchService(backend SearchBackend, logger *logrus.Logger) *SearchService {
	return &SearchService{
		backend: backend,
		logger:  logger,
	}
}

// Search runs query against the backend restricted to live pages and returns
// the requested page of results. An empty query never reaches the backend.
// rawPage is parsed leniently: anything that is not an integer selects page 1
// and integers outside the valid range select the last page.
func (s *SearchService) Search(ctx context.Context, query, rawPage string) (*models.SearchContext, error) {
	matches := []models.Document{}

	if query != "" {
		found, err := s.backend.Search(ctx, query, true)
		if err != nil {
			s.logger.WithError(err).WithField("query", query).Error("Search backend failed")
			return nil, fmt.Errorf("search backend unavailable: %w", err)
		}
		if found != nil {
			matches = found
		}
	}

	results := pagination.Paginate(matches, models.SearchPageSize, rawPage)

	s.logger.WithFields(logrus.Fields{
		"query":       query,
		"page":        results.Number,
		"total_count": results.TotalCount,
	}).Debug("Search completed")

	return &models.SearchContext{
		Query:   query,
		Results: results,
	}, nil
}
