package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/myproject/website/internal/metrics"
	"github.com/myproject/website/internal/models"
	"github.com/myproject/website/internal/services"
	"github.com/myproject/website/pkg/utils"
	"github.com/sirupsen/logrus"
)

const (
	defaultPopularLimit = 5
	maxPopularLimit     = 10
	recordTimeout       = 2 * time.Second
)

// QueryLog counts search queries. It is optional: a nil QueryLog disables
// recording and the popular queries endpoint.
type QueryLog interface {
	RecordQueryHit(ctx context.Context, query string) error
	TopQueries(ctx context.Context, limit int) ([]models.PopularQuery, error)
	TopQueriesToday(ctx context.Context, limit int) ([]models.PopularQuery, error)
}

type SearchHandler struct {
	searchService *services.SearchService
	settings      SettingsProvider
	queries       QueryLog
	backendName   string
	logger        *logrus.Logger

	pending sync.WaitGroup
}

func NewSearchHandler(
	searchService *services.SearchService,
	settings SettingsProvider,
	queries QueryLog,
	backendName string,
	logger *logrus.Logger,
) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		settings:      settings,
		queries:       queries,
		backendName:   backendName,
		logger:        logger,
	}
}

// HandleSearchPage renders the HTML search page.
func (h *SearchHandler) HandleSearchPage(c *gin.Context) {
	var req models.SearchRequest
	_ = c.ShouldBindQuery(&req)

	result, err := h.search(c, req)
	if err != nil {
		_ = c.Error(err)
		RenderError(c, http.StatusInternalServerError, h.settings.SiteSettings())
		return
	}

	c.HTML(http.StatusOK, "search.html", searchPageData{
		SearchQuery:   result.Query,
		SearchResults: result.Results,
		Site:          h.settings.SiteSettings(),
	})
}

// HandleSearchAPI returns the same search as JSON.
func (h *SearchHandler) HandleSearchAPI(c *gin.Context) {
	var req models.SearchRequest
	_ = c.ShouldBindQuery(&req)

	result, err := h.search(c, req)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Search failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Search completed", result)
}

func (h *SearchHandler) search(c *gin.Context, req models.SearchRequest) (*models.SearchContext, error) {
	start := time.Now()

	result, err := h.searchService.Search(c.Request.Context(), req.Query, req.Page)

	total := 0
	if result != nil {
		total = result.Results.TotalCount
	}
	metrics.SearchDuration.WithLabelValues(h.backendName).Observe(time.Since(start).Seconds())
	metrics.SearchRequestsTotal.WithLabelValues(h.backendName, metrics.Outcome(req.Query, total, err)).Inc()

	if err != nil {
		return nil, err
	}

	if req.Query != "" {
		metrics.SearchMatches.Observe(float64(total))
		h.recordQuery(req.Query)
	}

	h.logger.WithFields(logrus.Fields{
		"query":         req.Query,
		"page":          result.Results.Number,
		"results_count": total,
		"response_time": time.Since(start).Milliseconds(),
	}).Info("Search completed successfully")

	return result, nil
}

// recordQuery counts the query in the background. Failures are only logged.
func (h *SearchHandler) recordQuery(query string) {
	if h.queries == nil {
		return
	}

	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := h.queries.RecordQueryHit(ctx, query); err != nil {
			h.logger.WithError(err).Warn("Failed to record search query")
		}
	}()
}

// Wait blocks until background query recording has finished.
func (h *SearchHandler) Wait() {
	h.pending.Wait()
}

// HandlePopularQueries returns the most frequent search queries.
func (h *SearchHandler) HandlePopularQueries(c *gin.Context) {
	if h.queries == nil {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Query log is not configured", nil)
		return
	}

	var req models.PopularQueriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "limit must be a positive integer and period one of all, today", err)
		return
	}

	limit := defaultPopularLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	if limit > maxPopularLimit {
		limit = maxPopularLimit
	}

	top := h.queries.TopQueries
	if req.Period == models.PeriodToday {
		top = h.queries.TopQueriesToday
	}

	popular, err := top(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get popular queries")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to get popular queries", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Popular queries retrieved", popular)
}
