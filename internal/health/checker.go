package health

import (
	"context"
	"sync"
	"time"

	"github.com/myproject/website/internal/database"
	"github.com/myproject/website/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	StatusOK           = "ok"
	StatusNotAvailable = "not_available"
)

// PingFunc probes one dependency.
type PingFunc func(ctx context.Context) error

// HealthChecker reports whether the site can reach its database and, when
// configured, its cache. A failing dependency is reported, never raised.
type HealthChecker struct {
	pingDB    PingFunc
	pingCache PingFunc
	timeout   time.Duration
	logger    *logrus.Logger

	mu   sync.Mutex
	last models.HealthResponse
}

// NewHealthChecker probes the connections owned by dbManager. dbManager may
// be nil, in which case the database is always reported as not available.
func NewHealthChecker(dbManager *database.Manager, logger *logrus.Logger) *HealthChecker {
	var pingDB, pingCache PingFunc
	if dbManager != nil && dbManager.DB != nil {
		pingDB = dbManager.PingDatabase
	}
	if dbManager != nil && dbManager.Redis != nil {
		pingCache = dbManager.PingRedis
	}
	return NewChecker(pingDB, pingCache, logger)
}

// NewChecker builds a checker from probe functions. A nil pingDB reports the
// database as not available; a nil pingCache omits the cache status.
func NewChecker(pingDB, pingCache PingFunc, logger *logrus.Logger) *HealthChecker {
	return &HealthChecker{
		pingDB:    pingDB,
		pingCache: pingCache,
		timeout:   5 * time.Second,
		logger:    logger,
	}
}

// ServiceHealth is the result of probing a single dependency.
type ServiceHealth struct {
	Name         string
	Status       string
	ResponseTime time.Duration
	Err          error
}

func (h *HealthChecker) probe(ctx context.Context, name string, ping PingFunc) ServiceHealth {
	if ping == nil {
		return ServiceHealth{Name: name, Status: StatusNotAvailable}
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	result := ServiceHealth{
		Name:         name,
		Status:       StatusOK,
		ResponseTime: time.Since(start),
		Err:          err,
	}
	if err != nil {
		result.Status = StatusNotAvailable
		h.logger.WithError(err).WithField("service", name).Warn("Health check failed")
	}
	return result
}

// Check probes every dependency. The overall status is always "ok": the
// process is serving, whatever the state of its dependencies.
func (h *HealthChecker) Check(ctx context.Context) models.HealthResponse {
	resp := models.HealthResponse{
		Status:   StatusOK,
		DBStatus: h.probe(ctx, "database", h.pingDB).Status,
	}
	if h.pingCache != nil {
		resp.CacheStatus = h.probe(ctx, "cache", h.pingCache).Status
	}

	h.mu.Lock()
	h.last = resp
	h.mu.Unlock()
	return resp
}

// Last returns the most recent report, or a zero value before the first check.
func (h *HealthChecker) Last() models.HealthResponse {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// PeriodicHealthCheck runs Check every interval until ctx is done and logs
// whenever a dependency changes state.
func (h *HealthChecker) PeriodicHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			previous := h.Last()
			current := h.Check(ctx)
			if previous != (models.HealthResponse{}) && previous != current {
				h.logger.WithFields(logrus.Fields{
					"db_status":    current.DBStatus,
					"cache_status": current.CacheStatus,
				}).Warn("Dependency health changed")
			}
			h.logger.WithField("db_status", current.DBStatus).Debug("Periodic health check completed")
		}
	}
}
