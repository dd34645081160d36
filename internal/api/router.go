package api

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/myproject/website/internal/api/handlers"
	"github.com/myproject/website/internal/metrics"
	"github.com/myproject/website/internal/middleware"
	"github.com/myproject/website/pkg/utils"
	"github.com/sirupsen/logrus"
)

//go:embed templates
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"paragraphs": paragraphs,
}

// paragraphs splits plain-text bodies on blank lines.
func paragraphs(body string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Templates parses the embedded HTML templates.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html", "templates/*/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

type Handlers struct {
	Search *handlers.SearchHandler
	Health *handlers.HealthHandler
	Pages  *handlers.PageHandler
}

type RouterConfig struct {
	Mode        string
	RateLimiter *middleware.RateLimiter
	Settings    handlers.SettingsProvider
	Logger      *logrus.Logger
}

// NewRouter wires every route of the site.
func NewRouter(h Handlers, cfg RouterConfig) (*gin.Engine, error) {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(cfg.Logger),
		gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
			cfg.Logger.WithField("panic", recovered).Error("Recovered from panic")
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", nil)
				return
			}
			handlers.RenderError(c, http.StatusInternalServerError, cfg.Settings.SiteSettings())
		}),
		middleware.SecurityHeaders(),
		metrics.Middleware(),
	)

	router.GET("/health/", h.Health.HandleHealth)
	router.POST("/health/", h.Health.HandleHealth)
	router.GET("/metrics", metrics.Handler())

	limited := router.Group("/")
	if cfg.RateLimiter != nil {
		limited.Use(cfg.RateLimiter.RateLimit())
	}
	limited.GET("/search/", h.Search.HandleSearchPage)

	apiGroup := limited.Group("/api")
	{
		apiGroup.GET("/search", h.Search.HandleSearchAPI)
		apiGroup.GET("/search/popular", h.Search.HandlePopularQueries)
	}

	router.NoRoute(h.Pages.HandlePage)

	return router, nil
}
