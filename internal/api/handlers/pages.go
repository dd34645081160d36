package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/myproject/website/internal/models"
	"github.com/myproject/website/internal/repository"
	"github.com/sirupsen/logrus"
)

// LivePageFinder looks up published pages by url path.
type LivePageFinder interface {
	GetLiveByURLPath(urlPath string) (*models.Page, error)
}

type PageHandler struct {
	pages    LivePageFinder
	settings SettingsProvider
	logger   *logrus.Logger
}

func NewPageHandler(pages LivePageFinder, settings SettingsProvider, logger *logrus.Logger) *PageHandler {
	return &PageHandler{pages: pages, settings: settings, logger: logger}
}

// HandlePage serves the live page at the request path. Paths without a
// trailing slash redirect to the slashed form when that page exists.
func (h *PageHandler) HandlePage(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		h.notFound(c)
		return
	}

	path := c.Request.URL.Path
	page, err := h.pages.GetLiveByURLPath(path)
	if errors.Is(err, repository.ErrPageNotFound) && !strings.HasSuffix(path, "/") {
		if _, slashErr := h.pages.GetLiveByURLPath(path + "/"); slashErr == nil {
			target := path + "/"
			if q := c.Request.URL.RawQuery; q != "" {
				target += "?" + q
			}
			c.Redirect(http.StatusMovedPermanently, target)
			return
		}
	}

	switch {
	case errors.Is(err, repository.ErrPageNotFound):
		h.notFound(c)
		return
	case err != nil:
		h.logger.WithError(err).WithField("path", path).Error("Failed to load page")
		RenderError(c, http.StatusInternalServerError, h.settings.SiteSettings())
		return
	}

	c.HTML(http.StatusOK, "page.html", pageData{Page: page, Site: h.settings.SiteSettings()})
}

func (h *PageHandler) notFound(c *gin.Context) {
	RenderError(c, http.StatusNotFound, h.settings.SiteSettings())
}
