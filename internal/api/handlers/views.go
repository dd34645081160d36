package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/myproject/website/internal/models"
)

// View data for the HTML templates. Every view exposes Title, Description
// and Query for the shared header.

type searchPageData struct {
	SearchQuery   string
	SearchResults models.ResultPage
	Site          models.SiteSettings
}

func (d searchPageData) Title() string       { return "Search" }
func (d searchPageData) Description() string { return "" }
func (d searchPageData) Query() string       { return d.SearchQuery }

type pageData struct {
	Page *models.Page
	Site models.SiteSettings
}

func (d pageData) Title() string {
	if d.Page.SEOTitle != "" {
		return d.Page.SEOTitle
	}
	return d.Page.Title
}

func (d pageData) Description() string { return d.Page.SearchDescription }
func (d pageData) Query() string       { return "" }

type errorPageData struct {
	Status  int
	Message string
	Site    models.SiteSettings
}

func (d errorPageData) Title() string       { return d.Message }
func (d errorPageData) Description() string { return "" }
func (d errorPageData) Query() string       { return "" }

// RenderError renders the HTML error page for status.
func RenderError(c *gin.Context, status int, site models.SiteSettings) {
	tmpl := "500.html"
	if status == http.StatusNotFound {
		tmpl = "404.html"
	}
	c.HTML(status, tmpl, errorPageData{Status: status, Message: http.StatusText(status), Site: site})
}
