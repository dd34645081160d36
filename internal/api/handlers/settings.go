package handlers

import (
	"github.com/myproject/website/internal/models"
	"github.com/sirupsen/logrus"
)

// SettingsProvider returns the site-wide settings for one request.
type SettingsProvider interface {
	SiteSettings() models.SiteSettings
}

// SEOSiteSettings reads the first SEO settings row on every call so that
// edits are visible without a restart. A missing row yields empty strings.
type SEOSiteSettings struct {
	repo   models.SEOSettingsRepository
	isTest bool
	logger *logrus.Logger
}

func NewSEOSiteSettings(repo models.SEOSettingsRepository, isTest bool, logger *logrus.Logger) *SEOSiteSettings {
	return &SEOSiteSettings{repo: repo, isTest: isTest, logger: logger}
}

func (s *SEOSiteSettings) SiteSettings() models.SiteSettings {
	settings := models.SiteSettings{IsTestEnvironment: s.isTest}
	if s.repo == nil {
		return settings
	}

	seo, err := s.repo.GetFirst()
	if err != nil {
		s.logger.WithError(err).Debug("No SEO settings available")
		return settings
	}
	settings.SiteName = seo.SiteName
	settings.SiteDescription = seo.DefaultDescription
	return settings
}
