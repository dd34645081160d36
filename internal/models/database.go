package models

// GORM models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Page types
const (
	PageTypeHome    = "home"
	PageTypeLanding = "landing"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Page is a unit of site content. Only live pages are publicly visible.
type Page struct {
	BaseModel
	Title             string `json:"title" gorm:"not null"`
	Slug              string `json:"slug" gorm:"not null;index"`
	URLPath           string `json:"url_path" gorm:"uniqueIndex;not null"`
	PageType          string `json:"page_type" gorm:"not null;default:'landing'"`
	Live              bool   `json:"live" gorm:"not null;default:false;index"`
	Body              string `json:"body"`
	HeroTitle         string `json:"hero_title"`
	HeroSubtitle      string `json:"hero_subtitle"`
	SearchDescription string `json:"search_description"`
	SEOTitle          string `json:"seo_title"`
	SchemaOrgType     string `json:"schema_org_type" gorm:"default:'WebPage'"`
}

// SearchText is the text indexed for full-text backends.
func (p *Page) SearchText() string {
	parts := []string{p.Title, p.SEOTitle, p.HeroTitle, p.HeroSubtitle, p.SearchDescription, p.Body}
	nonEmpty := parts[:0]
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, "\n")
}

// Document is the search-facing projection of a page.
func (p *Page) Document() Document {
	return Document{
		ID:      p.ID,
		Title:   p.Title,
		URL:     p.URLPath,
		Summary: p.SearchDescription,
	}
}

// SEOSettings holds the site-wide SEO values edited by site administrators.
type SEOSettings struct {
	BaseModel
	SiteName           string `json:"site_name"`
	DefaultDescription string `json:"default_description"`
}

// Database interfaces for repository pattern
type PageRepository interface {
	Create(page *Page) error
	GetByID(id uint) (*Page, error)
	GetByURLPath(urlPath string) (*Page, error)
	GetLiveByURLPath(urlPath string) (*Page, error)
	GetByIDs(ids []uint, liveOnly bool) ([]Page, error)
	GetAll() ([]Page, error)
	Upsert(page *Page) error
	Delete(id uint) error
}

type SEOSettingsRepository interface {
	GetFirst() (*SEOSettings, error)
	Save(settings *SEOSettings) error
}

// TableName methods for custom table names
func (Page) TableName() string        { return "pages" }
func (SEOSettings) TableName() string { return "seo_settings" }

// Model validation methods
func (p *Page) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("page title is required")
	}
	if !strings.HasPrefix(p.URLPath, "/") {
		return fmt.Errorf("url path must start with '/': %q", p.URLPath)
	}
	switch p.PageType {
	case PageTypeHome, PageTypeLanding:
	default:
		return fmt.Errorf("invalid page type: %s", p.PageType)
	}
	return nil
}

// GORM hooks
func (p *Page) BeforeCreate(tx *gorm.DB) error {
	if p.PageType == "" {
		p.PageType = PageTypeLanding
	}
	return p.Validate()
}

func (p *Page) BeforeUpdate(tx *gorm.DB) error {
	return p.Validate()
}
