package repository

import (
	"errors"
	"fmt"

	"github.com/myproject/website/internal/models"
	"gorm.io/gorm"
)

// ErrPageNotFound is returned when no page matches a lookup.
var ErrPageNotFound = errors.New("page not found")

// PageRepositoryImpl implements PageRepository
type PageRepositoryImpl struct {
	db *gorm.DB
}

func NewPageRepository(db *gorm.DB) models.PageRepository {
	return &PageRepositoryImpl{db: db}
}

func (r *PageRepositoryImpl) Create(page *models.Page) error {
	return r.db.Create(page).Error
}

func (r *PageRepositoryImpl) GetByID(id uint) (*models.Page, error) {
	var page models.Page
	if err := r.db.First(&page, id).Error; err != nil {
		return nil, translate(err)
	}
	return &page, nil
}

func (r *PageRepositoryImpl) GetByURLPath(urlPath string) (*models.Page, error) {
	var page models.Page
	err := r.db.Where("url_path = ?", urlPath).First(&page).Error
	if err != nil {
		return nil, translate(err)
	}
	return &page, nil
}

func (r *PageRepositoryImpl) GetLiveByURLPath(urlPath string) (*models.Page, error) {
	var page models.Page
	err := r.db.Where("url_path = ? AND live = ?", urlPath, true).First(&page).Error
	if err != nil {
		return nil, translate(err)
	}
	return &page, nil
}

// GetByIDs returns the pages among ids, in the order of ids. With liveOnly
// drafts are skipped.
func (r *PageRepositoryImpl) GetByIDs(ids []uint, liveOnly bool) ([]models.Page, error) {
	if len(ids) == 0 {
		return []models.Page{}, nil
	}

	tx := r.db.Where("id IN ?", ids)
	if liveOnly {
		tx = tx.Where("live = ?", true)
	}

	var found []models.Page
	if err := tx.Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Page, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	ordered := make([]models.Page, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
			delete(byID, id)
		}
	}
	return ordered, nil
}

func (r *PageRepositoryImpl) GetAll() ([]models.Page, error) {
	var pages []models.Page
	err := r.db.Order("id").Find(&pages).Error
	return pages, err
}

// Upsert creates the page or updates the existing page with the same url path.
func (r *PageRepositoryImpl) Upsert(page *models.Page) error {
	existing, err := r.GetByURLPath(page.URLPath)
	switch {
	case errors.Is(err, ErrPageNotFound):
		return r.Create(page)
	case err != nil:
		return fmt.Errorf("failed to look up page %s: %w", page.URLPath, err)
	}

	page.ID = existing.ID
	page.CreatedAt = existing.CreatedAt
	if page.PageType == "" {
		page.PageType = existing.PageType
	}
	return r.db.Save(page).Error
}

func (r *PageRepositoryImpl) Delete(id uint) error {
	return r.db.Delete(&models.Page{}, id).Error
}

// SEOSettingsRepositoryImpl implements SEOSettingsRepository
type SEOSettingsRepositoryImpl struct {
	db *gorm.DB
}

func NewSEOSettingsRepository(db *gorm.DB) models.SEOSettingsRepository {
	return &SEOSettingsRepositoryImpl{db: db}
}

func (r *SEOSettingsRepositoryImpl) GetFirst() (*models.SEOSettings, error) {
	var settings models.SEOSettings
	if err := r.db.Order("id").First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *SEOSettingsRepositoryImpl) Save(settings *models.SEOSettings) error {
	return r.db.Save(settings).Error
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPageNotFound
	}
	return err
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	Page        models.PageRepository
	SEOSettings models.SEOSettingsRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		Page:        NewPageRepository(db),
		SEOSettings: NewSEOSettingsRepository(db),
	}
}
