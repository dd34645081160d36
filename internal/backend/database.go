package backend

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/myproject/website/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// searchColumns are matched by the database backend.
var searchColumns = []string{"title", "seo_title", "hero_title", "search_description", "body"}

// DatabaseBackend matches pages with LIKE directly against the page store.
// Every query term must occur in at least one searched column.
//
// SQL LOWER only folds ASCII on sqlite (and on postgres under the C locale),
// so LIKE narrows rows for ASCII terms and the final match is decided with
// Unicode case folding in Go.
type DatabaseBackend struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewDatabaseBackend(db *gorm.DB, logger *logrus.Logger) *DatabaseBackend {
	return &DatabaseBackend{db: db, logger: logger}
}

func (b *DatabaseBackend) Search(ctx context.Context, query string, liveOnly bool) ([]models.Document, error) {
	words := terms(query)
	if len(words) == 0 {
		return []models.Document{}, nil
	}

	tx := b.db.WithContext(ctx).Model(&models.Page{})
	if liveOnly {
		tx = tx.Where("live = ?", true)
	}

	folded := make([]string, len(words))
	for i, word := range words {
		folded[i] = strings.ToLower(word)
	}

	for _, word := range folded {
		if !isASCII(word) {
			continue
		}
		pattern := "%" + escapeLike(word) + "%"
		clauses := make([]string, len(searchColumns))
		args := make([]interface{}, len(searchColumns))
		for i, col := range searchColumns {
			clauses[i] = fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '!'", col)
			args[i] = pattern
		}
		tx = tx.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	var pages []models.Page
	if err := tx.Order("id").Find(&pages).Error; err != nil {
		return nil, fmt.Errorf("database search failed: %w", err)
	}

	docs := make([]models.Document, 0, len(pages))
	for i := range pages {
		if matchesAll(&pages[i], folded) {
			docs = append(docs, pages[i].Document())
		}
	}

	b.logger.WithFields(logrus.Fields{
		"query":   query,
		"matches": len(docs),
	}).Debug("Database search completed")

	return docs, nil
}

// escapeLike escapes LIKE wildcards using '!' as the escape character.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// matchesAll reports whether every folded term occurs in one of the searched fields.
func matchesAll(p *models.Page, folded []string) bool {
	fields := []string{
		strings.ToLower(p.Title),
		strings.ToLower(p.SEOTitle),
		strings.ToLower(p.HeroTitle),
		strings.ToLower(p.SearchDescription),
		strings.ToLower(p.Body),
	}
	for _, term := range folded {
		found := false
		for _, f := range fields {
			if strings.Contains(f, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
