package backend

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/myproject/website/internal/models"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const ftsSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS page_index USING fts5(
	page_id UNINDEXED,
	title UNINDEXED,
	url UNINDEXED,
	summary UNINDEXED,
	live UNINDEXED,
	text,
	tokenize = 'unicode61'
)`

// FTSBackend keeps pages in a SQLite FTS5 table.
type FTSBackend struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewFTSBackend opens the FTS database at path. ":memory:" keeps it in memory.
func NewFTSBackend(path string, logger *logrus.Logger) (*FTSBackend, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fts database: %w", err)
	}
	// A single connection keeps one view of an in-memory database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(ftsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create fts table: %w", err)
	}

	return &FTSBackend{db: db, logger: logger}, nil
}

// IndexPages replaces the indexed set with pages.
func (f *FTSBackend) IndexPages(ctx context.Context, pages []models.Page) error {
	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin fts transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM page_index`); err != nil {
		return fmt.Errorf("failed to clear fts table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO page_index (page_id, title, url, summary, live, text) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare fts insert: %w", err)
	}
	defer stmt.Close()

	for i := range pages {
		p := &pages[i]
		live := 0
		if p.Live {
			live = 1
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.Title, p.URLPath, p.SearchDescription, live, p.SearchText()); err != nil {
			return fmt.Errorf("failed to index page %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit fts index: %w", err)
	}

	f.logger.WithField("pages", len(pages)).Info("FTS index updated")
	return nil
}

func (f *FTSBackend) Search(ctx context.Context, query string, liveOnly bool) ([]models.Document, error) {
	match := ftsMatchExpression(query)
	if match == "" {
		return []models.Document{}, nil
	}

	rows, err := f.db.QueryContext(ctx, `
		SELECT page_id, title, url, summary
		FROM page_index
		WHERE page_index MATCH ? AND (? = 0 OR live = 1)
		ORDER BY rank, CAST(page_id AS INTEGER)`,
		match, boolToInt(liveOnly))
	if err != nil {
		return nil, fmt.Errorf("fts search failed: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		var (
			id                  int64
			title, url, summary string
		)
		if err := rows.Scan(&id, &title, &url, &summary); err != nil {
			return nil, fmt.Errorf("failed to scan fts row: %w", err)
		}
		docs = append(docs, models.Document{ID: uint(id), Title: title, URL: url, Summary: summary})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fts search failed: %w", err)
	}
	return docs, nil
}

// ftsMatchExpression quotes every term so user input is never parsed as
// FTS5 query syntax. Quoted terms are implicitly ANDed.
func ftsMatchExpression(query string) string {
	words := terms(query)
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (f *FTSBackend) Close() error {
	return f.db.Close()
}
