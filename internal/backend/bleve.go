package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/mapping"
	"github.com/blevesearch/bleve/search/query"
	"github.com/myproject/website/internal/models"
	"github.com/sirupsen/logrus"
)

// BleveBackend keeps an embedded bleve index of pages.
type BleveBackend struct {
	index  bleve.Index
	logger *logrus.Logger
}

// NewBleveBackend opens the index at indexPath, creating it if missing. An
// empty indexPath keeps the index in memory.
func NewBleveBackend(indexPath string, logger *logrus.Logger) (*BleveBackend, error) {
	index, err := openBleveIndex(indexPath)
	if err != nil {
		return nil, err
	}
	return &BleveBackend{index: index, logger: logger}, nil
}

func openBleveIndex(indexPath string) (bleve.Index, error) {
	if indexPath == "" {
		index, err := bleve.NewMemOnly(pageIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("bleve error while creating memory index: %w", err)
		}
		return index, nil
	}

	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
		index, err := bleve.New(indexPath, pageIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("bleve error while creating new index: %s: %w", indexPath, err)
		}
		return index, nil
	}

	index, err := bleve.Open(indexPath)
	if err != nil {
		return nil, fmt.Errorf("bleve error while opening index: %s: %w", indexPath, err)
	}
	return index, nil
}

// pageIndexMapping analyzes only "text"; the other fields are stored for
// building documents from hits.
func pageIndexMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	text.Store = false
	text.IncludeInAll = false

	stored := bleve.NewTextFieldMapping()
	stored.Index = false
	stored.Store = true
	stored.IncludeInAll = false

	live := bleve.NewBooleanFieldMapping()
	live.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("text", text)
	doc.AddFieldMappingsAt("title", stored)
	doc.AddFieldMappingsAt("url", stored)
	doc.AddFieldMappingsAt("summary", stored)
	doc.AddFieldMappingsAt("live", live)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	im.DefaultAnalyzer = standard.Name
	return im
}

func bleveDocument(p *models.Page) map[string]interface{} {
	return map[string]interface{}{
		"text":    p.SearchText(),
		"title":   p.Title,
		"url":     p.URLPath,
		"summary": p.SearchDescription,
		"live":    p.Live,
	}
}

// IndexPages replaces the indexed set with pages.
func (b *BleveBackend) IndexPages(ctx context.Context, pages []models.Page) error {
	keep := make(map[string]bool, len(pages))
	batch := b.index.NewBatch()
	for i := range pages {
		id := strconv.FormatUint(uint64(pages[i].ID), 10)
		keep[id] = true
		if err := batch.Index(id, bleveDocument(&pages[i])); err != nil {
			return fmt.Errorf("bleve error while indexing page %s: %w", id, err)
		}
	}

	stale, err := b.indexedIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range stale {
		if !keep[id] {
			batch.Delete(id)
		}
	}

	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("bleve error while batch indexing: %w", err)
	}

	b.logger.WithField("pages", len(pages)).Info("Bleve index updated")
	return nil
}

func (b *BleveBackend) indexedIDs(ctx context.Context) ([]string, error) {
	count, err := b.index.DocCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve error while listing documents: %w", err)
	}

	ids := make([]string, len(res.Hits))
	for i, h := range res.Hits {
		ids[i] = h.ID
	}
	return ids, nil
}

func (b *BleveBackend) Search(ctx context.Context, q string, liveOnly bool) ([]models.Document, error) {
	if len(terms(q)) == 0 {
		return []models.Document{}, nil
	}

	match := bleve.NewMatchQuery(q)
	match.SetField("text")
	match.SetOperator(query.MatchQueryOperatorAnd)

	var bq query.Query = match
	if liveOnly {
		live := bleve.NewBoolFieldQuery(true)
		live.SetField("live")
		bq = bleve.NewConjunctionQuery(match, live)
	}

	// Count first so the second request returns the complete match list.
	countReq := bleve.NewSearchRequestOptions(bq, 0, 0, false)
	counted, err := b.index.SearchInContext(ctx, countReq)
	if err != nil {
		b.logger.WithError(err).Error("Error while searching bleve index")
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}
	if counted.Total == 0 {
		return []models.Document{}, nil
	}

	req := bleve.NewSearchRequestOptions(bq, int(counted.Total), 0, false)
	req.Fields = []string{"title", "url", "summary"}
	req.SortBy([]string{"-_score", "_id"})

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		b.logger.WithError(err).Error("Error while searching bleve index")
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	docs := make([]models.Document, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, err := strconv.ParseUint(h.ID, 10, 64)
		if err != nil {
			b.logger.WithField("id", h.ID).Warn("Skipping bleve hit with non-numeric id")
			continue
		}
		docs = append(docs, models.Document{
			ID:      uint(id),
			Title:   stringField(h.Fields, "title"),
			URL:     stringField(h.Fields, "url"),
			Summary: stringField(h.Fields, "summary"),
		})
	}
	return docs, nil
}

func stringField(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

func (b *BleveBackend) Close() error {
	return b.index.Close()
}
