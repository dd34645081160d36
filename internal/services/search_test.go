package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/myproject/website/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}

// countingBackend returns a fixed number of documents and records calls.
type countingBackend struct {
	matches  int
	calls    int
	queries  []string
	liveOnly []bool
	err      error
}

func (b *countingBackend) Search(ctx context.Context, query string, liveOnly bool) ([]models.Document, error) {
	b.calls++
	b.queries = append(b.queries, query)
	b.liveOnly = append(b.liveOnly, liveOnly)
	if b.err != nil {
		return nil, b.err
	}
	docs := make([]models.Document, b.matches)
	for i := range docs {
		docs[i] = models.Document{ID: uint(i + 1), Title: fmt.Sprintf("Page %d", i+1)}
	}
	return docs, nil
}

func docIDs(docs []models.Document) []uint {
	out := make([]uint, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestSearch_EmptyQuerySkipsBackend(t *testing.T) {
	backend := &countingBackend{matches: 3}
	svc := NewSearchService(backend, testLogger())

	res, err := svc.Search(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, 0, backend.calls)
	assert.Equal(t, "", res.Query)
	assert.Empty(t, res.Results.Items)
	assert.Equal(t, 0, res.Results.TotalCount)
	assert.Equal(t, 1, res.Results.Number)
	assert.Equal(t, 0, res.Results.TotalPages)
}

func TestSearch_WhitespaceQueryIsPassedThrough(t *testing.T) {
	backend := &countingBackend{}
	svc := NewSearchService(backend, testLogger())

	res, err := svc.Search(context.Background(), "  ", "")
	require.NoError(t, err)
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, "  ", res.Query)
}

func TestSearch_LiveOnlyAndVerbatimQuery(t *testing.T) {
	backend := &countingBackend{matches: 1}
	svc := NewSearchService(backend, testLogger())

	res, err := svc.Search(context.Background(), "TEST Drive", "1")
	require.NoError(t, err)

	assert.Equal(t, []string{"TEST Drive"}, backend.queries)
	assert.Equal(t, []bool{true}, backend.liveOnly)
	assert.Equal(t, "TEST Drive", res.Query)
}

func TestSearch_PageSelection(t *testing.T) {
	tests := []struct {
		name      string
		matches   int
		page      string
		wantPage  int
		wantTotal int
		wantIDs   []uint
	}{
		{"first page", 15, "1", 1, 2, []uint{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"second page", 15, "2", 2, 2, []uint{11, 12, 13, 14, 15}},
		{"missing page", 15, "", 1, 2, []uint{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"not an integer", 15, "abc", 1, 2, []uint{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"beyond last page", 15, "99", 2, 2, []uint{11, 12, 13, 14, 15}},
		{"zero", 15, "0", 2, 2, []uint{11, 12, 13, 14, 15}},
		{"negative", 15, "-3", 2, 2, []uint{11, 12, 13, 14, 15}},
		{"overflow", 15, "99999999999999999999999", 2, 2, []uint{11, 12, 13, 14, 15}},
		{"padded", 15, " 2 ", 2, 2, []uint{11, 12, 13, 14, 15}},
		{"exactly one page", 10, "2", 1, 1, []uint{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"no matches", 0, "5", 1, 0, []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSearchService(&countingBackend{matches: tt.matches}, testLogger())

			res, err := svc.Search(context.Background(), "q", tt.page)
			require.NoError(t, err)

			assert.Equal(t, tt.wantPage, res.Results.Number)
			assert.Equal(t, tt.wantTotal, res.Results.TotalPages)
			assert.Equal(t, tt.matches, res.Results.TotalCount)
			assert.Equal(t, tt.wantIDs, docIDs(res.Results.Items))
		})
	}
}

func TestSearch_NoCaching(t *testing.T) {
	backend := &countingBackend{matches: 4}
	svc := NewSearchService(backend, testLogger())

	_, err := svc.Search(context.Background(), "q", "1")
	require.NoError(t, err)
	backend.matches = 12
	res, err := svc.Search(context.Background(), "q", "1")
	require.NoError(t, err)

	assert.Equal(t, 2, backend.calls)
	assert.Equal(t, 12, res.Results.TotalCount)
}

func TestSearch_BackendError(t *testing.T) {
	boom := errors.New("index offline")
	svc := NewSearchService(&countingBackend{err: boom}, testLogger())

	res, err := svc.Search(context.Background(), "q", "1")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)
}
