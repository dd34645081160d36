package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBleve(t *testing.T) *BleveBackend {
	t.Helper()
	b, err := NewBleveBackend("", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	require.NoError(t, b.IndexPages(context.Background(), fixturePages()))
	return b
}

func TestBleveBackend_Contract(t *testing.T) {
	assertSearcherContract(t, newBleve(t))
}

func TestBleveBackend_IncludesDraftsWhenAsked(t *testing.T) {
	b := newBleve(t)

	docs, err := b.Search(context.Background(), "unpublished", false)
	require.NoError(t, err)
	assert.Equal(t, []uint{3}, ids(docs))

	docs, err = b.Search(context.Background(), "unpublished", true)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestBleveBackend_ReindexDropsStalePages(t *testing.T) {
	b := newBleve(t)
	ctx := context.Background()

	pages := fixturePages()
	require.NoError(t, b.IndexPages(ctx, pages[:2]))

	docs, err := b.Search(ctx, "pricing", true)
	require.NoError(t, err)
	assert.Empty(t, docs)

	count, err := b.index.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestBleveBackend_ReturnsEveryMatch(t *testing.T) {
	b := newBleve(t)
	ctx := context.Background()

	pages := fixturePages()[:0]
	for i := 1; i <= 25; i++ {
		p := fixturePages()[1]
		p.ID = uint(100 + i)
		p.URLPath = "/testing/" + string(rune('a'+i)) + "/"
		pages = append(pages, p)
	}
	require.NoError(t, b.IndexPages(ctx, pages))

	docs, err := b.Search(ctx, "integration", true)
	require.NoError(t, err)
	assert.Len(t, docs, 25)
}

func TestBleveBackend_ReopensOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx", "pages.bleve")

	b, err := NewBleveBackend(path, testLogger())
	require.NoError(t, err)
	require.NoError(t, b.IndexPages(context.Background(), fixturePages()))
	require.NoError(t, b.Close())

	reopened, err := NewBleveBackend(path, testLogger())
	require.NoError(t, err)
	defer reopened.Close()

	docs, err := reopened.Search(context.Background(), "pricing", true)
	require.NoError(t, err)
	assert.Equal(t, []uint{4}, ids(docs))
}
