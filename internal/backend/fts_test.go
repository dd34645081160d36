package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFTS(t *testing.T) *FTSBackend {
	t.Helper()
	f, err := NewFTSBackend(":memory:", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	require.NoError(t, f.IndexPages(context.Background(), fixturePages()))
	return f
}

func TestFTSBackend_Contract(t *testing.T) {
	assertSearcherContract(t, newFTS(t))
}

func TestFTSBackend_QuerySyntaxIsLiteral(t *testing.T) {
	f := newFTS(t)
	for _, q := range []string{`test OR`, `NOT test`, `title:home`, `(test`, `test*`, `test"drive`} {
		_, err := f.Search(context.Background(), q, true)
		assert.NoError(t, err, "query %q", q)
	}
}

func TestFTSBackend_ReindexReplaces(t *testing.T) {
	f := newFTS(t)
	ctx := context.Background()

	require.NoError(t, f.IndexPages(ctx, fixturePages()[3:4]))

	docs, err := f.Search(ctx, "welcome", true)
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = f.Search(ctx, "plans", true)
	require.NoError(t, err)
	assert.Equal(t, []uint{4}, ids(docs))
}

func TestFTSMatchExpression(t *testing.T) {
	assert.Equal(t, `"hello" "world"`, ftsMatchExpression("  hello   world "))
	assert.Equal(t, `"say" """hi"""`, ftsMatchExpression(`say "hi"`))
	assert.Equal(t, "", ftsMatchExpression(" \t "))
}
