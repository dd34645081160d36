package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseBackend_Contract(t *testing.T) {
	db, _ := newStore(t)
	assertSearcherContract(t, NewDatabaseBackend(db, testLogger()))
}

func TestDatabaseBackend_OrderedByID(t *testing.T) {
	db, _ := newStore(t)
	b := NewDatabaseBackend(db, testLogger())

	docs, err := b.Search(context.Background(), "test", true)
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 5}, ids(docs))

	withDrafts, err := b.Search(context.Background(), "test", false)
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 3, 5}, ids(withDrafts))
}

func TestDatabaseBackend_EscapesWildcards(t *testing.T) {
	db, _ := newStore(t)
	b := NewDatabaseBackend(db, testLogger())

	docs, err := b.Search(context.Background(), "%", true)
	require.NoError(t, err)
	assert.Equal(t, []uint{4}, ids(docs), "only the page containing a literal %% matches")

	docs, err = b.Search(context.Background(), "_", true)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "100!%", escapeLike("100%"))
	assert.Equal(t, "a!_b", escapeLike("a_b"))
	assert.Equal(t, "wow!!", escapeLike("wow!"))
}
