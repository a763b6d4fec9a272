package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmcandra/mebelshop/pkg/search"
)

func catalog() []search.Document {
	return []search.Document{
		{ID: 1, Name: "Kursi Jati Minimalis", Category: "Kursi"},
		{ID: 2, Name: "Meja Makan Jati", Category: "Meja"},
		{ID: 3, Name: "Lemari Pakaian 3 Pintu", Category: "Lemari"},
		{ID: 4, Name: "Sofa Sudut Kulit", Category: "Sofa"},
	}
}

func TestQueryMatchesTypos(t *testing.T) {
	ix := search.NewIndex()
	ix.Reload(catalog())

	results := ix.Query("kursi jti", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, uint(1), results[0].Document.ID)
}

func TestQueryIsCaseInsensitive(t *testing.T) {
	ix := search.NewIndex()
	ix.Reload(catalog())

	results := ix.Query("LEMARI", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, uint(3), results[0].Document.ID)
}

func TestQueryHonorsLimit(t *testing.T) {
	ix := search.NewIndex()
	ix.Reload(catalog())

	results := ix.Query("a", 2)
	assert.LessOrEqual(t, len(results), 2)
}

func TestEmptyQueryReturnsNothing(t *testing.T) {
	ix := search.NewIndex()
	ix.Reload(catalog())

	assert.Nil(t, ix.Query("   ", 10))
}

func TestReloadReplacesIndex(t *testing.T) {
	ix := search.NewIndex()
	ix.Reload(catalog())
	require.Equal(t, 4, ix.Len())

	ix.Reload([]search.Document{{ID: 9, Name: "Rak Buku", Category: "Rak"}})
	assert.Equal(t, 1, ix.Len())
	assert.Empty(t, ix.Query("kursi", 10))
}
