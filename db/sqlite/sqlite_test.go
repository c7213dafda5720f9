package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storage "ArxivBrowser/db"
	"ArxivBrowser/internal/models"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testPaper(id string) *models.Paper {
	updated := time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)
	return &models.Paper{
		ID:          id,
		Title:       "Paper " + id,
		Summary:     "summary",
		Authors:     "Alice, Bob",
		Categories:  "cs.AI",
		PublishedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:   &updated,
		PDFURL:      "https://arxiv.org/pdf/" + id,
		LinkURL:     "https://arxiv.org/abs/" + id,
	}
}

func TestUpsertAndGet(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Upsert(testPaper("2503.00001")))
	got, err := db.GetPaper("2503.00001")
	require.NoError(t, err)

	assert.Equal(t, "Paper 2503.00001", got.Title)
	assert.Equal(t, "Alice, Bob", got.Authors)
	assert.True(t, got.PublishedAt.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, got.UpdatedAt)
	assert.False(t, got.IsFavorite)
	assert.Nil(t, got.FavoritedAt)

	n, err := db.CountPapers()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetPaperNotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := db.GetPaper("missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.True(t, IsNotFound(err))
}

func TestUpsertKeepsFavorite(t *testing.T) {
	db := newTestDB(t)

	p := testPaper("1")
	p.SetFavorite(true, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, db.SaveFavorite(p))

	refreshed := testPaper("1")
	refreshed.Title = "Updated title"
	require.NoError(t, db.Upsert(refreshed))

	got, err := db.GetPaper("1")
	require.NoError(t, err)
	assert.Equal(t, "Updated title", got.Title)
	assert.True(t, got.IsFavorite, "重新抓取不应清除收藏")
	require.NotNil(t, got.FavoritedAt)
}

func TestFavoritesOrderingAndRemoval(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.FixedZone("CST", 8*3600))

	for i, id := range []string{"a", "b", "c"} {
		p := testPaper(id)
		p.SetFavorite(true, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, db.SaveFavorite(p))
	}
	require.NoError(t, db.Upsert(testPaper("not-favorite")))

	favs, err := db.GetFavorites()
	require.NoError(t, err)
	require.Len(t, favs, 3)
	assert.Equal(t, "c", favs[0].ID)
	assert.Equal(t, "b", favs[1].ID)
	assert.Equal(t, "a", favs[2].ID)

	b := favs[1]
	b.SetFavorite(false, time.Now())
	require.NoError(t, db.SaveFavorite(b))

	favs, err = db.GetFavorites()
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, "c", favs[0].ID)
	assert.Equal(t, "a", favs[1].ID)

	got, err := db.GetPaper("b")
	require.NoError(t, err)
	assert.False(t, got.IsFavorite)
	assert.Nil(t, got.FavoritedAt)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	db, err := NewSQLiteDB(path)
	require.NoError(t, err)
	p := testPaper("x")
	p.SetFavorite(true, time.Now())
	require.NoError(t, db.SaveFavorite(p))
	require.NoError(t, db.Close())

	db, err = NewSQLiteDB(path)
	require.NoError(t, err)
	defer db.Close()

	favs, err := db.GetFavorites()
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "x", favs[0].ID)
}
