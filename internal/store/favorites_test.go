package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArxivBrowser/internal/models"
)

// tickingClock 每次调用前进一分钟
func tickingClock() func() time.Time {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

func loadAll(t *testing.T, s *Store, categories ...models.Category) {
	t.Helper()
	for _, c := range categories {
		require.NoError(t, s.Load(context.Background(), c))
	}
}

func TestToggleFavoritePropagates(t *testing.T) {
	f := newFakeFetcher()
	f.papers[models.CategoryLatest] = []string{"1", "2"}
	f.papers[models.CategoryComputerScience] = []string{"1", "3"}
	db := newMemStorage()
	s := newTestStore(f, WithStorage(db), WithClock(tickingClock()))
	defer s.Close()

	loadAll(t, s, models.CategoryLatest, models.CategoryComputerScience)

	p, err := s.ToggleFavorite(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, p.IsFavorite)
	require.NotNil(t, p.FavoritedAt)

	for _, c := range []models.Category{models.CategoryLatest, models.CategoryComputerScience} {
		list := s.Papers(c)
		assert.True(t, list[0].IsFavorite, "%s 中的副本应同步", c)
	}
	assert.Equal(t, []string{"1"}, ids(s.Papers(models.CategoryFavorites)))

	stored, err := db.GetPaper("1")
	require.NoError(t, err)
	assert.True(t, stored.IsFavorite)

	p, err = s.ToggleFavorite(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, p.IsFavorite)
	assert.Nil(t, p.FavoritedAt)
	assert.False(t, s.Papers(models.CategoryLatest)[0].IsFavorite)
	assert.False(t, s.Papers(models.CategoryComputerScience)[0].IsFavorite)
	assert.Empty(t, s.Papers(models.CategoryFavorites))

	stored, err = db.GetPaper("1")
	require.NoError(t, err)
	assert.False(t, stored.IsFavorite)
	assert.Equal(t, 2, db.saves)
}

func TestToggleFavoriteInSearchResults(t *testing.T) {
	f := newFakeFetcher()
	s := newTestStore(f)
	defer s.Close()

	require.NoError(t, s.Search(context.Background(), "llm", ""))
	_, err := s.ToggleFavorite(context.Background(), "s-llm")
	require.NoError(t, err)

	assert.True(t, s.Papers(models.CategorySearch)[0].IsFavorite)
	assert.Equal(t, []string{"s-llm"}, ids(s.Papers(models.CategoryFavorites)))
}

func TestToggleFavoriteUnknownPaper(t *testing.T) {
	s := newTestStore(newFakeFetcher())
	defer s.Close()

	_, err := s.ToggleFavorite(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPaperNotFound)
	assert.Empty(t, s.Papers(models.CategoryFavorites))
}

func TestToggleFavoriteFallsBackToStorage(t *testing.T) {
	db := newMemStorage()
	require.NoError(t, db.Upsert(&models.Paper{ID: "old", Title: "Stored"}))
	s := newTestStore(newFakeFetcher(), WithStorage(db))
	defer s.Close()

	p, err := s.ToggleFavorite(context.Background(), "old")
	require.NoError(t, err)
	assert.True(t, p.IsFavorite)
	assert.Equal(t, "Stored", p.Title)
	assert.Equal(t, []string{"old"}, ids(s.Papers(models.CategoryFavorites)))
}

func TestFavoritesOrderedByFavoritedAt(t *testing.T) {
	f := newFakeFetcher()
	f.papers[models.CategoryMathematics] = []string{"a", "b", "c"}
	s := newTestStore(f, WithClock(tickingClock()))
	defer s.Close()

	loadAll(t, s, models.CategoryMathematics)
	for _, id := range []string{"b", "a", "c"} {
		_, err := s.ToggleFavorite(context.Background(), id)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids(s.Papers(models.CategoryFavorites)))
}

func TestReloadKeepsFavoriteFlag(t *testing.T) {
	f := newFakeFetcher()
	f.papers[models.CategoryComputerScience] = []string{"1", "2"}
	s := newTestStore(f)
	defer s.Close()

	loadAll(t, s, models.CategoryComputerScience)
	_, err := s.ToggleFavorite(context.Background(), "2")
	require.NoError(t, err)

	// 重新抓取得到的是全新的未收藏对象
	loadAll(t, s, models.CategoryComputerScience)
	list := s.Papers(models.CategoryComputerScience)
	assert.False(t, list[0].IsFavorite)
	assert.True(t, list[1].IsFavorite)
	assert.NotNil(t, list[1].FavoritedAt)
}

func TestRestoreFavoritesRoundTrip(t *testing.T) {
	db := newMemStorage()
	f := newFakeFetcher()
	f.papers[models.CategoryLatest] = []string{"1", "2"}

	first := newTestStore(f, WithStorage(db), WithClock(tickingClock()))
	loadAll(t, first, models.CategoryLatest)
	_, err := first.ToggleFavorite(context.Background(), "2")
	require.NoError(t, err)
	first.Close()

	// 模拟重启
	second := newTestStore(f, WithStorage(db))
	defer second.Close()
	require.NoError(t, second.RestoreFavorites())
	assert.Equal(t, []string{"2"}, ids(second.Papers(models.CategoryFavorites)))

	loadAll(t, second, models.CategoryLatest)
	list := second.Papers(models.CategoryLatest)
	assert.False(t, list[0].IsFavorite)
	assert.True(t, list[1].IsFavorite, "重启后抓取的论文应带上本地收藏状态")
}

func TestLoadFavoritesFromStorage(t *testing.T) {
	db := newMemStorage()
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.SaveFavorite(&models.Paper{ID: "fav", IsFavorite: true, FavoritedAt: &at}))

	f := newFakeFetcher()
	s := newTestStore(f, WithStorage(db))
	defer s.Close()

	loadAll(t, s, models.CategoryFavorites)
	assert.Equal(t, []string{"fav"}, ids(s.Papers(models.CategoryFavorites)))
	assert.Equal(t, models.CategoryFavorites, s.CurrentCategory())
	assert.Zero(t, f.calls, "收藏列表不发网络请求")
}

func TestLoadFavoritesDerivesFromMemory(t *testing.T) {
	db := newMemStorage()
	f := newFakeFetcher()
	f.papers[models.CategoryLatest] = []string{"1", "2"}
	f.papers[models.CategoryPhysics] = []string{"3"}
	s := newTestStore(f, WithStorage(db), WithClock(tickingClock()))
	defer s.Close()

	loadAll(t, s, models.CategoryLatest, models.CategoryPhysics)
	for _, id := range []string{"3", "1"} {
		_, err := s.ToggleFavorite(context.Background(), id)
		require.NoError(t, err)
	}

	db.failReads = true
	loadAll(t, s, models.CategoryFavorites)
	assert.Equal(t, []string{"1", "3"}, ids(s.Papers(models.CategoryFavorites)))
}

func TestAllPapersDedup(t *testing.T) {
	f := newFakeFetcher()
	f.papers[models.CategoryLatest] = []string{"1", "2"}
	f.papers[models.CategoryComputerScience] = []string{"2", "3"}
	s := newTestStore(f)
	defer s.Close()

	loadAll(t, s, models.CategoryComputerScience, models.CategoryLatest)
	require.NoError(t, s.Search(context.Background(), "x", ""))

	assert.Equal(t, []string{"1", "2", "3"}, ids(s.AllPapers()), "按固定分类顺序扫描，不含搜索结果")
}
