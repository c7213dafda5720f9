package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArxivBrowser/internal/models"
	"ArxivBrowser/internal/platform"
)

// fakePlatform 按调用顺序返回预设结果并记录收到的查询
type fakePlatform struct {
	mu      sync.Mutex
	queries []platform.Query
	results []platform.Result
	err     error
}

func (f *fakePlatform) Name() string { return "fake" }
func (f *fakePlatform) GetConfig() platform.Config { return nil }
func (f *fakePlatform) Search(ctx context.Context, q platform.Query) (platform.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return platform.Result{}, f.err
	}
	i := len(f.queries) - 1
	if i < len(f.results) {
		return f.results[i], nil
	}
	return platform.Result{}, nil
}

func entry(id string) *platform.Entry {
	return &platform.Entry{
		ID:          id,
		Title:       "Paper " + id,
		Authors:     []string{"Alice", "Bob"},
		Categories:  []string{"cs.AI", "cs.LG"},
		Published:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		AbstractURL: "https://arxiv.org/abs/" + id,
	}
}

func result(ids ...string) platform.Result {
	r := platform.Result{Total: len(ids)}
	for _, id := range ids {
		r.Entries = append(r.Entries, entry(id))
	}
	return r
}

func TestFetchCategorySingleQuery(t *testing.T) {
	fp := &fakePlatform{results: []platform.Result{result("1", "2")}}
	g := New(fp)

	papers, err := g.FetchCategory(context.Background(), models.CategoryPhysics, 5)
	require.NoError(t, err)
	assert.Len(t, papers, 2)

	require.Len(t, fp.queries, 1)
	q := fp.queries[0]
	assert.Equal(t, physicsSubjects, q.Subjects)
	assert.Equal(t, platform.SortLastUpdated, q.SortBy)
	assert.Equal(t, platform.Descending, q.Order)
	assert.Equal(t, 5, q.Limit)
	assert.Empty(t, q.Term)
}

func TestFetchCategoryEmptyDoesNotEscalate(t *testing.T) {
	fp := &fakePlatform{}
	g := New(fp)

	papers, err := g.FetchCategory(context.Background(), models.CategoryEconomics, 10)
	require.NoError(t, err)
	assert.Empty(t, papers)
	assert.Len(t, fp.queries, 1)
}

func TestFetchLatestFirstTier(t *testing.T) {
	fp := &fakePlatform{results: []platform.Result{result("1")}}
	g := New(fp)

	papers, err := g.FetchCategory(context.Background(), models.CategoryLatest, 10)
	require.NoError(t, err)
	assert.Len(t, papers, 1)
	require.Len(t, fp.queries, 1)
	assert.Equal(t, []string{"cs.*", "stat.*", "math.*"}, fp.queries[0].Subjects)
}

func TestFetchLatestEscalates(t *testing.T) {
	fp := &fakePlatform{results: []platform.Result{{}, {}, result("9")}}
	g := New(fp)

	papers, err := g.FetchCategory(context.Background(), models.CategoryLatest, 10)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "9", papers[0].ID)

	require.Len(t, fp.queries, 3)
	assert.Equal(t, allSubjects(), fp.queries[1].Subjects)
	assert.True(t, fp.queries[2].Empty(), "最后一档应是不带条件的查询")
}

func TestFetchLatestAllTiersEmpty(t *testing.T) {
	fp := &fakePlatform{}
	g := New(fp)

	papers, err := g.FetchCategory(context.Background(), models.CategoryLatest, 10)
	require.NoError(t, err)
	assert.Empty(t, papers)
	assert.Len(t, fp.queries, 3, "最多请求三次")
}

func TestFetchLatestErrorStopsEscalation(t *testing.T) {
	fp := &fakePlatform{err: errors.New("connection refused")}
	g := New(fp)

	_, err := g.FetchCategory(context.Background(), models.CategoryLatest, 10)
	require.Error(t, err)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Contains(t, netErr.Message, "connection refused")
	assert.Len(t, fp.queries, 1)
}

func TestFetchCategoryRejectsNonFixed(t *testing.T) {
	g := New(&fakePlatform{})
	_, err := g.FetchCategory(context.Background(), models.CategoryFavorites, 10)
	assert.Error(t, err)
	_, err = g.FetchCategory(context.Background(), models.CategorySearch, 10)
	assert.Error(t, err)
}

func TestFetchDedupAndTruncate(t *testing.T) {
	fp := &fakePlatform{results: []platform.Result{result("1", "2", "1", "3", "4")}}
	g := New(fp)

	papers, err := g.FetchCategory(context.Background(), models.CategoryComputerScience, 3)
	require.NoError(t, err)
	require.Len(t, papers, 3)
	assert.Equal(t, "1", papers[0].ID)
	assert.Equal(t, "2", papers[1].ID)
	assert.Equal(t, "3", papers[2].ID)
}

func TestFetchDefaultLimit(t *testing.T) {
	fp := &fakePlatform{}
	g := New(fp)

	_, err := g.FetchCategory(context.Background(), models.CategoryStatistics, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, fp.queries[0].Limit)
}

func TestSearch(t *testing.T) {
	fp := &fakePlatform{results: []platform.Result{result("1"), result("2")}}
	g := New(fp)

	_, err := g.Search(context.Background(), "  diffusion  ", "", 10, true)
	require.NoError(t, err)
	q := fp.queries[0]
	assert.Equal(t, "diffusion", q.Term)
	assert.Equal(t, platform.FieldTitle, q.Field)
	assert.Equal(t, platform.SortRelevance, q.SortBy)
	assert.Empty(t, q.Subjects)

	_, err = g.Search(context.Background(), "diffusion", "cs.CV", 10, false)
	require.NoError(t, err)
	q = fp.queries[1]
	assert.Equal(t, []string{"cs.CV"}, q.Subjects)
	assert.Equal(t, platform.SortLastUpdated, q.SortBy)
}

func TestSearchCategoryFilterAlias(t *testing.T) {
	fp := &fakePlatform{}
	g := New(fp)

	_, err := g.Search(context.Background(), "x", "math", 10, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"math.*"}, fp.queries[0].Subjects)
}

func TestConvertEntry(t *testing.T) {
	updated := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	e := entry("2503.01234")
	e.Updated = &updated
	e.PDFURL = "https://arxiv.org/pdf/2503.01234"

	p := ConvertEntry(e)
	assert.Equal(t, "2503.01234", p.ID)
	assert.Equal(t, "Alice, Bob", p.Authors)
	assert.Equal(t, "cs.AI, cs.LG", p.Categories)
	assert.Equal(t, "https://arxiv.org/abs/2503.01234", p.LinkURL)
	assert.Equal(t, e.PDFURL, p.PDFURL)
	require.NotNil(t, p.UpdatedAt)
	assert.Equal(t, updated, *p.UpdatedAt)
	assert.False(t, p.IsFavorite)
	assert.Nil(t, p.FavoritedAt)
}
