package gateway

import (
	"context"
	"fmt"
	"strings"

	"ArxivBrowser/internal/models"
	"ArxivBrowser/internal/platform"
	"ArxivBrowser/pkg/logger"
)

// DefaultLimit 未配置或配置为 0 时的抓取数量
const DefaultLimit = 10

var log = logger.WithPrefix("gateway")

// Gateway 在检索客户端之上按分类和关键词抓取论文
type Gateway struct {
	client platform.Platform
}

func New(client platform.Platform) *Gateway {
	return &Gateway{client: client}
}

// FetchCategory 抓取某个固定分类的最新论文，按最近更新时间倒序
// latest 在结果为空时依次降级到更宽的查询，其它分类只请求一次
func (g *Gateway) FetchCategory(ctx context.Context, category models.Category, limit int) ([]*models.Paper, error) {
	if !category.Fixed() {
		return nil, fmt.Errorf("category %q cannot be fetched", category)
	}
	limit = normalizeLimit(limit)

	if category != models.CategoryLatest {
		return g.fetch(ctx, platform.Query{
			Subjects: Subjects(category),
			SortBy:   platform.SortLastUpdated,
			Order:    platform.Descending,
			Limit:    limit,
		})
	}

	tiers := []platform.Query{
		{Subjects: Subjects(models.CategoryLatest)},
		{Subjects: allSubjects()},
		{},
	}

	var papers []*models.Paper
	for i, q := range tiers {
		q.SortBy = platform.SortLastUpdated
		q.Order = platform.Descending
		q.Limit = limit

		var err error
		papers, err = g.fetch(ctx, q)
		if err != nil {
			return nil, err
		}
		if len(papers) > 0 {
			break
		}
		if i < len(tiers)-1 {
			log.Warn("latest 第 %d 档查询没有结果，尝试更宽的查询", i+1)
		}
	}
	return papers, nil
}

// Search 在标题中检索关键词，可选按分类过滤
// 空查询由调用方拦截，这里不做检查
func (g *Gateway) Search(ctx context.Context, query, categoryFilter string, limit int, sortByRelevance bool) ([]*models.Paper, error) {
	q := platform.Query{
		Term:     strings.TrimSpace(query),
		Field:    platform.FieldTitle,
		Subjects: filterSubjects(categoryFilter),
		SortBy:   platform.SortLastUpdated,
		Order:    platform.Descending,
		Limit:    normalizeLimit(limit),
	}
	if sortByRelevance {
		q.SortBy = platform.SortRelevance
	}
	return g.fetch(ctx, q)
}

func (g *Gateway) fetch(ctx context.Context, q platform.Query) ([]*models.Paper, error) {
	res, err := g.client.Search(ctx, q)
	if err != nil {
		log.Error("%s 请求失败: %v", g.client.Name(), err)
		return nil, networkError(err)
	}

	papers := make([]*models.Paper, 0, len(res.Entries))
	for _, e := range res.Entries {
		if e == nil || e.ID == "" {
			continue
		}
		papers = append(papers, ConvertEntry(e))
	}
	papers = models.Dedup(papers)
	if len(papers) > q.Limit {
		papers = papers[:q.Limit]
	}
	log.Debug("查询返回 %d 篇论文", len(papers))
	return papers, nil
}

// ConvertEntry 把检索客户端的条目转换为论文模型，收藏状态一律为 false
func ConvertEntry(e *platform.Entry) *models.Paper {
	p := &models.Paper{
		ID:          e.ID,
		Title:       e.Title,
		Summary:     e.Summary,
		Authors:     models.JoinAuthors(e.Authors),
		Categories:  models.JoinCategories(e.Categories),
		PublishedAt: e.Published,
		PDFURL:      e.PDFURL,
		LinkURL:     e.AbstractURL,
		IsFavorite:  false,
	}
	if e.Updated != nil {
		t := *e.Updated
		p.UpdatedAt = &t
	}
	return p
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
