package models

import (
	"slices"
	"strings"
	"time"
)

// Paper 统一的论文数据模型，ID 由 arXiv 分配，多次抓取保持不变
type Paper struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Summary     string     `db:"summary" json:"summary"`
	Authors     string     `db:"authors" json:"authors"`       // 展示用, ", " 拼接
	Categories  string     `db:"categories" json:"categories"` // 展示用, ", " 拼接
	PublishedAt time.Time  `db:"published_at" json:"published_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`
	PDFURL      string     `db:"pdf_url" json:"pdf_url"`
	LinkURL     string     `db:"link_url" json:"link_url"`

	// 以下两个字段只来自本地状态，网络抓取的论文永远是未收藏
	IsFavorite  bool       `db:"is_favorite" json:"is_favorite"`
	FavoritedAt *time.Time `db:"favorited_at" json:"favorited_at,omitempty"`
}

// JoinAuthors 以 ", " 拼接作者名
func JoinAuthors(names []string) string {
	return strings.Join(compact(names), ", ")
}

// JoinCategories 以 ", " 拼接分类
func JoinCategories(cats []string) string {
	return strings.Join(compact(cats), ", ")
}

// AuthorList 把展示字符串拆回作者列表
func (p *Paper) AuthorList() []string {
	return compact(strings.Split(p.Authors, ","))
}

// CategoryList 把展示字符串拆回分类列表
func (p *Paper) CategoryList() []string {
	return compact(strings.Split(p.Categories, ","))
}

// SetFavorite 修改收藏状态。取消收藏时一并清空 FavoritedAt，避免旧时间戳在下次收藏前被读到
func (p *Paper) SetFavorite(favorite bool, now time.Time) {
	p.IsFavorite = favorite
	if favorite {
		t := now
		p.FavoritedAt = &t
		return
	}
	p.FavoritedAt = nil
}

// MergeLocalState 把本地的收藏状态合并到刚抓取的副本上
func (p *Paper) MergeLocalState(local *Paper) {
	if local == nil || local.ID != p.ID {
		return
	}
	p.IsFavorite = local.IsFavorite
	p.FavoritedAt = local.FavoritedAt
}

// SortByFavoritedAt 按收藏时间倒序排列，没有时间戳的视为最早
func SortByFavoritedAt(papers []*Paper) {
	slices.SortStableFunc(papers, func(a, b *Paper) int {
		return favoritedUnix(b).Compare(favoritedUnix(a))
	})
}

func favoritedUnix(p *Paper) time.Time {
	if p.FavoritedAt == nil {
		return time.Time{}
	}
	return *p.FavoritedAt
}

// Dedup 按 ID 去重，保留第一次出现的论文
func Dedup(papers []*Paper) []*Paper {
	seen := make(map[string]struct{}, len(papers))
	out := make([]*Paper, 0, len(papers))
	for _, p := range papers {
		if p == nil {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
