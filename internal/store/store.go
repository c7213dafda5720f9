// Package store 按分类保存论文列表，负责加载、搜索和收藏状态的同步。
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ArxivBrowser/config"
	storage "ArxivBrowser/db"
	"ArxivBrowser/internal/gateway"
	"ArxivBrowser/internal/models"
	"ArxivBrowser/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// MinimumLoadingDuration 加载状态至少持续的时间，避免加载指示闪烁
const MinimumLoadingDuration = time.Second

var (
	ErrEmptyQuery    = errors.New("search query is empty")
	ErrPaperNotFound = errors.New("paper not found")
)

var log = logger.WithPrefix("store")

// Fetcher 论文抓取接口，由 gateway.Gateway 实现
type Fetcher interface {
	FetchCategory(ctx context.Context, category models.Category, limit int) ([]*models.Paper, error)
	Search(ctx context.Context, query, categoryFilter string, limit int, sortByRelevance bool) ([]*models.Paper, error)
}

// SettingsSource 读取当前用户设置，由 config.Manager 实现
type SettingsSource interface {
	Settings() config.Settings
}

// Snapshot 界面关心的标量状态
type Snapshot struct {
	CurrentCategory models.Category
	IsLoading       bool
	IsSearching     bool
	ErrorMessage    string
	SearchQuery     string
	SearchCategory  string
	IsSearchActive  bool
}

type Option func(*Store)

// WithStorage 设置持久化存储，不设置时只在内存中工作
func WithStorage(db storage.PaperStorage) Option {
	return func(s *Store) { s.storage = db }
}

// WithMinimumDuration 覆盖最短加载时间
func WithMinimumDuration(d time.Duration) Option {
	return func(s *Store) { s.minDuration = d }
}

// WithClock 替换收藏时间使用的时钟
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	fetcher     Fetcher
	storage     storage.PaperStorage
	settings    SettingsSource
	minDuration time.Duration
	now         func() time.Time

	// lifetime 只在 Close 时取消，加载和最短等待都不受调用方 ctx 影响
	lifetime context.Context
	stop     context.CancelFunc

	// 同一分类的并发加载合并为一次
	flights singleflight.Group

	mu             sync.RWMutex
	lists          map[models.Category][]*models.Paper
	current        models.Category
	inFlight       int
	searching      bool
	searchGen      uint64
	errorMessage   string
	searchQuery    string
	searchCategory string
	searchActive   bool
}

func New(fetcher Fetcher, settings SettingsSource, opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		fetcher:     fetcher,
		settings:    settings,
		minDuration: MinimumLoadingDuration,
		now:         time.Now,
		lifetime:    ctx,
		stop:        cancel,
		lists:       make(map[models.Category][]*models.Paper),
		current:     settings.Settings().Category(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close 取消进行中的请求和最短等待
func (s *Store) Close() {
	s.stop()
}

// Load 加载一个分类并替换它的列表。favorites 从存储读取，不发网络请求。
// 同一分类已在加载时直接等待那次结果，但每个调用方仍从自己开始计算最短时间；
// ctx 只决定调用方是否继续等待，加载本身总会跑完
func (s *Store) Load(ctx context.Context, category models.Category) error {
	if !category.Valid() || category == models.CategorySearch {
		return fmt.Errorf("cannot load category %q", category)
	}

	start := time.Now()
	s.mu.Lock()
	s.current = category
	s.inFlight++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	ch := s.flights.DoChan(string(category), func() (interface{}, error) {
		return nil, s.load(category)
	})
	select {
	case res := <-ch:
		if res.Shared {
			log.Debug("分类 %s 的加载与进行中的请求合并", category)
		}
		if err := s.waitMinimum(ctx, start); err != nil {
			return err
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LoadWithSettings 加载配置中的默认分类
func (s *Store) LoadWithSettings(ctx context.Context) error {
	return s.Load(ctx, s.settings.Settings().Category())
}

func (s *Store) load(category models.Category) error {
	start := time.Now()
	s.mu.Lock()
	s.inFlight++
	s.errorMessage = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if category == models.CategoryFavorites {
		s.loadFavorites()
		s.waitMinimum(s.lifetime, start)
		return nil
	}

	limit := s.settings.Settings().Limit()
	log.Info("开始加载分类 %s (limit=%d)", category, limit)

	papers, err := s.fetcher.FetchCategory(s.lifetime, category, limit)
	if err != nil {
		log.Error("加载分类 %s 失败: %v", category, err)
		s.mu.Lock()
		s.errorMessage = userMessage(err)
		s.mu.Unlock()
		s.waitMinimum(s.lifetime, start)
		return err
	}

	s.mu.Lock()
	s.lists[category] = s.mergeLocalLocked(papers)
	s.mu.Unlock()
	s.persist(papers)

	s.waitMinimum(s.lifetime, start)
	log.Info("分类 %s 加载完成，共 %d 篇", category, len(papers))
	return nil
}

// Search 按标题检索。空查询直接返回 ErrEmptyQuery，不改变任何状态。
// 并发搜索时只有最后一次的结果生效
func (s *Store) Search(ctx context.Context, query, categoryFilter string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		log.Debug("搜索词为空，忽略")
		return ErrEmptyQuery
	}
	categoryFilter = strings.TrimSpace(categoryFilter)

	start := time.Now()
	s.mu.Lock()
	s.searchGen++
	gen := s.searchGen
	s.searching = true
	s.errorMessage = ""
	s.searchQuery = query
	s.searchCategory = categoryFilter
	s.searchActive = true
	s.current = models.CategorySearch
	s.mu.Unlock()

	return s.await(ctx, func() error {
		settings := s.settings.Settings()
		log.Info("搜索: %q (分类: %q)", query, categoryFilter)

		papers, err := s.fetcher.Search(s.lifetime, query, categoryFilter, settings.Limit(), settings.SearchSortByRelevance)

		s.mu.Lock()
		if gen == s.searchGen {
			if err != nil {
				s.errorMessage = "搜索失败: " + userMessage(err)
			} else {
				s.lists[models.CategorySearch] = s.mergeLocalLocked(papers)
			}
		}
		s.mu.Unlock()

		if err != nil {
			log.Error("搜索 %q 失败: %v", query, err)
		} else {
			log.Info("搜索 %q 完成，共 %d 条结果", query, len(papers))
		}

		s.waitMinimum(s.lifetime, start)

		s.mu.Lock()
		if gen == s.searchGen {
			s.searching = false
		}
		s.mu.Unlock()
		return err
	})
}

// ClearSearch 清空搜索状态并回到默认分类，进行中的搜索结果会被丢弃
func (s *Store) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.searchGen++
	s.searchQuery = ""
	s.searchCategory = ""
	s.lists[models.CategorySearch] = nil
	s.searchActive = false
	s.searching = false
	s.errorMessage = ""
	s.current = s.settings.Settings().Category()
}

// ChangeCategory 只切换当前分类，不触发加载
func (s *Store) ChangeCategory(category models.Category) error {
	if !category.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}
	s.mu.Lock()
	s.current = category
	s.mu.Unlock()
	return nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		CurrentCategory: s.current,
		IsLoading:       s.inFlight > 0,
		IsSearching:     s.searching,
		ErrorMessage:    s.errorMessage,
		SearchQuery:     s.searchQuery,
		SearchCategory:  s.searchCategory,
		IsSearchActive:  s.searchActive,
	}
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

func (s *Store) CurrentCategory() models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Papers 返回某个分类列表的副本
func (s *Store) Papers(category models.Category) []models.Paper {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyPapers(s.lists[category])
}

// FilteredPapers 当前分类的列表
func (s *Store) FilteredPapers() []models.Paper {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyPapers(s.lists[s.current])
}

// mergeLocalLocked 把收藏列表中的本地状态合并到新抓取的论文上，
// 收藏列表里的旧对象同时替换为新对象
func (s *Store) mergeLocalLocked(papers []*models.Paper) []*models.Paper {
	favorites := s.lists[models.CategoryFavorites]
	if len(favorites) == 0 {
		return papers
	}

	index := make(map[string]int, len(favorites))
	for i, f := range favorites {
		index[f.ID] = i
	}
	for _, p := range papers {
		if i, ok := index[p.ID]; ok {
			p.MergeLocalState(favorites[i])
			favorites[i] = p
		}
	}
	return papers
}

func (s *Store) persist(papers []*models.Paper) {
	if s.storage == nil {
		return
	}
	saved := 0
	for _, p := range papers {
		if err := s.storage.Upsert(p); err != nil {
			log.Warn("保存论文失败 [%s]: %v", p.ID, err)
			continue
		}
		saved++
	}
	log.Debug("已保存 %d/%d 篇论文到本地存储", saved, len(papers))
}

// waitMinimum 不足最短时间时补足差额。Close 会提前结束等待，此时不算错误；
// ctx 取消时返回 ctx.Err()
func (s *Store) waitMinimum(ctx context.Context, start time.Time) error {
	remaining := s.minDuration - time.Since(start)
	if remaining <= 0 {
		return nil
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-s.lifetime.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// await 在后台执行 work，调用方的 ctx 取消时不再等待
func (s *Store) await(ctx context.Context, work func() error) error {
	done := make(chan error, 1)
	go func() { done <- work() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func userMessage(err error) string {
	var netErr *gateway.NetworkError
	if errors.As(err, &netErr) {
		return "连接错误: " + netErr.Message
	}
	return err.Error()
}

func copyPapers(papers []*models.Paper) []models.Paper {
	out := make([]models.Paper, 0, len(papers))
	for _, p := range papers {
		out = append(out, *p)
	}
	return out
}
