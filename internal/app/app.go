// Package app 把配置、存储、检索客户端、store 和自动刷新装配在一起
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"ArxivBrowser/config"
	storage "ArxivBrowser/db"
	dbsqlite "ArxivBrowser/db/sqlite"
	"ArxivBrowser/internal/core"
	exporter "ArxivBrowser/internal/core/export"
	"ArxivBrowser/internal/gateway"
	"ArxivBrowser/internal/models"
	"ArxivBrowser/internal/notify"
	"ArxivBrowser/internal/platform"
	"ArxivBrowser/internal/refresh"
	"ArxivBrowser/internal/store"
	"ArxivBrowser/pkg/download"
	"ArxivBrowser/pkg/logger"

	"golang.org/x/time/rate"
)

type App struct {
	cfg      *config.Manager
	db       storage.PaperStorage
	client   platform.Platform
	store    *store.Store
	refresh  *refresh.Loop
	notifier notify.Sink
	pdfs     *download.Downloader

	storeOpts   []store.Option
	refreshOpts []refresh.Option
}

type Option func(*App)

// WithPlatform 替换检索客户端，默认使用注册表中的 arxiv
func WithPlatform(p platform.Platform) Option {
	return func(a *App) { a.client = p }
}

// WithDownloader 替换 PDF 下载器，默认保存到 ~/.arxivbrowser/pdfs
func WithDownloader(d *download.Downloader) Option {
	return func(a *App) { a.pdfs = d }
}

// WithStorage 替换持久化存储，默认打开配置中的 sqlite 文件
func WithStorage(db storage.PaperStorage) Option {
	return func(a *App) { a.db = db }
}

func WithNotifier(sink notify.Sink) Option {
	return func(a *App) { a.notifier = sink }
}

func WithStoreOptions(opts ...store.Option) Option {
	return func(a *App) { a.storeOpts = append(a.storeOpts, opts...) }
}

func WithRefreshOptions(opts ...refresh.Option) Option {
	return func(a *App) { a.refreshOpts = append(a.refreshOpts, opts...) }
}

func New(cfg *config.Manager, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	conf := cfg.Config()

	if a.client == nil {
		arxivCfg := conf.Arxiv
		client, err := core.NewPlatform("arxiv", &arxivCfg)
		if err != nil {
			return nil, fmt.Errorf("创建检索客户端失败: %w", err)
		}
		a.client = client
	}

	if a.db == nil {
		path := conf.Database.Path
		if path == "" {
			path = filepath.Join(config.HomeDir(), "data", "arxivbrowser.db")
		}
		db, err := dbsqlite.NewSQLiteDB(path)
		if err != nil {
			// 存储不可用时只在内存中工作，收藏不会保留到下次启动
			logger.Warn("打开数据库失败，收藏将不会持久化: %v", err)
		} else {
			a.db = db
			logger.Info("数据库已打开: %s", path)
		}
	}

	if a.notifier == nil {
		a.notifier = newNotifier(conf.Feishu)
	}

	if a.pdfs == nil {
		limit := rate.Inf
		if conf.Arxiv.RateLimit > 0 {
			limit = rate.Limit(conf.Arxiv.RateLimit)
		}
		a.pdfs = download.New(
			core.NewHTTPClient(conf.Arxiv.Timeout, conf.Arxiv.Proxy),
			filepath.Join(config.HomeDir(), "pdfs"),
			rate.NewLimiter(limit, 1),
		)
	}

	storeOpts := a.storeOpts
	if a.db != nil {
		storeOpts = append([]store.Option{store.WithStorage(a.db)}, storeOpts...)
	}
	a.store = store.New(gateway.New(a.client), cfg, storeOpts...)

	refreshOpts := append([]refresh.Option{refresh.WithNotifier(a.notifier)}, a.refreshOpts...)
	a.refresh = refresh.New(a.store, cfg, refreshOpts...)

	return a, nil
}

func newNotifier(cfg notify.FeishuConfig) notify.Sink {
	if !cfg.Enabled() {
		return notify.NewLogSink()
	}
	sink, err := notify.NewFeishuSink(cfg)
	if err != nil {
		logger.Warn("飞书通知初始化失败，改为写日志: %v", err)
		return notify.NewLogSink()
	}
	logger.Info("已启用飞书通知")
	return sink
}

// Start 恢复本地收藏并启动自动刷新
func (a *App) Start(ctx context.Context) error {
	if err := a.store.RestoreFavorites(); err != nil {
		logger.Warn("恢复收藏失败: %v", err)
	}
	return a.refresh.Start(ctx)
}

func (a *App) Close() error {
	a.refresh.Close()
	a.store.Close()
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) Store() *store.Store { return a.store }

func (a *App) Config() *config.Manager { return a.cfg }

func (a *App) Refresh() *refresh.Loop { return a.refresh }

// StoredPapers 本地库中的论文数量，没有存储时为 0
func (a *App) StoredPapers() (int, error) {
	if a.db == nil {
		return 0, nil
	}
	return a.db.CountPapers()
}

// ExportFavorites 导出收藏列表，format 为空时按文件扩展名推断
func (a *App) ExportFavorites(ctx context.Context, format, outputPath string) (int, error) {
	if outputPath == "" {
		return 0, fmt.Errorf("output path is required")
	}
	if err := a.store.Load(ctx, models.CategoryFavorites); err != nil {
		return 0, err
	}

	if format == "" {
		format = exporter.FormatFromPath(outputPath)
	}
	exp, err := exporter.New(format)
	if err != nil {
		return 0, err
	}

	favorites := a.store.Papers(models.CategoryFavorites)
	papers := make([]*models.Paper, 0, len(favorites))
	for i := range favorites {
		papers = append(papers, &favorites[i])
	}

	logger.Info("导出 %d 篇收藏到 %s (%s)", len(papers), outputPath, format)
	if err := exporter.ToFile(exp, papers, outputPath); err != nil {
		return 0, fmt.Errorf("导出失败: %w", err)
	}
	return len(papers), nil
}

// DownloadPDF 下载论文 PDF，论文需要已加载过或在本地库中
func (a *App) DownloadPDF(ctx context.Context, id string) (string, error) {
	p, err := a.store.Paper(id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", id, err)
	}
	return a.pdfs.Download(ctx, &p)
}

// ClearPDFs 清空已下载的 PDF
func (a *App) ClearPDFs() (int, error) {
	return a.pdfs.Clear()
}
