package arxiv

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"ArxivBrowser/internal/core"
	"ArxivBrowser/internal/platform"
	"ArxivBrowser/pkg/logger"

	"golang.org/x/time/rate"
)

const userAgent = "ArxivBrowser/1.0 (+https://arxiv.org/help/api)"

type Adapter struct {
	config     *Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewAdapter(config *Config) (*Adapter, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}

	return &Adapter{
		config:     config,
		httpClient: core.NewHTTPClient(config.Timeout, config.Proxy),
		limiter:    rate.NewLimiter(limit, 1),
	}, nil
}

func (a *Adapter) Name() string { return "arxiv" }

func (a *Adapter) GetConfig() platform.Config { return a.config }

// Search 单次请求，不做重试；空结果的降级由上层决定
func (a *Adapter) Search(ctx context.Context, q platform.Query) (platform.Result, error) {
	if q.Limit <= 0 {
		return platform.Result{}, fmt.Errorf("limit must be positive, got %d", q.Limit)
	}
	if a.config.UseAPI {
		return a.searchViaAPI(ctx, q)
	}
	return a.searchViaWeb(ctx, q)
}

func (a *Adapter) searchViaAPI(ctx context.Context, q platform.Query) (platform.Result, error) {
	apiURL := a.buildAPIURL(q)
	logger.Debug("[arXiv] API 请求: %s", apiURL)

	content, err := a.request(ctx, apiURL)
	if err != nil {
		return platform.Result{}, fmt.Errorf("API request failed: %w", err)
	}

	entries, total, err := ParseAtomFeed(content)
	if err != nil {
		return platform.Result{}, fmt.Errorf("failed to parse API response: %w", err)
	}

	if len(entries) > q.Limit {
		entries = entries[:q.Limit]
	}
	logger.Debug("[arXiv] API 返回 %d/%d 篇", len(entries), total)
	return platform.Result{Total: total, Entries: entries}, nil
}

func (a *Adapter) searchViaWeb(ctx context.Context, q platform.Query) (platform.Result, error) {
	webURL := a.buildWebURL(q)
	logger.Debug("[arXiv] Web 请求: %s", webURL)

	content, err := a.request(ctx, webURL)
	if err != nil {
		return platform.Result{}, fmt.Errorf("web request failed: %w", err)
	}

	entries, total, err := ParseSearchHTML(content)
	if err != nil {
		return platform.Result{}, fmt.Errorf("failed to parse web response: %w", err)
	}

	if len(entries) > q.Limit {
		logger.Debug("[arXiv] 截断结果从 %d 到 %d 篇", len(entries), q.Limit)
		entries = entries[:q.Limit]
	}
	logger.Debug("[arXiv] Web 返回 %d/%d 篇", len(entries), total)
	return platform.Result{Total: total, Entries: entries}, nil
}

func (a *Adapter) request(ctx context.Context, url string) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}
