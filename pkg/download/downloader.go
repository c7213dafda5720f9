// Package download 把论文 PDF 缓存到本地目录
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"ArxivBrowser/internal/models"
	"ArxivBrowser/pkg/logger"

	"golang.org/x/time/rate"
)

const pdfBase = "https://arxiv.org/pdf/"

// Downloader 下载的文件以 arXiv ID 命名，已存在时直接复用
type Downloader struct {
	client  *http.Client
	dir     string
	limiter *rate.Limiter
}

// New limiter 为 nil 时不限速
func New(client *http.Client, dir string, limiter *rate.Limiter) *Downloader {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Downloader{client: client, dir: dir, limiter: limiter}
}

func (d *Downloader) Dir() string { return d.dir }

// Path 旧式 ID 含有斜杠，如 math/0601001，落盘时替换为下划线
func (d *Downloader) Path(id string) string {
	return filepath.Join(d.dir, strings.ReplaceAll(id, "/", "_")+".pdf")
}

// Download 下载论文 PDF 并返回本地路径
func (d *Downloader) Download(ctx context.Context, p *models.Paper) (string, error) {
	if p == nil || p.ID == "" {
		return "", fmt.Errorf("paper id is empty")
	}

	target := d.Path(p.ID)
	if info, err := os.Stat(target); err == nil && info.Size() > 0 {
		logger.Debug("PDF 已存在: %s", target)
		return target, nil
	}

	url := p.PDFURL
	if url == "" {
		url = pdfBase + p.ID
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("下载 %s 失败: %w", p.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("下载 %s 失败: HTTP %d", p.ID, resp.StatusCode)
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("创建目录失败: %w", err)
	}

	// 先写临时文件，下载中断时不会留下不完整的 PDF
	tmp, err := os.CreateTemp(d.dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("创建文件失败: %w", err)
	}
	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("写入 PDF 失败: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("保存 PDF 失败: %w", err)
	}

	logger.Info("已下载 %s (%d KB) 到 %s", p.ID, n/1024, target)
	return target, nil
}

// Clear 删除目录下所有已下载的 PDF，返回删除的数量
func (d *Downloader) Clear() (int, error) {
	matches, err := filepath.Glob(filepath.Join(d.dir, "*.pdf"))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			logger.Warn("删除 %s 失败: %v", m, err)
			continue
		}
		removed++
	}
	return removed, nil
}
