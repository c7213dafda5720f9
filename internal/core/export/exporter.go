// Package export 把收藏列表导出为 csv 或 json
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ArxivBrowser/internal/core/export/csv"
	"ArxivBrowser/internal/core/export/json"
	"ArxivBrowser/internal/models"
)

// Exporter 导出器接口
type Exporter interface {
	Write(w io.Writer, papers []*models.Paper) error
}

// New 按格式名返回导出器，支持 csv 和 json
func New(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return csv.NewCSVExporter(), nil
	case "json", "":
		return json.NewJSONExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// FormatFromPath 根据扩展名推断格式，无法识别时为 json
func FormatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return "csv"
	}
	return "json"
}

// ToFile 导出到文件，目录不存在时自动创建
func ToFile(e Exporter, papers []*models.Paper, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建目录失败: %w", err)
		}
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	defer file.Close()

	return e.Write(file, papers)
}
