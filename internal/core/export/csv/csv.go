package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"ArxivBrowser/internal/models"
)

type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Write 写入带 BOM 的 csv，方便 Excel 直接打开
func (e *CSVExporter) Write(w io.Writer, papers []*models.Paper) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("写入 BOM 失败: %w", err)
	}

	writer := csv.NewWriter(w)

	headers := []string{
		"arXiv ID", "标题", "作者", "摘要", "分类",
		"PDF", "链接", "发布日期", "更新日期", "收藏时间",
	}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("写入表头失败: %w", err)
	}

	for _, p := range papers {
		record := []string{
			p.ID,
			p.Title,
			p.Authors,
			truncate(p.Summary, 500),
			p.Categories,
			p.PDFURL,
			p.LinkURL,
			formatDate(p.PublishedAt),
			formatDatePtr(p.UpdatedAt),
			formatStamp(p.FavoritedAt),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("写入数据失败: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func formatStamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}
