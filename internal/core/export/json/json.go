package json

import (
	"encoding/json"
	"fmt"
	"io"

	"ArxivBrowser/internal/models"
)

type JSONExporter struct{}

func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

type document struct {
	Total  int             `json:"total"`
	Papers []*models.Paper `json:"papers"`
}

func (e *JSONExporter) Write(w io.Writer, papers []*models.Paper) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false) // 标题和摘要里常有 < > &

	if papers == nil {
		papers = []*models.Paper{}
	}
	if err := encoder.Encode(document{Total: len(papers), Papers: papers}); err != nil {
		return fmt.Errorf("写入 JSON 失败: %w", err)
	}
	return nil
}
