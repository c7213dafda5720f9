package platform

import (
	"context"
	"time"
)

// Field 检索词匹配的字段
type Field string

const (
	FieldAll   Field = "all"
	FieldTitle Field = "ti"
)

// SortBy 排序依据
type SortBy string

const (
	SortRelevance     SortBy = "relevance"
	SortLastUpdated   SortBy = "lastUpdatedDate"
	SortSubmittedDate SortBy = "submittedDate"
)

type SortOrder string

const (
	Descending SortOrder = "descending"
	Ascending  SortOrder = "ascending"
)

// Query 结构化查询：Subjects 之间为 OR，Term 与 Subjects 之间为 AND
// Subjects 使用 arXiv 分类符号，例如 "cs.*"、"cs.AI"、"gr-qc"
type Query struct {
	Subjects []string
	Term     string
	Field    Field
	SortBy   SortBy
	Order    SortOrder
	Limit    int
}

// Empty 没有任何过滤条件，即最宽松的查询
func (q Query) Empty() bool {
	return len(q.Subjects) == 0 && q.Term == ""
}

// Entry 搜索客户端返回的原始条目，只保留上层需要的字段
type Entry struct {
	ID          string
	Title       string
	Summary     string
	Authors     []string
	Categories  []string
	Published   time.Time
	Updated     *time.Time
	PDFURL      string
	AbstractURL string
}

type Result struct {
	Total   int
	Entries []*Entry
}

// Platform 论文检索客户端
type Platform interface {
	Name() string

	Search(ctx context.Context, q Query) (Result, error)

	GetConfig() Config
}

type Config interface {
	Validate() error
}
