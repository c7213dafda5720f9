package arxiv

import (
	"fmt"
	"net/url"
	"strings"

	"ArxivBrowser/internal/platform"
)

// 最宽松的查询，API 不接受空的 search_query
const matchAll = "all:*"

// 网页搜索只接受这几档分页大小
var webPageSizes = []int{25, 50, 100, 200}

// buildAPIQuery 构建 API 的 search_query，分类之间 OR，与检索词 AND
func buildAPIQuery(q platform.Query) string {
	var subjects []string
	for _, s := range q.Subjects {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		subjects = append(subjects, "cat:"+s)
	}

	var parts []string
	if term := strings.TrimSpace(q.Term); term != "" {
		field := q.Field
		if field == "" {
			field = platform.FieldAll
		}
		if strings.Contains(term, " ") {
			term = fmt.Sprintf(`"%s"`, term)
		}
		parts = append(parts, fmt.Sprintf("%s:%s", field, term))
	}

	switch len(subjects) {
	case 0:
	case 1:
		parts = append(parts, subjects[0])
	default:
		group := strings.Join(subjects, " OR ")
		if len(parts) > 0 {
			group = "(" + group + ")"
		}
		parts = append(parts, group)
	}

	if len(parts) == 0 {
		return matchAll
	}
	return strings.Join(parts, " AND ")
}

func (a *Adapter) buildAPIURL(q platform.Query) string {
	params := url.Values{}
	params.Add("search_query", buildAPIQuery(q))
	params.Add("start", "0")
	params.Add("max_results", fmt.Sprintf("%d", q.Limit))

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = platform.SortLastUpdated
	}
	order := q.Order
	if order == "" {
		order = platform.Descending
	}
	params.Add("sortBy", string(sortBy))
	params.Add("sortOrder", string(order))

	return a.config.APIBase + "?" + params.Encode()
}

// buildWebURL 构建 advanced search 的 URL
// 检索词只在标题或全部字段中匹配；分类块与检索词 AND，内部 OR
func (a *Adapter) buildWebURL(q platform.Query) string {
	params := url.Values{}
	params.Add("advanced", "1")

	termIndex := 0
	if term := strings.TrimSpace(q.Term); term != "" {
		if strings.Contains(term, " ") && !(strings.HasPrefix(term, `"`) && strings.HasSuffix(term, `"`)) {
			term = fmt.Sprintf(`"%s"`, term)
		}
		field := "all"
		if q.Field == platform.FieldTitle {
			field = "title"
		}
		params.Add(fmt.Sprintf("terms-%d-term", termIndex), term)
		params.Add(fmt.Sprintf("terms-%d-field", termIndex), field)
		termIndex++
	}

	for i, s := range q.Subjects {
		s = strings.TrimSuffix(strings.TrimSpace(s), ".*")
		if s == "" {
			continue
		}
		operator := "AND"
		if i > 0 {
			operator = "OR"
		}
		if termIndex > 0 {
			params.Add(fmt.Sprintf("terms-%d-operator", termIndex), operator)
		}
		params.Add(fmt.Sprintf("terms-%d-term", termIndex), s)
		params.Add(fmt.Sprintf("terms-%d-field", termIndex), "cross_list_category")
		termIndex++
	}

	params.Add("classification-include_cross_list", "include")
	params.Add("date-filter_by", "all_dates")
	params.Add("abstracts", "show")
	params.Add("size", fmt.Sprintf("%d", webPageSize(q.Limit)))

	switch q.SortBy {
	case platform.SortRelevance:
		params.Add("order", "")
	case platform.SortSubmittedDate, platform.SortLastUpdated, "":
		if q.Order == platform.Ascending {
			params.Add("order", "submitted_date")
		} else {
			params.Add("order", "-submitted_date")
		}
	}

	return a.config.WebBase + "?" + params.Encode()
}

func webPageSize(limit int) int {
	for _, size := range webPageSizes {
		if limit <= size {
			return size
		}
	}
	return webPageSizes[len(webPageSizes)-1]
}
