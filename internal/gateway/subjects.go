package gateway

import (
	"strings"

	"ArxivBrowser/internal/models"
)

var physicsSubjects = []string{
	"physics.*", "astro-ph.*", "cond-mat.*", "gr-qc", "hep-ex", "hep-lat",
	"hep-ph", "hep-th", "math-ph", "nlin.*", "nucl-ex", "nucl-th", "quant-ph",
}

var categorySubjects = map[models.Category][]string{
	models.CategoryComputerScience:       {"cs.*"},
	models.CategoryMathematics:           {"math.*"},
	models.CategoryPhysics:               physicsSubjects,
	models.CategoryQuantitativeBiology:   {"q-bio.*"},
	models.CategoryQuantitativeFinance:   {"q-fin.*"},
	models.CategoryStatistics:            {"stat.*"},
	models.CategoryElectricalEngineering: {"eess.*"},
	models.CategoryEconomics:             {"econ.*"},
}

// latest 的第一档：计算机、统计、数学
var latestSubjects = []string{"cs.*", "stat.*", "math.*"}

// Subjects 返回分类对应的 arXiv 分类符号
func Subjects(c models.Category) []string {
	if c == models.CategoryLatest {
		return append([]string(nil), latestSubjects...)
	}
	return append([]string(nil), categorySubjects[c]...)
}

// allSubjects latest 的第二档：所有固定分类的并集
func allSubjects() []string {
	var out []string
	for _, c := range models.FixedCategories() {
		if c == models.CategoryLatest {
			continue
		}
		out = append(out, categorySubjects[c]...)
	}
	return out
}

// filterSubjects 解析搜索的分类过滤：分类代码/别名展开为对应符号，其余按原始符号（如 cs.AI）使用
func filterSubjects(filter string) []string {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil
	}
	if c, err := models.ParseCategory(filter); err == nil && c.Fixed() {
		return Subjects(c)
	}
	return []string{filter}
}
