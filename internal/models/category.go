package models

import (
	"fmt"
	"strings"
)

// Category 论文分类，取值沿用 arXiv 的 archive 代码
type Category string

const (
	CategoryLatest                Category = "latest"
	CategoryComputerScience       Category = "cs"
	CategoryMathematics           Category = "math"
	CategoryPhysics               Category = "physics"
	CategoryQuantitativeBiology   Category = "q-bio"
	CategoryQuantitativeFinance   Category = "q-fin"
	CategoryStatistics            Category = "stat"
	CategoryElectricalEngineering Category = "eess"
	CategoryEconomics             Category = "econ"
	CategorySearch                Category = "search"
	CategoryFavorites             Category = "favorites"
)

var fixedCategories = []Category{
	CategoryLatest,
	CategoryComputerScience,
	CategoryMathematics,
	CategoryPhysics,
	CategoryQuantitativeBiology,
	CategoryQuantitativeFinance,
	CategoryStatistics,
	CategoryElectricalEngineering,
	CategoryEconomics,
}

var aliases = map[string]Category{
	"computerscience":       CategoryComputerScience,
	"mathematics":           CategoryMathematics,
	"quantitativebiology":   CategoryQuantitativeBiology,
	"quantitativefinance":   CategoryQuantitativeFinance,
	"statistics":            CategoryStatistics,
	"electricalengineering": CategoryElectricalEngineering,
	"economics":             CategoryEconomics,
}

var displayNames = map[Category]string{
	CategoryLatest:                "Latest",
	CategoryComputerScience:       "Computer Science",
	CategoryMathematics:           "Mathematics",
	CategoryPhysics:               "Physics",
	CategoryQuantitativeBiology:   "Quantitative Biology",
	CategoryQuantitativeFinance:   "Quantitative Finance",
	CategoryStatistics:            "Statistics",
	CategoryElectricalEngineering: "Electrical Engineering and Systems Science",
	CategoryEconomics:             "Economics",
	CategorySearch:                "Search",
	CategoryFavorites:             "Favorites",
}

// FixedCategories 返回九个可抓取的分类，顺序即聚合时的扫描顺序
func FixedCategories() []Category {
	out := make([]Category, len(fixedCategories))
	copy(out, fixedCategories)
	return out
}

// ParseCategory 解析分类代码或别名（如 "cs"、"computerScience"）
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	c := Category(key)
	if c.Valid() {
		return c, nil
	}
	if alias, ok := aliases[key]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("unknown category: %q", s)
}

// Valid 是否为已知分类
func (c Category) Valid() bool {
	if c == CategorySearch || c == CategoryFavorites {
		return true
	}
	return c.Fixed()
}

// Fixed 是否为需要联网抓取的固定分类
func (c Category) Fixed() bool {
	for _, f := range fixedCategories {
		if c == f {
			return true
		}
	}
	return false
}

func (c Category) DisplayName() string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	return string(c)
}

func (c Category) String() string { return string(c) }
