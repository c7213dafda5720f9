package config

import (
	"fmt"
	"time"

	"ArxivBrowser/internal/models"

	"github.com/spf13/cast"
)

// 用户设置的键名，同时也是变更事件里的 Key
const (
	KeyMaxPapers         = "max_papers"
	KeyRefreshInterval   = "refresh_interval"
	KeyAutoRefresh       = "auto_refresh"
	KeyDefaultCategory   = "default_category"
	KeyShowNotifications = "show_notifications"
	KeySearchByRelevance = "search_by_relevance"
)

const (
	defaultMaxPapers       = 10
	defaultRefreshInterval = 30
)

// Settings 运行时可修改的用户设置
type Settings struct {
	MaxPapersPerLoad             int    `mapstructure:"max_papers" yaml:"max_papers"`
	RefreshIntervalMinutes       int    `mapstructure:"refresh_interval" yaml:"refresh_interval"`
	AutoRefreshEnabled           bool   `mapstructure:"auto_refresh" yaml:"auto_refresh"`
	DefaultCategory              string `mapstructure:"default_category" yaml:"default_category"`
	ShowAutoRefreshNotifications bool   `mapstructure:"show_notifications" yaml:"show_notifications"`
	SearchSortByRelevance        bool   `mapstructure:"search_by_relevance" yaml:"search_by_relevance"`
}

func DefaultSettings() Settings {
	return Settings{
		MaxPapersPerLoad:       defaultMaxPapers,
		RefreshIntervalMinutes: defaultRefreshInterval,
		AutoRefreshEnabled:     false,
		DefaultCategory:        string(models.CategoryLatest),
		SearchSortByRelevance:  true,
	}
}

// Limit 每次抓取的数量，未设置时为 10
func (s Settings) Limit() int {
	if s.MaxPapersPerLoad <= 0 {
		return defaultMaxPapers
	}
	return s.MaxPapersPerLoad
}

// RefreshInterval 自动刷新间隔，未设置时为 30 分钟
func (s Settings) RefreshInterval() time.Duration {
	minutes := s.RefreshIntervalMinutes
	if minutes <= 0 {
		minutes = defaultRefreshInterval
	}
	return time.Duration(minutes) * time.Minute
}

// Category 默认分类，无法识别时退回 latest
func (s Settings) Category() models.Category {
	c, err := models.ParseCategory(s.DefaultCategory)
	if err != nil || c == models.CategorySearch {
		return models.CategoryLatest
	}
	return c
}

func (s Settings) Validate() error {
	if s.MaxPapersPerLoad < 0 {
		return fmt.Errorf("max_papers cannot be negative, got %d", s.MaxPapersPerLoad)
	}
	if s.RefreshIntervalMinutes < 0 {
		return fmt.Errorf("refresh_interval cannot be negative, got %d", s.RefreshIntervalMinutes)
	}
	if s.DefaultCategory != "" {
		c, err := models.ParseCategory(s.DefaultCategory)
		if err != nil {
			return err
		}
		if c == models.CategorySearch {
			return fmt.Errorf("default_category cannot be %q", c)
		}
	}
	return nil
}

// apply 按键名写入一个值，值会被转换成字段类型，返回转换后的值
func (s *Settings) apply(key string, value any) (any, error) {
	switch key {
	case KeyMaxPapers:
		n, err := cast.ToIntE(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		s.MaxPapersPerLoad = n
		return n, nil
	case KeyRefreshInterval:
		n, err := cast.ToIntE(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		s.RefreshIntervalMinutes = n
		return n, nil
	case KeyAutoRefresh:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		s.AutoRefreshEnabled = b
		return b, nil
	case KeyDefaultCategory:
		str, err := cast.ToStringE(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		c, err := models.ParseCategory(str)
		if err != nil {
			return nil, err
		}
		s.DefaultCategory = string(c)
		return string(c), nil
	case KeyShowNotifications:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		s.ShowAutoRefreshNotifications = b
		return b, nil
	case KeySearchByRelevance:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		s.SearchSortByRelevance = b
		return b, nil
	default:
		return nil, fmt.Errorf("unknown setting: %q", key)
	}
}

// diff 返回两份设置之间发生变化的键和新值
func diff(old, next Settings) []Event {
	var events []Event
	add := func(changed bool, key string, value any) {
		if changed {
			events = append(events, Event{Kind: EventChanged, Key: key, Value: value})
		}
	}
	add(old.MaxPapersPerLoad != next.MaxPapersPerLoad, KeyMaxPapers, next.MaxPapersPerLoad)
	add(old.RefreshIntervalMinutes != next.RefreshIntervalMinutes, KeyRefreshInterval, next.RefreshIntervalMinutes)
	add(old.AutoRefreshEnabled != next.AutoRefreshEnabled, KeyAutoRefresh, next.AutoRefreshEnabled)
	add(old.DefaultCategory != next.DefaultCategory, KeyDefaultCategory, next.DefaultCategory)
	add(old.ShowAutoRefreshNotifications != next.ShowAutoRefreshNotifications, KeyShowNotifications, next.ShowAutoRefreshNotifications)
	add(old.SearchSortByRelevance != next.SearchSortByRelevance, KeySearchByRelevance, next.SearchSortByRelevance)
	return events
}
