package arxiv

import (
	"fmt"
)

type Config struct {
	UseAPI    bool    `mapstructure:"use_api" yaml:"use_api"`       // 使用官方 API（true）或网页搜索（false）
	Proxy     string  `mapstructure:"proxy" yaml:"proxy"`           // 代理地址，如 "http://127.0.0.1:7890"
	Timeout   int     `mapstructure:"timeout" yaml:"timeout"`       // 超时时间（秒）
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // 每秒请求数，arXiv 建议 3 秒一次

	APIBase string `mapstructure:"api_base" yaml:"api_base"`
	WebBase string `mapstructure:"web_base" yaml:"web_base"`
}

func DefaultConfig() *Config {
	return &Config{
		UseAPI:    true,
		Timeout:   30,
		RateLimit: 1.0 / 3,
		APIBase:   "https://export.arxiv.org/api/query",
		WebBase:   "https://arxiv.org/search/advanced",
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.Timeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative, got %v", c.RateLimit)
	}
	if c.UseAPI && c.APIBase == "" {
		return fmt.Errorf("api_base cannot be empty")
	}
	if !c.UseAPI && c.WebBase == "" {
		return fmt.Errorf("web_base cannot be empty")
	}
	return nil
}
