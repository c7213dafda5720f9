package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"ArxivBrowser/internal/notify"
	"ArxivBrowser/internal/platform/arxiv"
	"ArxivBrowser/pkg/logger"
)

type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"` // 数据库文件路径
}

// AppConfig 应用总配置
type AppConfig struct {
	Env      string              `mapstructure:"env" yaml:"env"`             // 运行环境: dev/prod
	LogLevel string              `mapstructure:"log_level" yaml:"log_level"` // DEBUG/INFO/WARN/ERROR
	LogFile  string              `mapstructure:"log_file" yaml:"log_file"`   // 留空输出到 stderr
	Database DatabaseConfig      `mapstructure:"database" yaml:"database"`
	Arxiv    arxiv.Config        `mapstructure:"arxiv" yaml:"arxiv"`
	Settings Settings            `mapstructure:"settings" yaml:"settings"`
	Feishu   notify.FeishuConfig `mapstructure:"feishu" yaml:"feishu"` // 自动刷新通知，可选
}

func (c *AppConfig) Validate() error {
	if err := c.Arxiv.Validate(); err != nil {
		return fmt.Errorf("arxiv 配置不合法: %w", err)
	}
	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("settings 配置不合法: %w", err)
	}
	return nil
}

// HomeDir 应用数据根目录 ~/.arxivbrowser
func HomeDir() string {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return ".arxivbrowser"
	}
	return filepath.Join(homedir, ".arxivbrowser")
}

func DefaultConfigPath() string {
	return filepath.Join(HomeDir(), "config", "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "prod")
	v.SetDefault("log_level", "INFO")
	v.SetDefault("log_file", "")
	v.SetDefault("database.path", filepath.Join(HomeDir(), "data", "arxivbrowser.db"))

	arx := arxiv.DefaultConfig()
	v.SetDefault("arxiv.use_api", arx.UseAPI)
	v.SetDefault("arxiv.proxy", arx.Proxy)
	v.SetDefault("arxiv.timeout", arx.Timeout)
	v.SetDefault("arxiv.rate_limit", arx.RateLimit)
	v.SetDefault("arxiv.api_base", arx.APIBase)
	v.SetDefault("arxiv.web_base", arx.WebBase)

	s := DefaultSettings()
	v.SetDefault("settings."+KeyMaxPapers, s.MaxPapersPerLoad)
	v.SetDefault("settings."+KeyRefreshInterval, s.RefreshIntervalMinutes)
	v.SetDefault("settings."+KeyAutoRefresh, s.AutoRefreshEnabled)
	v.SetDefault("settings."+KeyDefaultCategory, s.DefaultCategory)
	v.SetDefault("settings."+KeyShowNotifications, s.ShowAutoRefreshNotifications)
	v.SetDefault("settings."+KeySearchByRelevance, s.SearchSortByRelevance)

	v.SetDefault("feishu.app_id", "")
	v.SetDefault("feishu.app_secret", "")
	v.SetDefault("feishu.receive_id", "")
	v.SetDefault("feishu.receive_id_type", "chat_id")
}

// Load 读取配置。path 为空时按默认目录查找，找不到则在 ~/.arxivbrowser/config 下生成示例配置；
// path 指定但文件不存在时使用默认值，Save 时创建该文件
func Load(path string) (*Manager, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix("AXB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Dir(DefaultConfigPath()))
	}

	usedPath := path
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			usedPath = DefaultConfigPath()
			if err := CreateExampleConfig(usedPath); err != nil {
				return nil, fmt.Errorf("创建示例配置文件失败: %w", err)
			}
			v.SetConfigFile(usedPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
			logger.Info("配置文件 %s 不存在，使用默认配置", path)
		default:
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		usedPath = v.ConfigFileUsed()
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("配置解析失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return newManager(v, cfg, usedPath), nil
}

const exampleConfig = `# ArxivBrowser 配置文件

# 日志级别: DEBUG / INFO / WARN / ERROR
log_level: INFO

database:
  path: ""  # 留空使用 ~/.arxivbrowser/data/arxivbrowser.db

arxiv:
  use_api: true   # true 使用 export API，false 解析网页搜索结果
  proxy: ""       # 代理设置，如: "http://127.0.0.1:7890"
  timeout: 30
  rate_limit: 0.34  # 每秒请求数，arXiv 建议 3 秒一次

settings:
  max_papers: 10
  refresh_interval: 30      # 分钟
  auto_refresh: false
  default_category: latest  # latest/cs/math/physics/q-bio/q-fin/stat/eess/econ/favorites
  show_notifications: false
  search_by_relevance: true

# 飞书通知（可选），配置后自动刷新完成时发送消息
feishu:
  app_id: ""
  app_secret: ""
  receive_id: ""
  receive_id_type: chat_id
`

func CreateExampleConfig(configFile string) error {
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		logger.Warn("配置文件 %s 已存在，请前往编辑即可", configFile)
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("检查配置文件时出错: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	logger.Info("已在 %s 中创建配置文件", configFile)
	return nil
}
