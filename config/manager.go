package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"ArxivBrowser/pkg/logger"
)

type EventKind int

const (
	// EventChanged 某个设置被修改，Key/Value 为新值
	EventChanged EventKind = iota
	// EventReset 设置被恢复为默认值
	EventReset
)

type Event struct {
	Kind  EventKind
	Key   string
	Value any
}

// Manager 持有当前配置，负责修改、持久化和变更通知
type Manager struct {
	mu   sync.RWMutex
	v    *viper.Viper
	cfg  AppConfig
	path string

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

func newManager(v *viper.Viper, cfg *AppConfig, path string) *Manager {
	return &Manager{
		v:    v,
		cfg:  *cfg,
		path: path,
		subs: make(map[int]func(Event)),
	}
}

// NewManager 不读文件，直接用给定配置构造，path 为空时 Save 不落盘
func NewManager(cfg AppConfig, path string) *Manager {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	}
	return newManager(v, &cfg, path)
}

func (m *Manager) Config() AppConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.Settings
}

func (m *Manager) Path() string { return m.path }

// Subscribe 注册变更回调，返回的函数用于取消订阅，可重复调用
func (m *Manager) Subscribe(fn func(Event)) (cancel func()) {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
		})
	}
}

func (m *Manager) emit(events ...Event) {
	m.subMu.Lock()
	fns := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

// Set 修改一个设置并保存，值相同时不发事件
func (m *Manager) Set(key string, value any) error {
	m.mu.Lock()
	next := m.cfg.Settings
	normalized, err := next.apply(key, value)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if err := next.Validate(); err != nil {
		m.mu.Unlock()
		return err
	}
	changed := next != m.cfg.Settings
	m.cfg.Settings = next
	m.mu.Unlock()

	if !changed {
		return nil
	}
	if err := m.Save(); err != nil {
		logger.Warn("保存配置失败: %v", err)
	}

	logger.Info("设置已更新: %s = %v", key, normalized)
	m.emit(Event{Kind: EventChanged, Key: key, Value: normalized})
	return nil
}

// Reset 恢复默认设置并保存
func (m *Manager) Reset() error {
	m.mu.Lock()
	m.cfg.Settings = DefaultSettings()
	m.mu.Unlock()

	if err := m.Save(); err != nil {
		logger.Warn("保存配置失败: %v", err)
	}

	logger.Info("设置已恢复默认值")
	m.emit(Event{Kind: EventReset})
	return nil
}

// Save 把当前配置写回 yaml 文件
func (m *Manager) Save() error {
	if m.path == "" {
		return nil
	}

	m.mu.RLock()
	data, err := yaml.Marshal(m.cfg)
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	logger.Debug("配置已保存到 %s", m.path)
	return nil
}

// Watch 监听配置文件，外部修改设置时发出变更事件
func (m *Manager) Watch() error {
	if m.path == "" {
		return fmt.Errorf("没有可监听的配置文件")
	}
	if _, err := os.Stat(m.path); os.IsNotExist(err) {
		if err := m.Save(); err != nil {
			return err
		}
	}

	m.v.SetConfigFile(m.path)
	m.v.OnConfigChange(func(e fsnotify.Event) {
		logger.Debug("配置文件变化: %s (%s)", e.Name, e.Op)
		m.reload()
	})
	m.v.WatchConfig()
	logger.Info("开始监听配置文件: %s", m.path)
	return nil
}

func (m *Manager) reload() {
	var next AppConfig
	if err := m.v.Unmarshal(&next); err != nil {
		logger.Warn("重新解析配置失败: %v", err)
		return
	}
	if err := next.Settings.Validate(); err != nil {
		logger.Warn("配置文件中的设置不合法，忽略本次修改: %v", err)
		return
	}

	m.mu.Lock()
	events := diff(m.cfg.Settings, next.Settings)
	m.cfg.Settings = next.Settings
	m.mu.Unlock()

	if len(events) > 0 {
		m.emit(events...)
	}
}
