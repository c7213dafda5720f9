package core

import (
	"fmt"
	"sort"
	"sync"

	"ArxivBrowser/internal/platform"
)

// Provider 检索客户端的注册项
// Name 唯一标识，例如 "arxiv"；New 根据配置构造实例；DefaultConfig 返回可用的默认配置
type Provider struct {
	Name string

	New func(cfg platform.Config) (platform.Platform, error)

	DefaultConfig func() platform.Config
}

var (
	regMu    sync.RWMutex
	registry = map[string]Provider{}
)

func Register(p Provider) error {
	if p.Name == "" {
		return fmt.Errorf("provider 的名字不能为空")
	}
	if p.New == nil || p.DefaultConfig == nil {
		return fmt.Errorf("provider %s 的配置不正确", p.Name)
	}

	regMu.Lock()
	defer regMu.Unlock()
	if _, exists := registry[p.Name]; exists {
		return fmt.Errorf("provider %s 已经注册过了", p.Name)
	}
	registry[p.Name] = p
	return nil
}

func MustRegister(p Provider) {
	if err := Register(p); err != nil {
		panic(err)
	}
}

func Get(name string) (Provider, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	p, ok := registry[name]
	return p, ok
}

// NewPlatform 按名字构造检索客户端，cfg 为 nil 时使用默认配置
func NewPlatform(name string, cfg platform.Config) (platform.Platform, error) {
	prov, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("未知或未实现的平台: %s", name)
	}
	if cfg == nil {
		cfg = prov.DefaultConfig()
	}
	return prov.New(cfg)
}

func List() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
