// Package refresh 按配置的间隔自动重新加载当前分类
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ArxivBrowser/config"
	"ArxivBrowser/internal/models"
	"ArxivBrowser/internal/notify"
	"ArxivBrowser/pkg/logger"
)

var log = logger.WithPrefix("refresh")

// Loader 自动刷新依赖的 store 能力
type Loader interface {
	Load(ctx context.Context, category models.Category) error
	LoadWithSettings(ctx context.Context) error
	ChangeCategory(category models.Category) error
	CurrentCategory() models.Category
	IsLoading() bool
}

// SettingsProvider 设置的读取和订阅，由 config.Manager 实现
type SettingsProvider interface {
	Settings() config.Settings
	Subscribe(fn func(config.Event)) (cancel func())
}

type State int

const (
	StateDisabled State = iota
	StateArmed
	StateFiring
)

func (s State) String() string {
	switch s {
	case StateArmed:
		return "armed"
	case StateFiring:
		return "firing"
	default:
		return "disabled"
	}
}

type Option func(*Loop)

// WithUnit 设置 refresh_interval 的单位，默认为分钟
func WithUnit(unit time.Duration) Option {
	return func(l *Loop) { l.unit = unit }
}

// WithNotifier 刷新成功后的通知渠道
func WithNotifier(sink notify.Sink) Option {
	return func(l *Loop) { l.notifier = sink }
}

type Loop struct {
	store    Loader
	settings SettingsProvider
	notifier notify.Sink
	unit     time.Duration

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	state       State
	stopTicker  context.CancelFunc
	unsubscribe func()
	closed      bool
	wg          sync.WaitGroup
}

func New(store Loader, settings SettingsProvider, opts ...Option) *Loop {
	l := &Loop{
		store:    store,
		settings: settings,
		unit:     time.Minute,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start 订阅设置变更并按当前设置启动定时器
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return errors.New("refresh loop closed")
	}
	if l.ctx != nil {
		l.mu.Unlock()
		return errors.New("refresh loop already started")
	}
	l.ctx, l.cancel = context.WithCancel(ctx)
	l.mu.Unlock()

	unsubscribe := l.settings.Subscribe(l.handleEvent)
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		unsubscribe()
		return nil
	}
	l.unsubscribe = unsubscribe
	l.mu.Unlock()

	l.rearm()
	return nil
}

// Close 取消订阅、停止定时器并等待后台任务结束
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	unsubscribe := l.unsubscribe
	l.unsubscribe = nil
	l.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}

	l.mu.Lock()
	if l.stopTicker != nil {
		l.stopTicker()
		l.stopTicker = nil
	}
	if l.cancel != nil {
		l.cancel()
	}
	l.state = StateDisabled
	l.mu.Unlock()

	l.wg.Wait()
}

func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loop) handleEvent(ev config.Event) {
	switch ev.Kind {
	case config.EventReset:
		log.Info("设置已重置，重新初始化自动刷新")
		_ = l.store.ChangeCategory(models.CategoryLatest)
		l.rearm()

		l.mu.Lock()
		ctx := l.ctx
		if ctx == nil || ctx.Err() != nil {
			l.mu.Unlock()
			return
		}
		l.wg.Add(1)
		l.mu.Unlock()

		go func() {
			defer l.wg.Done()
			if err := l.store.LoadWithSettings(ctx); err != nil {
				log.Warn("重置后加载失败: %v", err)
			}
		}()

	case config.EventChanged:
		switch ev.Key {
		case config.KeyAutoRefresh, config.KeyRefreshInterval:
			l.rearm()
		case config.KeyDefaultCategory:
			category := l.settings.Settings().Category()
			if err := l.store.ChangeCategory(category); err != nil {
				log.Warn("切换默认分类失败: %v", err)
			}
		case config.KeyMaxPapers:
			log.Debug("每次加载数量已更新为 %v", ev.Value)
		}
	}
}

// rearm 停掉旧的定时器，开启时按最新间隔重新计时
func (l *Loop) rearm() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopTicker != nil {
		l.stopTicker()
		l.stopTicker = nil
	}
	if l.ctx == nil || l.ctx.Err() != nil {
		l.state = StateDisabled
		return
	}

	settings := l.settings.Settings()
	if !settings.AutoRefreshEnabled {
		l.state = StateDisabled
		log.Info("自动刷新已关闭")
		return
	}

	interval := l.interval(settings)
	tickCtx, stop := context.WithCancel(l.ctx)
	l.stopTicker = stop
	l.state = StateArmed

	l.wg.Add(1)
	go l.run(tickCtx, interval)
	log.Info("自动刷新已开启，每 %d 个单位 (%s) 刷新一次", int(interval/l.unit), interval)
}

func (l *Loop) interval(settings config.Settings) time.Duration {
	units := settings.RefreshInterval() / time.Minute
	return time.Duration(units) * l.unit
}

func (l *Loop) run(ctx context.Context, interval time.Duration) {
	defer l.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.fire(ctx)
		}
	}
}

// fire 执行一次刷新。cs 和 math 刷新自身，其余分类一律刷新 latest
func (l *Loop) fire(ctx context.Context) {
	if l.store.IsLoading() {
		log.Debug("正在加载，跳过本次自动刷新")
		return
	}

	l.setState(StateFiring)
	defer l.setState(StateArmed)

	target := refreshTarget(l.store.CurrentCategory())
	log.Info("执行自动刷新: %s", target)

	if err := l.store.Load(ctx, target); err != nil {
		log.Warn("自动刷新失败: %v", err)
		return
	}

	if !l.settings.Settings().ShowAutoRefreshNotifications || l.notifier == nil {
		return
	}
	body := fmt.Sprintf("%s 分类的论文已自动更新 (%s)", target.DisplayName(), time.Now().Format("2006-01-02 15:04"))
	if err := l.notifier.Notify(ctx, "ArxivBrowser", body); err != nil {
		log.Warn("发送刷新通知失败: %v", err)
	}
}

// setState 只在定时器仍然有效时修改状态，避免覆盖 Close 或关闭后的 disabled
func (l *Loop) setState(s State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateDisabled {
		return
	}
	l.state = s
}

func refreshTarget(current models.Category) models.Category {
	switch current {
	case models.CategoryComputerScience, models.CategoryMathematics:
		return current
	default:
		return models.CategoryLatest
	}
}
