package notify

import (
	"context"

	"ArxivBrowser/pkg/logger"
)

// Sink 用户通知的投递目标，投递失败由调用方记录日志
type Sink interface {
	Notify(ctx context.Context, title, body string) error
}

// LogSink 把通知写进日志，没有配置其它通道时使用
type LogSink struct {
	log *logger.Logger
}

func NewLogSink() *LogSink {
	return &LogSink{log: logger.WithPrefix("notify")}
}

func (s *LogSink) Notify(ctx context.Context, title, body string) error {
	s.log.Info("%s: %s", title, body)
	return nil
}

// SinkFunc 把函数适配为 Sink
type SinkFunc func(ctx context.Context, title, body string) error

func (f SinkFunc) Notify(ctx context.Context, title, body string) error {
	return f(ctx, title, body)
}
