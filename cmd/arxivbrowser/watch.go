package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ArxivBrowser/pkg/logger"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "常驻运行，按配置自动刷新并监听配置文件的修改",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := manager.Watch(); err != nil {
			logger.Warn("无法监听配置文件: %v", err)
		}

		if err := a.Store().LoadWithSettings(ctx); err != nil && ctx.Err() == nil {
			logger.Error("首次加载失败: %v", err)
		}

		st := a.Store().Snapshot()
		logger.Info("当前分类 %s，自动刷新状态: %s", st.CurrentCategory, a.Refresh().State())

		<-ctx.Done()
		if ctx.Err() == context.Canceled {
			logger.Info("收到退出信号，正在关闭")
		}
		return nil
	},
}
