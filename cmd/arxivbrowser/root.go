package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ArxivBrowser/config"
	"ArxivBrowser/internal/app"
	"ArxivBrowser/internal/models"
	"ArxivBrowser/pkg/logger"
)

var (
	// flags
	configFile string
	logLevel   string
	logFile    string

	manager *config.Manager
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "配置文件路径，默认 ~/.arxivbrowser/config/config.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "覆盖配置中的日志级别")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "日志写入文件而不是 stderr")
}

var rootCmd = &cobra.Command{
	Use:          "arxivbrowser",
	Short:        "按分类浏览、检索和收藏 arXiv 论文",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := config.Load(configFile)
		if err != nil {
			return err
		}
		manager = mgr

		cfg := mgr.Config()
		level := cfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		file := cfg.LogFile
		if logFile != "" {
			file = logFile
		}
		if file != "" {
			logger.InitWithFile(level, false, file)
		} else {
			logger.Init(level, true)
		}
		logger.Debug("配置文件: %s", mgr.Path())
		return nil
	},
}

// openApp 装配应用并恢复收藏，调用方负责 Close
func openApp(cmd *cobra.Command) (*app.App, error) {
	a, err := app.New(manager)
	if err != nil {
		return nil, err
	}
	if err := a.Start(cmd.Context()); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func printPapers(w io.Writer, papers []models.Paper) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "没有论文")
		return
	}
	for i, p := range papers {
		star := " "
		if p.IsFavorite {
			star = "★"
		}
		fmt.Fprintf(w, "%s %2d. [%s] %s\n", star, i+1, p.ID, oneLine(p.Title))
		if p.Authors != "" {
			fmt.Fprintf(w, "       %s\n", p.Authors)
		}
		meta := []string{}
		if !p.PublishedAt.IsZero() {
			meta = append(meta, p.PublishedAt.Format("2006-01-02"))
		}
		if p.Categories != "" {
			meta = append(meta, p.Categories)
		}
		if len(meta) > 0 {
			fmt.Fprintf(w, "       %s\n", strings.Join(meta, " | "))
		}
		if p.LinkURL != "" {
			fmt.Fprintf(w, "       %s\n", p.LinkURL)
		}
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
