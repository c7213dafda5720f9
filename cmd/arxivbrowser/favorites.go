package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ArxivBrowser/internal/models"
)

var exportFormat string

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "导出格式 csv|json，默认按扩展名推断")

	favoritesCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(favoriteCmd)
	rootCmd.AddCommand(favoritesCmd)
}

var favoriteCmd = &cobra.Command{
	Use:   "favorite <arxiv-id>",
	Short: "收藏或取消收藏一篇论文",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.Store().ToggleFavorite(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("%s: %w (先用 browse 或 search 加载它)", args[0], err)
		}
		if p.IsFavorite {
			fmt.Fprintf(cmd.OutOrStdout(), "★ 已收藏 [%s] %s\n", p.ID, oneLine(p.Title))
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "已取消收藏 [%s] %s\n", p.ID, oneLine(p.Title))
		}
		return nil
	},
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "列出收藏的论文，按收藏时间倒序",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Store().Load(cmd.Context(), models.CategoryFavorites); err != nil {
			return err
		}
		printPapers(cmd.OutOrStdout(), a.Store().Papers(models.CategoryFavorites))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <output>",
	Short: "导出收藏到 csv 或 json 文件",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.ExportFavorites(cmd.Context(), exportFormat, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "已导出 %d 篇收藏到 %s\n", n, args[0])
		return nil
	},
}
