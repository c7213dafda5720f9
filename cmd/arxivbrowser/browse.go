package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ArxivBrowser/internal/models"
)

var searchCategory string

func init() {
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "限定分类，可以是分类代码(cs)或 arXiv 分类(cs.AI)")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(categoriesCmd)
}

var browseCmd = &cobra.Command{
	Use:   "browse [category]",
	Short: "加载一个分类的最新论文，默认使用配置中的分类",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		st := a.Store()
		category := manager.Settings().Category()
		if len(args) == 1 {
			if category, err = models.ParseCategory(args[0]); err != nil {
				return err
			}
		}

		if err := st.Load(cmd.Context(), category); err != nil {
			if msg := st.Snapshot().ErrorMessage; msg != "" {
				return fmt.Errorf("%s", msg)
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "== %s ==\n", category.DisplayName())
		printPapers(cmd.OutOrStdout(), st.Papers(category))
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "按标题检索论文",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		st := a.Store()
		query := strings.Join(args, " ")
		if err := st.Search(cmd.Context(), query, searchCategory); err != nil {
			if msg := st.Snapshot().ErrorMessage; msg != "" {
				return fmt.Errorf("%s", msg)
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "== 搜索: %s ==\n", query)
		printPapers(cmd.OutOrStdout(), st.Papers(models.CategorySearch))
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "列出可浏览的分类",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, c := range models.FixedCategories() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", c, c.DisplayName())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", models.CategoryFavorites, models.CategoryFavorites.DisplayName())
	},
}
