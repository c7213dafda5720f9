package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearPDFs bool

func init() {
	downloadCmd.Flags().BoolVar(&clearPDFs, "clear", false, "删除所有已下载的 PDF")
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download [arxiv-id...]",
	Short: "下载论文 PDF 到 ~/.arxivbrowser/pdfs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearPDFs && len(args) == 0 {
			return fmt.Errorf("需要至少一个 arXiv ID")
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if clearPDFs {
			n, err := a.ClearPDFs()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已删除 %d 个 PDF\n", n)
		}

		for _, id := range args {
			path, err := a.DownloadPDF(cmd.Context(), id)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ %v\n", err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s -> %s\n", id, path)
		}
		return nil
	},
}
