package main

import (
	"os"

	_ "ArxivBrowser/internal/platform/arxiv"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
