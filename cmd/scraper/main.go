package main

import (
	"fmt"
	"os"

	"github.com/qepting91/corpus-pipeline/internal/cli"
)

func main() {
	if err := cli.NewScraperCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "scraper:", err)
		os.Exit(1)
	}
}
