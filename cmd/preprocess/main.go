package main

import (
	"fmt"
	"os"

	"github.com/qepting91/corpus-pipeline/internal/cli"
)

func main() {
	if err := cli.NewPreprocessCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "preprocess:", err)
		os.Exit(1)
	}
}
