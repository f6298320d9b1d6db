package main

import (
	"fmt"
	"os"

	"github.com/qepting91/corpus-pipeline/internal/cli"
)

func main() {
	if err := cli.NewIngesterCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ingester:", err)
		os.Exit(1)
	}
}
