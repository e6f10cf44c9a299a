package main

import (
	"os"

	"github.com/ytget/batchgrab/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
