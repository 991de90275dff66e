package main

import (
	"os"

	"github.com/qntx/vclpkg/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
