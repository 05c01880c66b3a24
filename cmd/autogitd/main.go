package main

import (
	"os"

	"github.com/autogitd/autogitd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
