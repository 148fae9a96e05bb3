package main

import (
	"os"

	"github.com/insightd-dev/insightd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
