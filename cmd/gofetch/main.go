package main

import (
	"os"

	"github.com/datallboy/gofetch/internal/cli"
)

func main() {
	// cobra has already printed the error (and usage for bad flags)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
