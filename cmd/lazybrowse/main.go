package main

import (
	"os"

	"github.com/rebeliceyang/lazybrowse/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
