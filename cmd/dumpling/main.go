package main

import (
	"os"

	"github.com/csheth/dumpling/internal/commands"
)

func main() {
	if err := commands.New().Execute(); err != nil {
		os.Exit(1)
	}
}
