package main

import (
	"os"

	"github.com/cleared-dev/books/internal/buildinfo"
	"github.com/cleared-dev/books/internal/commands"
)

func main() {
	if err := commands.NewRootCommand(buildinfo.String()).Execute(); err != nil {
		os.Exit(1)
	}
}
