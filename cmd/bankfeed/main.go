package main

import (
	"os"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
