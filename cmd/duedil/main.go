package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/jomohunter/DueDil/internal/cli"
)

// Build variables set by ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Optional .env for DUEDIL_ variables; absence is fine.
	_ = godotenv.Load()

	cmd := cli.NewRootCommand(version, commit, date)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
