package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ppiankov/finvet/internal/cli"
	"github.com/ppiankov/finvet/internal/logging"
)

func main() {
	// Local development convenience; a missing .env is not an error
	_ = godotenv.Load()

	err := cli.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
