// Command codescout is a semantic code search engine: it indexes a
// source tree with an embedding provider and answers nearest-neighbor
// queries from the command line or over MCP.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; explicit environment always wins.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
