// Command compat-cli scores matrimony profiles stored in YAML or JSON files
// without a database.
package main

import (
	"fmt"
	"os"

	"github.com/7977Brahma/tailika-matrimony-platform/logging"
)

func main() {
	logging.Init(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: "console"})

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
