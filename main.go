// ABOUTME: Entry point for the Crossing Radio player
// ABOUTME: Hands the command line to the cobra commands
package main

import (
	"fmt"
	"os"

	"github.com/harperreed/crossing-radio/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
