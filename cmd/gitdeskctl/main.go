// Command gitdeskctl manages the GitDesk repository registry and inspects
// repositories from a terminal, sharing the desktop app's data directory.
package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gitdeskctl: %v\n", err)
		os.Exit(1)
	}
}
