// Command rendersettings shows, previews and live-reloads symbol render
// settings profiles.
package main

import (
	"os"

	"github.com/rook-computer/rendersettings/cmd"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	cmd.SetVersion(version)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
