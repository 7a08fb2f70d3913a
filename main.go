package main

import (
	"os"

	"github.com/cropsevai/cropsevai-hub/cmd"
	"github.com/cropsevai/cropsevai-hub/internal/buildinfo"
)

// Set at build time with
// -ldflags "-X main.version=... -X main.buildDate=..."
var (
	version   string
	buildDate string
)

func main() {
	info := buildinfo.New(version, buildDate)
	if err := cmd.RootCommand(info).Execute(); err != nil {
		os.Exit(1)
	}
}
