// cmd/grounded/main.go
package main

import (
	"os"

	cmd "github.com/mwiater/grounded/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	setVersionInfo = cmd.SetVersionInfo
	executeCmd     = cmd.Execute
	exit           = os.Exit
)

// main injects build information and exits with the command's status code.
func main() {
	setVersionInfo(version, commit, date)
	exit(executeCmd())
}
