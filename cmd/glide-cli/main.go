// Command glide-cli is a small interactive demonstration of the glide
// client: it loads a Config, opens a Client against a runtime listener, and
// exposes a representative command slice as cobra subcommands.
package main

import (
	"os"

	"github.com/valkey-io/valkey-glide-go/cmd/glide-cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.Exit("%s", err)
	}
	os.Exit(0)
}
