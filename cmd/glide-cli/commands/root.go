// Package commands implements the glide-cli subcommands.
package commands

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/valkey-io/valkey-glide-go"
	"github.com/valkey-io/valkey-glide-go/pkg/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "glide-cli",
	Short: "glide-cli - a command-line client for the Valkey GLIDE engine",
	Long: `glide-cli opens a connection through the GLIDE client engine and runs
a representative slice of commands against it: get/set/del, ping, publish
and subscribe, stats, and update-password.

Use "glide-cli [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/glide/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(delCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(subscribeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(updatePasswordCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Execute adds all child commands to the root command and runs it. Called
// once from main.main().
func Execute() error {
	return rootCmd.Execute()
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}

// loadConfig reads the config file named by --config (or the default
// location), falling back to GetDefaultConfig when none exists.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" && !config.DefaultConfigExists() {
		return config.GetDefaultConfig(), nil
	}
	return config.Load(cfgFile)
}

// connect loads the config and opens a Client, bounding the whole
// operation to ten seconds.
func connect(ctx context.Context) (*glide.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return glide.Create(ctx, glide.Options{
		Client:    cfg.Client,
		Runtime:   cfg.Runtime,
		Telemetry: cfg.Telemetry,
	})
}
