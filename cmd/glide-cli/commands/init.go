package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/valkey-io/valkey-glide-go/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample configuration file",
	Long: `Write a sample glide-cli configuration file.

By default the file is created at $XDG_CONFIG_HOME/glide/config.yaml. Use
--config to choose a different path.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	cfg := config.GetDefaultConfig()
	if err := config.SaveConfig(cfg, path); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", path)
	fmt.Println("Edit it to point Client.Addresses at your Valkey/Redis deployment, then run:")
	fmt.Printf("  glide-cli ping --config %s\n", path)
	return nil
}
