package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valkey-io/valkey-glide-go/internal/cli/prompt"
)

var updatePasswordImmediate bool

var updatePasswordCmd = &cobra.Command{
	Use:   "update-password",
	Short: "Rotate the connection password interactively",
	RunE:  runUpdatePassword,
}

func init() {
	updatePasswordCmd.Flags().BoolVar(&updatePasswordImmediate, "immediate", false, "re-authenticate immediately instead of on the next command")
}

func runUpdatePassword(cmd *cobra.Command, args []string) error {
	password, err := prompt.NewPassword()
	if err != nil {
		if err == prompt.ErrAborted {
			return nil
		}
		return fmt.Errorf("update-password: %w", err)
	}

	ctx := context.Background()
	client, err := connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = client.Close() }()

	if err := client.UpdateConnectionPassword(ctx, password, updatePasswordImmediate); err != nil {
		return fmt.Errorf("update-password: %w", err)
	}

	fmt.Println("Password updated.")
	return nil
}
