package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valkey-io/valkey-glide-go/internal/cli/prompt"
)

var delForce bool

var delCmd = &cobra.Command{
	Use:   "del <key> [key...]",
	Short: "Delete one or more keys",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDel,
}

func init() {
	delCmd.Flags().BoolVarP(&delForce, "force", "f", false, "skip the confirmation prompt")
}

func runDel(cmd *cobra.Command, args []string) error {
	label := fmt.Sprintf("Delete %d key(s)", len(args))
	confirmed, err := prompt.ConfirmWithForce(label, delForce)
	if err != nil {
		if err == prompt.ErrAborted {
			return nil
		}
		return err
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	ctx := context.Background()
	client, err := connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = client.Close() }()

	removed, err := client.Del(ctx, args...)
	if err != nil {
		return fmt.Errorf("del: %w", err)
	}

	fmt.Printf("(integer) %d\n", removed)
	return nil
}
