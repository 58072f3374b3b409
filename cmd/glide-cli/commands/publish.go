package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish <channel> <message>",
	Short: "Publish a message on a channel",
	Args:  cobra.ExactArgs(2),
	RunE:  runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client, err := connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = client.Close() }()

	receivers, err := client.Publish(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	fmt.Printf("(integer) %d\n", receivers)
	return nil
}
