package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping [message]",
	Short: "Check liveness of the connection",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPing,
}

func runPing(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client, err := connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = client.Close() }()

	var message string
	if len(args) == 1 {
		message = args[0]
	}

	reply, err := client.Ping(ctx, message)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	fmt.Println(reply)
	return nil
}
