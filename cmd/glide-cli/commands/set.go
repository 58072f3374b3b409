package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var setExpireSeconds int64

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set the string value of a key",
	Args:  cobra.ExactArgs(2),
	RunE:  runSet,
}

func init() {
	setCmd.Flags().Int64Var(&setExpireSeconds, "expire", 0, "set a time-to-live in seconds after the write")
}

func runSet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client, err := connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = client.Close() }()

	key, value := args[0], args[1]

	reply, err := client.Set(ctx, key, value)
	if err != nil {
		return fmt.Errorf("set: %w", err)
	}

	if setExpireSeconds > 0 {
		if _, err := client.Expire(ctx, key, setExpireSeconds); err != nil {
			return fmt.Errorf("set: expire: %w", err)
		}
	}

	fmt.Println(reply)
	return nil
}
