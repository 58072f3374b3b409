package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/valkey-io/valkey-glide-go"
)

var subscribePattern bool

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <channel> [channel...]",
	Short: "Subscribe to channels and print incoming messages until interrupted",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSubscribe,
}

func init() {
	subscribeCmd.Flags().BoolVarP(&subscribePattern, "pattern", "p", false, "treat the arguments as glob patterns (PSUBSCRIBE)")
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if subscribePattern {
		cfg.Client.Subscriptions.Pattern = args
	} else {
		cfg.Client.Subscriptions.Exact = args
	}

	client, err := glide.Create(ctx, glide.Options{
		Client:    cfg.Client,
		Runtime:   cfg.Runtime,
		Telemetry: cfg.Telemetry,
		PubSub:    glide.PubSubOptions{Mode: glide.PubSubModePull},
	})
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = client.Close() }()

	fmt.Printf("Subscribed to %v. Press Ctrl+C to stop.\n", args)

	for {
		msg, err := client.GetPubSubMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Println("\nUnsubscribed.")
				return nil
			}
			return fmt.Errorf("subscribe: %w", err)
		}
		fmt.Printf("[%s] %s\n", msg.Channel, msg.Message)
	}
}
