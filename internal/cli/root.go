// Package cli implements anglectl, the local companion to the API.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRoot().ExecuteContext(ctx)
}

func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "anglectl",
		Short:         "Generate consistent multi-angle product photos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		GenerateCmd(),
		IntentCmd(),
		TokenCmd(),
	)
	return root
}
