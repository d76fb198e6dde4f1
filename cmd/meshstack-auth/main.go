// Command meshstack-auth logs in to meshStack with client credentials and
// writes the bearer token to a file for later pipeline steps.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/meshcloud/meshstack-auth/cmd/meshstack-auth/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// The failure itself has already been reported to the host
	err := commands.Execute(ctx, os.Args)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
