// Command soapctl drives the soapcore client from the shell: it hydrates the
// local entity store, runs single queries and mutations, archives snapshots
// and can expose client metrics for scraping.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
