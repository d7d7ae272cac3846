// Command hosts-history lists journaled hosts file operations and snapshots.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pandeptwidyaop/hostkit/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	r := cli.NewRunner()
	code := r.Execute(ctx, r.HistoryCommand(), os.Args[1:])
	stop()
	os.Exit(code)
}
