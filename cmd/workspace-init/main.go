// Command workspace-init creates the engagement notes directory tree.
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
	code := r.Execute(ctx, r.WorkspaceInitCommand(), os.Args[1:])
	stop()
	os.Exit(code)
}
