// Command hosts-add backs up the hosts file and appends an IPv4 mapping.
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
	code := r.Execute(ctx, r.HostsAddCommand(), os.Args[1:])
	stop()
	os.Exit(code)
}
