// Command nmap2csv converts nmap output into an attack surface CSV.
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
	code := r.Execute(ctx, r.Nmap2CSVCommand(), os.Args[1:])
	stop()
	os.Exit(code)
}
