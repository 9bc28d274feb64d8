// Command zyra runs the agricultural incident service and exposes its
// operations as subcommands.
//
// Usage:
//
//	zyra serve
//	zyra report --farmer F-1001 --lga Ikeja --state Lagos --lat 6.6 --lon 3.35 \
//	  --crop maize --category pest --description "armyworm on young plants"
//	zyra query-lga Ikeja [--ignore-case]
//	zyra get inc-000001
//	zyra recommend inc-000001 "Spray neem extract at dusk"
//	zyra status inc-000001 dispatched
//	zyra seed [path]
//	zyra stats
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
