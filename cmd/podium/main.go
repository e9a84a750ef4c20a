// Command podium builds leakage-free race features and podium picks.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := Execute(ctx)
	stop()
	if err != nil {
		os.Stderr.WriteString("podium: " + err.Error() + "\n")
		os.Exit(1)
	}
}
