package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	// Interrupting an import cancels it, which rolls its transaction back.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
