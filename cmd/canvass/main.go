package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Context with signal handling so a long OCR run can be interrupted
	// and still close out its run row.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
