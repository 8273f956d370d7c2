package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := newApp(os.Stdout, os.Stderr)
	err := a.command().Run(ctx, os.Args)

	stop()

	if err != nil {
		a.reportError(err)
		os.Exit(1)
	}

	a.sync()
}
