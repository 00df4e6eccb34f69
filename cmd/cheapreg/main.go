// cmd/cheapreg/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/law-makers/cheapreg/internal/cli"
)

func main() {
	// Interrupts cancel in-flight registrar requests
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx)
}
