// Command gaexport flattens line-delimited analytics sessions into
// visits.json and hits.json
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gaexport/internal/platform/logger"
)

func main() {
	logger.Init(logger.FromEnv())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		// a second signal gets the default handling and kills the process
		<-ctx.Done()
		stop()
	}()
	code := run(ctx, os.Args[1:], os.Stdin, isTerminal)
	stop()
	os.Exit(code)
}
