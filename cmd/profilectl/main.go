// Command profilectl queries profiler cycle tables from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/profilemeta/internal/cli"
	"github.com/okian/profilemeta/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := logger.InitWithWriter(os.Stderr, false); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	if err := cli.Execute(ctx, &cli.Env{Out: os.Stdout}, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "profilectl: %v\n", err)
		stop()
		os.Exit(1)
	}
}
