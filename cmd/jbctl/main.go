package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/jbkit/internal/app"
	"github.com/dmitrijs2005/jbkit/internal/cli"
	"github.com/dmitrijs2005/jbkit/internal/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cmd, _ := cli.SplitCommand(os.Args[1:]); cmd == "" || cmd == "help" {
		cli.Usage(os.Stderr)
		return
	}

	cfg := config.LoadConfig()
	a, err := app.NewApp(ctx, cfg, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	err = cli.New(a, os.Stdout).Run(ctx, os.Args[1:])
	if cerr := a.Close(); cerr != nil {
		a.Logger().Warn(ctx, "db close failed", "error", cerr)
	}
	if err != nil {
		if errors.Is(err, cli.ErrUnknownCommand) {
			cli.Usage(os.Stderr)
		}
		log.Fatalf("%v", err)
	}
}
