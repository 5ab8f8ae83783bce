package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/zach2017/oldtownaltour/internal/buildinfo"
	"github.com/zach2017/oldtownaltour/internal/cli"
	"github.com/zach2017/oldtownaltour/internal/config"
	"github.com/zach2017/oldtownaltour/internal/logging"
	"github.com/zach2017/oldtownaltour/internal/repositories/kv"
	"github.com/zach2017/oldtownaltour/internal/services"
	"github.com/zach2017/oldtownaltour/internal/store"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	backend, err := kv.Open(ctx, cfg.StorageOptions())
	if err != nil {
		log.Fatalf("%v", err)
		return
	}
	defer backend.Close()

	st := store.New(backend, cfg.StorageKey, backend.Provider, store.WithLogger(logger.With("component", "store")))
	svc := services.NewCatalogService(st, logger.With("component", "catalog"), services.WithProgressStep(cfg.ProgressStep))

	app := cli.NewApp(svc, logger, os.Stdin, os.Stdout)
	app.Run(ctx)

}
