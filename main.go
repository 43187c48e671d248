package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"scamtrap/app/api"
	"scamtrap/app/config"
	"scamtrap/app/service/agent"
	"scamtrap/app/service/detect"
	"scamtrap/app/service/extract"
	"scamtrap/app/service/honeypot"
	"scamtrap/app/service/metrics"
	"scamtrap/app/service/patterns"
	"scamtrap/app/service/store"
	"scamtrap/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, patterns.New)
	do.Provide(di, store.New)
	do.Provide(di, detect.New)
	do.Provide(di, extract.New)
	do.Provide(di, agent.New)
	do.Provide(di, metrics.New)
	do.Provide(di, honeypot.New)
	do.Provide(di, api.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	if err = do.MustInvoke[*api.Server](di).Run(appCtx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Server stopped", "error", err)
	}
}
