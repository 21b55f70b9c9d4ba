package main

import (
	"flag"
	"log/slog"

	"github.com/tayganr/certcomp/internal/chrono"
	"github.com/tayganr/certcomp/internal/jobs"
	"github.com/tayganr/certcomp/internal/service"
	"github.com/tayganr/certcomp/internal/telemetry"
	"github.com/tayganr/certcomp/lib/serviceutil"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	configPath := flag.String("config", "config.json5", "The configuration file to read.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	output := InitTelemetry(ctx, *verbose)

	cfg, err := jobs.LoadConfig(*configPath)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}

	tel := telemetry.SlogAPI{}
	env := jobs.NewEnv(cfg, output, tel)
	defer env.Storage.Close()

	registry, err := jobs.NewRegistry(env)
	if err != nil {
		serviceutil.Fatal("init jobs", err)
	}
	slog.Info("jobs registered", "jobs", registry.Names(), "storage", cfg.Storage.Backend)

	if len(cfg.Service.Schedule) > 0 {
		cron := chrono.NewStandardCron(tel)
		defer cron.Stop()
		err = jobs.Schedule(ctx, cron, registry, cfg.Service.Schedule, tel)
		if err != nil {
			serviceutil.Fatal("schedule jobs", err)
		}
	}

	svc := service.NewService(registry, tel)
	serviceutil.StartHttpServer(ctx, cfg.Service.Port, svc.Handler(cfg.Service.AccessToken))
}
