package main

import (
	"context"
	"log/slog"

	"github.com/tayganr/certcomp/lib/restyutil"
	"github.com/tayganr/certcomp/lib/serviceutil"
	libtelemetry "github.com/tayganr/certcomp/lib/telemetry"
)

// InitTelemetry sets up logging and otel export, in verbose mode it also
// returns an output that dumps every http message the jobs make.
func InitTelemetry(ctx context.Context, verbose bool) restyutil.InstrumentOutput {
	libtelemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	err := libtelemetry.SetupFromEnv(ctx, "certcomp-server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		libtelemetry.Shutdown(context.Background())
	}()
	libtelemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return nil
	}
	output, err := restyutil.NewFilesystemOutput(".dev/resty/server")
	if err != nil {
		serviceutil.Fatal("create resty output directory", err)
	}
	return output
}
