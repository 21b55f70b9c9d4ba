package main

import (
	"context"

	"github.com/tayganr/certcomp/cmd/certcomp-cli/commands"
	"github.com/tayganr/certcomp/lib/serviceutil"
	libtelemetry "github.com/tayganr/certcomp/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	libtelemetry.InitSlog(false)
	err := libtelemetry.SetupFromEnv(ctx, "certcomp-cli")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	defer libtelemetry.Shutdown(context.Background())
	commands.ExecuteContext(ctx)
}
