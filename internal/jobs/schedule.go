package jobs

import (
	"context"
	"fmt"
	"sort"

	"github.com/tayganr/certcomp/internal/chrono"
	"github.com/tayganr/certcomp/internal/telemetry"
)

const report_scheduled_run = "scheduled-run"

// Schedule registers a cron callback for every `job name -> cron spec`
// entry, runs are bound to `ctx` and their failures are reported.
func Schedule(ctx context.Context, cron chrono.CronAPI, registry *Registry, schedule map[string]string, tel telemetry.API) error {
	tel = telemetry.NewScopedAPI("jobs_schedule", tel)

	names := make([]string, 0, len(schedule))
	for name := range schedule {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		job, ok := registry.Get(name)
		if !ok {
			return fmt.Errorf("schedule: unknown job %q", name)
		}
		spec := schedule[name]
		err := cron.Cron(spec, func() {
			if ctx.Err() != nil {
				return
			}
			tel.ReportDebug("scheduled run", job.Name())
			_, err := job.Run(ctx)
			if err != nil {
				tel.ReportBroken(report_scheduled_run, job.Name(), err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
		}
	}
	return nil
}
