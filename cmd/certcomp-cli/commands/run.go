package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/tayganr/certcomp/internal/jobs"
	"github.com/tayganr/certcomp/internal/store"
	"github.com/tayganr/certcomp/internal/telemetry"
	"github.com/tayganr/certcomp/lib/restyutil"
)

var (
	runTable  bool
	runDryRun bool
)

func init() {
	runCmd.Flags().BoolVar(&runTable, "table", false, "Print the summary as a table instead of json.")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Keep every written table in memory instead of the configured storage.")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
}

func loadRegistry() (*jobs.Env, *jobs.Registry, error) {
	cfg, err := jobs.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}
	if runDryRun {
		cfg.Storage.Backend = store.BackendMemory
	}

	var output restyutil.InstrumentOutput
	if verbose {
		fsOutput, err := restyutil.NewFilesystemOutput(".dev/resty/cli")
		if err != nil {
			return nil, nil, err
		}
		output = fsOutput
	}

	env := jobs.NewEnv(cfg, output, telemetry.SlogAPI{})
	registry, err := jobs.NewRegistry(env)
	if err != nil {
		env.Storage.Close()
		return nil, nil, fmt.Errorf("init jobs: %w", err)
	}
	return env, registry, nil
}

var runCmd = &cobra.Command{
	Use:   "run <job> [--table] [--dry-run]",
	Short: "Runs a single job and prints its summary.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, registry, err := loadRegistry()
		if err != nil {
			return err
		}
		defer env.Storage.Close()

		t1 := time.Now()
		summary, err := registry.Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s finished in %.1fs\n", args[0], time.Since(t1).Seconds())

		if !runTable {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(summary)
		}

		rows, err := flattenSummary(summary)
		if err != nil {
			return err
		}
		t := newTable()
		t.AppendHeader(table.Row{"Key", "Value"})
		for _, row := range rows {
			t.AppendRow(table.Row{row.key, row.value})
		}
		t.Render()
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists every job that can be run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, registry, err := loadRegistry()
		if err != nil {
			return err
		}
		defer env.Storage.Close()

		t := newTable()
		t.AppendHeader(table.Row{"Job"})
		for _, name := range registry.Names() {
			t.AppendRow(table.Row{name})
		}
		t.Render()
		return nil
	},
}
