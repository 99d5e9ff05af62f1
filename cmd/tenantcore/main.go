// Package main provides the tenantcore CLI: snapshot export/import plus
// occupancy statistics and conflict reports against the configured backend.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tenantcore/internal/core"
	"tenantcore/internal/persistence"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	verbose bool
	metrics string
	trace   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "tenantcore",
		Short:         "Housing and tenant management engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&flags.metrics, "metrics", "", "print operation metrics after the run (expvar or prometheus)")
	root.PersistentFlags().StringVar(&flags.trace, "trace", "", "write operation spans as JSON lines to the given file")
	root.AddCommand(
		newExportCmd(flags),
		newImportCmd(flags),
		newStatsCmd(flags),
		newConflictsCmd(flags),
		newArchiveCmd(flags),
	)
	return root
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}

// newService wires the configured backend and telemetry behind a Service.
// The returned flush must run after the command: it emits the collected
// metrics report and closes the trace sink.
func newService(cmd *cobra.Command, flags *rootFlags) (*core.Service, *zap.Logger, func(), error) {
	logger, err := newLogger(flags.verbose)
	if err != nil {
		return nil, nil, nil, err
	}
	opts := []core.ServiceOption{
		core.WithLogger(logger),
		core.WithAuditRecorder(core.NewZapAuditRecorder(logger)),
	}
	flush := func() { _ = logger.Sync() }

	switch flags.metrics {
	case "":
	case "expvar":
		rec := core.NewExpvarMetricsRecorder("")
		opts = append(opts, core.WithMetricsRecorder(rec))
		next := flush
		flush = func() {
			if data, err := json.MarshalIndent(rec.Snapshot(), "", "  "); err == nil {
				fmt.Fprintln(cmd.ErrOrStderr(), string(data))
			}
			next()
		}
	case "prometheus":
		registry := prometheus.NewRegistry()
		rec, err := core.NewPrometheusMetricsRecorder(registry)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, core.WithMetricsRecorder(rec))
		next := flush
		flush = func() {
			if families, err := registry.Gather(); err == nil {
				for _, family := range families {
					_, _ = expfmt.MetricFamilyToText(cmd.ErrOrStderr(), family)
				}
			}
			next()
		}
	default:
		return nil, nil, nil, fmt.Errorf("unknown metrics format %q", flags.metrics)
	}

	if flags.trace != "" {
		f, err := os.Create(flags.trace)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open trace file: %w", err)
		}
		opts = append(opts, core.WithTracer(core.NewJSONTracer(f)))
		next := flush
		flush = func() {
			_ = f.Close()
			next()
		}
	}

	store, err := persistence.Open(cmd.Context(), core.NewDefaultRulesEngine())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open store: %w", err)
	}
	return core.NewService(store, opts...), logger, flush, nil
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the full state as a versioned JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, logger, flush, err := newService(cmd, flags)
			if err != nil {
				return err
			}
			defer flush()
			doc, err := svc.Export(cmd.Context())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			logger.Info("exported", zap.String("path", out), zap.Int("projects", len(doc.Projects)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "-", "output file (default stdout)")
	return cmd
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the full state from a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, logger, flush, err := newService(cmd, flags)
			if err != nil {
				return err
			}
			defer flush()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := svc.Import(cmd.Context(), data); err != nil {
				return err
			}
			logger.Info("imported", zap.String("path", args[0]))
			return nil
		},
	}
	return cmd
}

func newStatsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [project-id]",
		Short: "Print occupancy statistics per project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, flush, err := newService(cmd, flags)
			if err != nil {
				return err
			}
			defer flush()
			projects := svc.ListProjects(cmd.Context())
			for _, project := range projects {
				if len(args) == 1 && project.ID != args[0] {
					continue
				}
				stats, err := svc.ProjectStats(cmd.Context(), project.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %d/%d occupied (%d%%), %d on notice, %d vacant, %d people, %d conflicts\n",
					project.Name, project.ID,
					stats.Occupied, stats.Total, stats.OccupancyPercent,
					stats.Notice, stats.Vacant, stats.PeopleCount, stats.ConflictCount)
			}
			return nil
		},
	}
	return cmd
}

func newConflictsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts <project-id>",
		Short: "List attention-required situations within a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, flush, err := newService(cmd, flags)
			if err != nil {
				return err
			}
			defer flush()
			conflicts, err := svc.Conflicts(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, c := range conflicts {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", c.Type, c.Message)
			}
			if len(conflicts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no conflicts")
			}
			return nil
		},
	}
	return cmd
}

func newArchiveCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "List the eviction archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, flush, err := newService(cmd, flags)
			if err != nil {
				return err
			}
			defer flush()
			for _, entry := range svc.Archive(cmd.Context()) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s: %s / %s, %s, reason %s\n",
					entry.CheckOutDate.Format(time.DateOnly),
					entry.FirstName, entry.LastName,
					entry.ProjectName, entry.AddressName,
					entry.CheckInDate.Format(time.DateOnly), entry.Reason)
			}
			return nil
		},
	}
	return cmd
}
