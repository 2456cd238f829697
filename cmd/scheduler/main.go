package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/signalsfoundry/tsn-scheduler/core"
	"github.com/signalsfoundry/tsn-scheduler/internal/config"
	"github.com/signalsfoundry/tsn-scheduler/internal/driver"
	"github.com/signalsfoundry/tsn-scheduler/internal/logging"
	"github.com/signalsfoundry/tsn-scheduler/internal/observability"
	"github.com/signalsfoundry/tsn-scheduler/internal/solver"
	"github.com/signalsfoundry/tsn-scheduler/internal/solver/milp"
	"github.com/signalsfoundry/tsn-scheduler/internal/solver/smt"
	"github.com/signalsfoundry/tsn-scheduler/internal/xerr"
)

// scheduler <network.xml> <schedule.xml> <configuration.xml> (spec.md §6).
// Exit 0 on success, non-zero on any parse or emission failure. Solver
// infeasibility is reported but is not itself an abnormal exit.
func main() {
	tuneParamsPath := flag.String("tune-params", "tune-params.xml", "path to write/read the tune-mode parameter file")
	flag.Parse()

	if flag.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "usage: scheduler <network.xml> <schedule.xml> <configuration.xml>")
		os.Exit(2)
	}
	networkPath, schedulePath, configPath := flag.Arg(0), flag.Arg(1), flag.Arg(2)

	baseLog := logging.NewFromEnv()
	ctx, log := logging.WithRunLogger(context.Background(), baseLog)
	log.Info(ctx, "scheduler invocation starting",
		logging.String("network", networkPath),
		logging.String("schedule", schedulePath),
		logging.String("configuration", configPath))

	tracingShutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scheduler: init tracing: %v\n", err)
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, tracingShutdown, log)

	collector, err := observability.NewBuildCollector(prometheus.DefaultRegisterer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scheduler: init metrics: %v\n", err)
		os.Exit(1)
	}

	if err := run(ctx, networkPath, schedulePath, configPath, *tuneParamsPath, log, collector); err != nil {
		fmt.Fprintf(os.Stderr, "scheduler: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, networkPath, schedulePath, configPath, tuneParamsPath string, log logging.Logger, collector *observability.BuildCollector) error {
	net, err := loadNetworkFile(networkPath)
	if err != nil {
		return err
	}

	cfg, err := loadScheduleConfigurationFile(configPath)
	if err != nil {
		return err
	}

	adapter, err := adapterFor(cfg.Solver)
	if err != nil {
		return err
	}

	d := driver.New(net, cfg, adapter, log, collector)
	result, params, err := d.Run(ctx)
	if err != nil {
		return err
	}

	if params != nil {
		return config.WriteTuneParams(tuneParamsPath, *params)
	}

	if result.Schedule == nil {
		fmt.Fprintf(os.Stderr, "scheduler: solve status %s, no schedule written\n", result.Status)
		return nil
	}
	return config.WriteSchedule(schedulePath, result.Schedule)
}

func loadNetworkFile(path string) (*core.Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerr.Wrap(xerr.InvalidInput, path, "open network document", err)
	}
	defer f.Close()
	return config.LoadNetwork(f)
}

func loadScheduleConfigurationFile(path string) (*config.ScheduleConfigurationDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerr.Wrap(xerr.InvalidInput, path, "open schedule configuration document", err)
	}
	defer f.Close()
	return config.LoadScheduleConfiguration(f)
}

func adapterFor(name string) (solver.Adapter, error) {
	switch name {
	case "z3":
		return smt.New(), nil
	case "gurobi":
		return milp.New(), nil
	default:
		return nil, xerr.New(xerr.InvalidInput, name, "unknown solver, expected z3 or gurobi")
	}
}
