package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/akankshac-073/mcsim/internal/config"
	"github.com/akankshac-073/mcsim/internal/core"
	"github.com/akankshac-073/mcsim/internal/feasibility"
	"github.com/akankshac-073/mcsim/internal/mlog"
	"github.com/akankshac-073/mcsim/internal/parseinput"
	"github.com/akankshac-073/mcsim/internal/partition"
	"github.com/akankshac-073/mcsim/internal/task"
)

// rootFlags holds the flags every subcommand shares.
type rootFlags struct {
	input      string
	configFile string
	verbose    bool
	maxCores   int
	seed       int64
}

func newRootCmd() *cobra.Command {
	rf := &rootFlags{}

	root := &cobra.Command{
		Use:           "mcsim",
		Short:         "Mixed-criticality EDF-VD scheduler simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rf.input, "input", "", "path to the task-set input file (required)")
	root.PersistentFlags().StringVar(&rf.configFile, "config", "", "optional YAML config file overriding compiled-in defaults")
	root.PersistentFlags().BoolVar(&rf.verbose, "verbose", false, "enable debug-level logging")
	root.PersistentFlags().IntVar(&rf.maxCores, "max-cores", 0, "override the configured core ceiling (0: use config)")
	root.PersistentFlags().Int64Var(&rf.seed, "seed", 1, "seed for the actual-execution-time generator")

	root.AddCommand(newValidateCmd(rf))
	root.AddCommand(newReportCmd(rf))
	root.AddCommand(newRunCmd(rf))
	return root
}

// runContext bundles the state every subcommand needs after loading
// config, parsing the input, and checking feasibility.
type runContext struct {
	cfg         *config.Config
	log         zerolog.Logger
	taskSet     *parseinput.TaskSet
	hyperperiod float64
	cores       []*core.Core
}

// prepare loads configuration, parses the input file, and partitions
// the task set, stopping short of running the scheduler loop. It
// implements the two-stage failure reporting of spec §7: MCS
// infeasibility is reported and the run stops before ever invoking the
// partitioner; a partitioner failure (the task set needs more cores
// than MAX_CORES allows) is reported separately.
func prepare(rf *rootFlags, w io.Writer) (*runContext, error) {
	cfg, err := config.Load(rf.configFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if rf.maxCores > 0 {
		cfg.MaxCores = rf.maxCores
	}

	level := cfg.Logging.Level
	if rf.verbose {
		level = "debug"
	}
	log := mlog.New(w, level, cfg.Logging.Format)

	if rf.input == "" {
		return nil, fmt.Errorf("--input is required")
	}
	f, err := os.Open(rf.input)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	ts, err := parseinput.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing input: %w", err)
	}
	if len(ts.Tasks) > cfg.MaxTasks {
		return nil, fmt.Errorf("task set has %d tasks, exceeds configured max_tasks=%d", len(ts.Tasks), cfg.MaxTasks)
	}
	task.Sort(ts.Tasks)
	log.Info().Int("tasks", len(ts.Tasks)).Int("max_criticality", ts.MaxCriticality).Msg("parsed task set")

	minCores := feasibility.MinCores(ts.Tasks, ts.MaxCriticality)
	if minCores > cfg.MaxCores {
		return nil, fmt.Errorf("task set requires at least %d cores, exceeds configured max_cores=%d (MCS infeasible)", minCores, cfg.MaxCores)
	}

	hp := feasibility.Superhyperperiod(ts.Tasks)
	log.Info().Int("min_cores", minCores).Int64("superhyperperiod", hp).Msg("feasibility check passed")

	cores, err := partition.Allocate(ts.Tasks, minCores, cfg.MaxCores, ts.MaxCriticality, cfg.LPDThreshold)
	if err != nil {
		return nil, fmt.Errorf("partitioning: %w", err)
	}
	log.Info().Int("cores_opened", len(cores)).Msg("partitioning succeeded")

	return &runContext{cfg: cfg, log: log, taskSet: ts, hyperperiod: float64(hp), cores: cores}, nil
}
