package main

import (
	"os"

	"github.com/spf13/cobra"
)

// newValidateCmd checks that the input parses, the task set is MCS
// feasible, and the partitioner can admit it within max-cores, without
// running the scheduler loop (spec §7: infeasibility is reported and
// the run stops before simulation).
func newValidateCmd(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that a task set is feasible and partitions within max-cores",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := prepare(rf, os.Stderr)
			if err != nil {
				return err
			}
			rc.log.Info().Int("cores_opened", len(rc.cores)).Msg("task set is valid")
			return nil
		},
	}
}
