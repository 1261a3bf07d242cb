package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/akankshac-073/mcsim/internal/report"
)

// newReportCmd prints the sorted task list, per-core allocations, and
// superhyperperiod the way driver.c prints them before ever entering
// the scheduler loop, without running the simulation.
func newReportCmd(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the partitioning report without running the scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := prepare(rf, os.Stderr)
			if err != nil {
				return err
			}
			w := report.New(os.Stdout)
			w.SortedTasks(rc.taskSet.Tasks)
			w.Allocations(rc.cores)
			w.Superhyperperiod(rc.hyperperiod)
			return nil
		},
	}
}
