// Command mcsim simulates a mixed-criticality task set under EDF-VD
// admission, WFD/FFD partitioning, and a discrete-event runtime
// scheduler with dynamic-procrastination core shutdown.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
