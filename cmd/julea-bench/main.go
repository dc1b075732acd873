// Command julea-bench drives a configurable object or KV workload against a
// configured JULEA cluster as a pure client, reporting total and average
// wall time. It exercises the client-side batch engine end to end; it is not
// a statistical benchmarking framework, only a thin driver over the object
// and KV clients.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "julea-bench",
		Short: "Drive an object or KV workload against a JULEA cluster",
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to the INI configuration file (overrides the usual search order)")
	rootCmd.AddCommand(objectCmd())
	rootCmd.AddCommand(kvCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
