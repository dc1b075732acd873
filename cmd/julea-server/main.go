// Command julea-server hosts one object backend, one KV backend, or both,
// at a fixed server index, and answers the binary wire protocol on behalf
// of whichever backends it loaded.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "julea-server",
		Short: "Host a JULEA object or KV backend and serve it over the wire",
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to the INI configuration file (overrides the usual search order)")
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
