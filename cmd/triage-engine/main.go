package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "triage-engine",
		Short: "Root-cause triage for embedded browser trace captures",
		Long: `triage-engine ingests a pre-filtered, line-oriented dump of OS tracing
events from an embedded browser session and produces a structured
diagnosis: process topology, incarnation timeline, lifecycle playbook
results, and confidence-ranked root-cause candidates.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file")

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
