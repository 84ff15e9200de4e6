package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/embedstack/wvtriage/internal/catalog"
	"github.com/embedstack/wvtriage/internal/config"
	"github.com/embedstack/wvtriage/internal/engine"
	"github.com/embedstack/wvtriage/internal/models"
	"github.com/embedstack/wvtriage/internal/services"
	"github.com/embedstack/wvtriage/internal/utils"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		hostApp     string
		symptom     string
		flow        string
		catalogPath string
		fromMicros  uint64
		toMicros    uint64
	)

	cmd := &cobra.Command{
		Use:   "analyze <trace-file>",
		Short: "Analyze one trace dump and print the report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := utils.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.JSON)

			if catalogPath == "" {
				catalogPath = cfg.Catalogs.Path
			}
			cat, err := catalog.Load(catalogPath)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			if hostApp == "" {
				hostApp = cfg.Analysis.HostApp
			}

			pipeline := engine.NewPipeline(logger, cfg.Analysis.RuntimeMarker)
			svc := services.NewTriageService(logger, pipeline,
				services.StaticCatalog{Catalog: cat}, nil, nil, cfg.Analysis.MaxLines)

			report, err := svc.AnalyzeFile(context.Background(), args[0], models.AnalysisRequest{
				HostApp:    hostApp,
				Symptom:    symptom,
				Flow:       flow,
				FromMicros: fromMicros,
				ToMicros:   toMicros,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringVar(&hostApp, "host-app", "", "host application name for role classification")
	cmd.Flags().StringVar(&symptom, "symptom", "", "free-text symptom description")
	cmd.Flags().StringVar(&flow, "flow", "", "flow catalog to check (default: first flow)")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "path to a catalog YAML overriding the built-in defaults")
	cmd.Flags().Uint64Var(&fromMicros, "from", 0, "lower time bound in microseconds (0 = unbounded)")
	cmd.Flags().Uint64Var(&toMicros, "to", 0, "upper time bound in microseconds (0 = unbounded)")
	return cmd
}
