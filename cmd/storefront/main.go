package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"logolate/go_backend/internal/app"
	"logolate/go_backend/internal/app/config"
	"logolate/go_backend/internal/app/logging"
	pdfgen "logolate/go_backend/internal/domain/quote/pdf/gofpdf"
)

var (
	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Logolate storefront backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.MustLoad()
		var err error
		logger, err = logging.New(cfg.LogLevel, cfg.Development())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(cmd.Context(), cfg, logger)
	},
}

var pdfOutput string

var quotePDFCmd = &cobra.Command{
	Use:   "quote-pdf <budget-id>",
	Short: "Render a budget from the backend as PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := app.NewBackend(cfg, logger)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		b, err := client.GetBudget(ctx, args[0])
		if err != nil {
			return fmt.Errorf("fetch budget %s: %w", args[0], err)
		}
		out, err := pdfgen.New(logger).Generate(b)
		if err != nil {
			return err
		}

		path := pdfOutput
		if path == "" {
			path = "presupuesto-" + args[0] + ".pdf"
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return err
		}
		logger.Info("budget pdf written", zap.String("budget_id", args[0]), zap.String("path", path))
		return nil
	},
}

func init() {
	quotePDFCmd.Flags().StringVarP(&pdfOutput, "output", "o", "", "output file (default presupuesto-<id>.pdf)")
	rootCmd.AddCommand(serveCmd, quotePDFCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
