package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	appName = "crudecast"
	version = "v1.2.0"
)

var configPath string

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	// Missing .env is fine; real deployments use the environment.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded environment from .env")
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Geopolitical event-driven crude oil price forecasting",
		Version: version,
		Long: `crudecast ingests the GDELT global event feed and daily WTI/Brent
prices, engineers per-country sentiment and price features, and serves
next-business-day WTI price forecasts from a trained linear ensemble.`,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the forecast HTTP server",
		Long:  "Serves /health, /predict, /contributors, /history and /metrics until interrupted",
		RunE:  runServe,
	}
	serveCmd.Flags().String("host", "", "Bind host (overrides config)")
	serveCmd.Flags().Int("port", 0, "Bind port (overrides config)")

	pipelineCmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run the daily data pipeline once",
		Long:  "Collects feed slices and prices for the target date and writes the aligned panel artifact",
		RunE:  runPipeline,
	}
	pipelineCmd.Flags().String("date", "", "Target date (YYYY-MM-DD), defaults to today")

	predictCmd := &cobra.Command{
		Use:   "predict",
		Short: "Run one inference from the newest artifact",
		Long:  "Loads the model bundle, forecasts the next business day, and updates the prediction history",
		RunE:  runPredict,
	}
	predictCmd.Flags().String("date", "", "Required feature date (YYYY-MM-DD); fails if the newest artifact is older")

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Replay pipeline and inference over past business days",
		Long:  "Processes each business day in the range oldest first, settling realized outcomes along the way",
		RunE:  runBackfill,
	}
	backfillCmd.Flags().String("from", "", "Range start (YYYY-MM-DD, required)")
	backfillCmd.Flags().String("to", "", "Range end (YYYY-MM-DD), defaults to today")
	_ = backfillCmd.MarkFlagRequired("from")

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Probe a running forecast server",
		Long:  "Queries /health on the configured HTTP address and reports the result",
		RunE:  runHealth,
	}

	rootCmd.AddCommand(serveCmd, pipelineCmd, predictCmd, backfillCmd, healthCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
