package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"crudecast/internal/app"
	"crudecast/internal/config"
	"crudecast/internal/history"
)

func newService(ctx context.Context) (*app.Service, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return app.NewService(ctx, cfg)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func parseDateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return time.Time{}, nil
	}
	day, err := time.Parse(history.DateFormat, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, raw)
	}
	return day, nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	target, err := parseDateFlag(cmd, "date")
	if err != nil {
		return err
	}
	if target.IsZero() {
		target = time.Now().UTC().Truncate(24 * time.Hour)
	}

	path, err := svc.Pipeline.RunDaily(ctx, target)
	if err != nil {
		return err
	}
	fmt.Printf("aligned artifact written: %s\n", path)
	return nil
}

func runPredict(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	target, err := parseDateFlag(cmd, "date")
	if err != nil {
		return err
	}

	res, err := svc.Inference.Run(ctx, target)
	if err != nil {
		return err
	}

	fmt.Printf("feature date:    %s\n", res.Date)
	fmt.Printf("predicted delta: %+.4f (%s)\n", res.PredictedDelta, res.PredictedDirection)
	fmt.Printf("countries:       %d\n", res.NumEntities)
	fmt.Printf("model version:   %s\n", res.ModelVersion)
	for i, c := range res.TopContributors {
		fmt.Printf("  %2d. %-3s weight=%.4f (%.1f%%)\n", i+1, c.Entity, c.Weight, c.Percentage)
	}
	return nil
}

func runBackfill(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	from, err := parseDateFlag(cmd, "from")
	if err != nil {
		return err
	}
	to, err := parseDateFlag(cmd, "to")
	if err != nil {
		return err
	}
	if to.IsZero() {
		to = time.Now().UTC().Truncate(24 * time.Hour)
	}

	summary, err := svc.Backfill.Run(ctx, from, to)
	if err != nil {
		return err
	}
	log.Info().Int("processed", summary.DaysProcessed).Int("skipped", summary.DaysSkipped).
		Msg("backfill finished")
	fmt.Printf("backfill: %d/%d days processed, %d outcomes settled\n",
		summary.DaysProcessed, summary.DaysRequested, summary.OutcomesUpdated)
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	host := cfg.HTTP.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	url := fmt.Sprintf("http://%s:%d/health", host, cfg.HTTP.Port)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health probe %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("read health response: %w", err)
	}
	fmt.Printf("%s\n", body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
