package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/speedwagon-io/openseat/internal/config"
	"github.com/speedwagon-io/openseat/internal/dashboard"
	"github.com/speedwagon-io/openseat/internal/feed"
	"github.com/speedwagon-io/openseat/internal/lib/logger/sl"
	"github.com/speedwagon-io/openseat/internal/metrics"
	"github.com/speedwagon-io/openseat/internal/report"
	"github.com/speedwagon-io/openseat/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to config file")
	seedPath := flag.String("seed", "", "import a JSON feed file into the sqlite feed and exit")
	renderPath := flag.String("render", "", "render the chart once to a .png or .svg file and exit")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	log := sl.SetupLogger(cfg.Log.Level, cfg.Log.Format)

	log.Info("starting openseat",
		slog.String("env", cfg.Env),
		slog.String("feed", cfg.Feed.Kind),
	)

	source, err := feed.NewSource(log, cfg.Feed, cfg.Chart.Location())
	if err != nil {
		log.Error("failed to create feed source", sl.Err(err))
		return 1
	}
	defer func() {
		if err := source.Close(); err != nil {
			log.Error("failed to close feed source", sl.Err(err))
		}
	}()

	if *seedPath != "" {
		return seed(log, source, *seedPath)
	}

	m := metrics.New()
	dash := dashboard.NewService(log, source, cfg.Chart, m)

	if *renderPath != "" {
		return renderOnce(log, dash, *renderPath)
	}

	reports := report.NewStore(cfg.Reports.MaxItems)
	srv := server.New(log, cfg.HTTP, dash, reports, m)

	srv.AddChecker(server.NewFeedChecker(source))
	srv.AddChecker(server.NewReportsChecker(reports.Count, cfg.Reports.MaxItems))
	if sqliteSource, ok := source.(*feed.SQLiteSource); ok {
		srv.AddChecker(server.NewReadingsChecker(sqliteSource.Count))
	}

	if err := srv.Start(); err != nil {
		log.Error("failed to start http server", sl.Err(err))
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	log.Info("received signal, shutting down", slog.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("failed to stop http server", sl.Err(err))
	}

	log.Info("openseat stopped")
	return 0
}

func seed(log *slog.Logger, source feed.Source, path string) int {
	sqliteSource, ok := source.(*feed.SQLiteSource)
	if !ok {
		log.Error("seeding requires feed.kind sqlite", slog.String("kind", source.Name()))
		return 1
	}

	n, err := sqliteSource.Seed(context.Background(), path)
	if err != nil {
		log.Error("failed to seed feed", slog.String("path", path), sl.Err(err))
		return 1
	}

	log.Info("feed seeded", slog.String("path", path), slog.Int("records", n))
	return 0
}

// outputFormat picks the chart format from the file extension.
func outputFormat(path string) (dashboard.Format, error) {
	switch format := dashboard.Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")); format {
	case dashboard.FormatPNG, dashboard.FormatSVG:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q (use .png or .svg)", dashboard.ErrUnknownFormat, filepath.Ext(path))
	}
}

// renderOnce paints the default chart into path. The file is only written
// once the chart is fully encoded.
func renderOnce(log *slog.Logger, dash *dashboard.Service, path string) int {
	format, err := outputFormat(path)
	if err != nil {
		log.Error("chart not rendered", slog.String("path", path), sl.Err(err))
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var buf bytes.Buffer
	if err := dash.Render(ctx, &buf, format, dashboard.ChartRequest{}); err != nil {
		log.Error("chart not rendered", slog.String("status", dashboard.StatusMessage(err)), sl.Err(err))
		return 1
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		log.Error("failed to write chart", slog.String("path", path), sl.Err(err))
		_ = os.Remove(path)
		return 1
	}

	log.Info("chart rendered", slog.String("path", path), slog.String("status", dash.Status(ctx, dashboard.ChartRequest{})))
	return 0
}
