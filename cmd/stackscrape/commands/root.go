package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"stackscrape/internal/components/chrono"
	"stackscrape/internal/components/telemetry"
	"stackscrape/internal/fetcher"
	"stackscrape/internal/scrapers/stackoverflow"
	"stackscrape/lib/configutil"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
	captureDir *string

	cfg       Config
	providers telemetry.Providers
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The configuration file, <name>.local.<ext> is merged on top of it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging/instrumentation.")
	captureDir = rootCmd.PersistentFlags().String("capture", "", "Write every fetched exchange into this directory.")
}

var rootCmd = &cobra.Command{
	Use:   "stackscrape",
	Short: "stackscrape scrapes questions, answers and collectives off stackoverflow.com.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		var err error
		cfg, err = configutil.ReadConfig(*configPath, DefaultConfig())
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("no config file found, using defaults", "config", *configPath)
		} else if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		err = cfg.applyEnv(os.Getenv)
		if err != nil {
			return err
		}
		if *captureDir != "" {
			cfg.Scraper.CaptureDir = *captureDir
		}

		providers, err = telemetry.Setup(cmd.Context(), "stackscrape", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return providers.Shutdown(context.Background())
	},
}

func newClient() (*stackoverflow.Client, error) {
	tel := telemetry.SlogAPI{}

	opts := cfg.Scraper.FetcherOptions()
	if cfg.Scraper.CaptureDir != "" {
		capture, err := fetcher.NewDirCapture(cfg.Scraper.CaptureDir)
		if err != nil {
			return nil, fmt.Errorf("create capture directory: %w", err)
		}
		opts.Capture = capture
		slog.Info("capturing fetched pages", "dir", cfg.Scraper.CaptureDir)
	}

	f := fetcher.New(opts, chrono.NewStandardImpl(), tel)
	return stackoverflow.NewClient(f, cfg.Scraper.ClientOptions(), tel), nil
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
