// Command nflstats drives the data adapters, the feature pipeline and the
// model harness from the command line.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nfl-projections-go/config"
	"nfl-projections-go/logging"
	"nfl-projections-go/services"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
	timeout time.Duration
	seasons string

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nflstats",
	Short: "NFL stats adapters, feature pipeline and projection models",
	Long: `nflstats fetches weekly NFL data, builds leakage-free feature tables,
trains one linear regression per target statistic and assembles the
combined projections table shown by the dashboard server.

Configuration comes from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		logging.Configure(cfg.ToLoggingConfig())
		if verbose {
			logging.GetGlobalLogger().SetLevel(logging.DEBUG)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Minute, "overall command timeout")
	rootCmd.PersistentFlags().StringVar(&seasons, "seasons", "", `seasons to load: "2024", "2022,2024" or "2019-2024" (default DASHBOARD_SEASONS)`)

	rootCmd.AddCommand(fetchCmd, featuresCmd, trainCmd, evaluateCmd, projectCmd,
		pfrCmd, sportsDataCmd, yahooCmd, adminTokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// commandContext is cancelled by SIGINT/SIGTERM or the --timeout flag.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// selectedYears parses --seasons, falling back to DASHBOARD_SEASONS.
func selectedYears() (services.Years, error) {
	if seasons == "" {
		return services.NormalizeYears(cfg.Pipeline.DashboardSeasons...), nil
	}
	return services.ParseYears(seasons)
}

func httpClient() *http.Client {
	return &http.Client{Timeout: cfg.Sources.HTTPTimeout}
}

func newNflverse() *services.Nflverse {
	return services.NewNflverse(services.NflverseConfig{
		CacheDir: cfg.Sources.NflverseCacheDir,
		Client:   httpClient(),
	})
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
