package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"persona-agent/internal/app"
	"persona-agent/internal/config"
	"persona-agent/shared/interfaces"
	"persona-agent/shared/logger"
)

var (
	// Global flags
	timeout  time.Duration
	logLevel string

	cfg        *config.Config
	cliLogger  *zap.Logger
	generators = func(ctx context.Context) (interfaces.ContentGenerator, error) {
		return app.NewAgent(ctx, cfg, cliLogger)
	}
	imageJobs = func() interfaces.ImageJobService {
		return app.NewImageService(cfg, cliLogger)
	}
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "personactl",
	Short: "Generate persona content from the command line",
	Long: `personactl runs the persona's decision engine and generation strategies
directly, without the worker or the API server.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if cliLogger != nil {
			_ = cliLogger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Upper bound for one command")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(decideCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(replyCmd)
	rootCmd.AddCommand(fudCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
}

// setup loads configuration once. Logs go to stderr so stdout carries only
// the generated content.
func setup(cmd *cobra.Command, _ []string) error {
	if cfg != nil {
		return nil
	}
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	loaded.Logger.Level = logLevel
	loaded.Logger.Encoding = "console"
	loaded.Logger.OutputPath = "stderr"

	l, err := logger.New(loaded.Logger)
	if err != nil {
		return err
	}
	cfg, cliLogger = loaded, l
	return nil
}

// commandContext bounds a command by --timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
