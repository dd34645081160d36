// Command cmsctl runs operator tasks against the site database and search
// index: migrations, crawling an existing site, reindexing and ad-hoc search.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/myproject/website/internal/app"
	"github.com/myproject/website/internal/config"
	"github.com/myproject/website/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg      *config.Config
	logger   *logrus.Logger
	logLevel string

	// openApp is replaced in tests.
	openApp = app.Open
)

var rootCmd = &cobra.Command{
	Use:           "cmsctl",
	Short:         "Operator tools for the website",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg != nil {
			return nil
		}
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		if logLevel != "" {
			loaded.Log.Level = logLevel
		}
		cfg = loaded
		logger = utils.InitLogger(cfg.Log.Level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(migrateCmd, seedCmd, reindexCmd, searchCmd, popularCmd)
}

// withApp opens the application for the duration of fn.
func withApp(fn func(a *app.App) error) error {
	a, err := openApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to read .env file: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
