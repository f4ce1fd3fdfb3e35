// Image Upscaler - batch upscale and enhancement from the command line
// License: MIT

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"image-upscaler/internal/config"
)

const (
	AppName    = "Image Upscaler"
	AppVersion = "1.0.0"
)

// app carries what every command needs once flags are parsed
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cobra.CheckErr(newRootCmd().ExecuteContext(ctx))
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "upscaler",
		Short:         "Batch image upscaler and enhancer",
		Version:       AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}

			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Debug = true
			}

			a.cfg = cfg
			a.logger = initLogger(cfg.Debug)
			a.logger.WithFields(logrus.Fields{
				"version":    AppVersion,
				"debug_mode": cfg.Debug,
				"command":    cmd.Name(),
			}).Debug("Starting " + AppName)
			return nil
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode with verbose logging")
	rootCmd.PersistentFlags().String("env-file", ".env", "Load environment variables from this file if it exists")

	rootCmd.AddCommand(
		newProcessCmd(a),
		newInfoCmd(a),
		newPresetsCmd(),
		newParamsCmd(),
		newPreviewCmd(a),
	)

	return rootCmd
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
