package main

import (
	"os"

	"github.com/RishiKendai/overlap/internal/logger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "overlapctl",
	Short: "Offline tools for the overlap checker",
	Long: `overlapctl scores candidate texts against a corpus file without the
service, and benchmarks the substring search algorithms.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logLevel, logFormat)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format (json, console)")
	rootCmd.AddCommand(checkCmd, benchCmd)
}
