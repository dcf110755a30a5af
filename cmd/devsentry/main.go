package main

import (
	"os"

	"github.com/Hara602/devSentry/internal/config"
	"github.com/Hara602/devSentry/internal/sysutil"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "devsentry [command]",
	Short: "devsentry: capture device usage monitor and USB device control",
	Long: `devsentry reports which processes use the microphone and camera, keeps a first-seen
audit trail of running processes, and enables or disables USB devices.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		if err := sysutil.InitLogger(loaded.LogLevel); err != nil {
			return err
		}
		for _, w := range loaded.Warnings {
			sysutil.LogSugar.Warn(w)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("DEVSENTRY_CONFIG"), "path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func main() {
	err := rootCmd.Execute()
	_ = sysutil.Log.Sync()
	if err != nil {
		os.Exit(1)
	}
}
