package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Hara602/devSentry/internal/auditlog"
	"github.com/spf13/cobra"
)

func init() {
	cmdLogs.AddCommand(cmdLogsView, cmdLogsExport)
	rootCmd.AddCommand(cmdLogs)
}

var cmdLogs = &cobra.Command{
	Use:   "logs",
	Short: "View or export the device control log",
}

var cmdLogsView = &cobra.Command{
	Use:   "view",
	Short: "Print the device control log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := auditlog.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		text, err := store.Text(cmd.Context())
		if err != nil {
			return err
		}
		if text == "" {
			fmt.Fprintln(os.Stdout, "No logs available yet.")
			return nil
		}
		fmt.Fprint(os.Stdout, text)
		return nil
	},
}

var cmdLogsExport = &cobra.Command{
	Use:   "export NAME",
	Short: "Save the device control log to <export_dir>/NAME.log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := exportPath(cfg.ExportDir, args[0])
		if err != nil {
			return err
		}
		store, err := auditlog.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Export(cmd.Context(), path); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Log saved to %s\n", path)
		return nil
	},
}

// exportPath NAME 只能是文件名
func exportPath(dir, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", errors.New("please enter a valid file name")
	}
	if !strings.HasSuffix(name, ".log") {
		name += ".log"
	}
	return filepath.Join(dir, name), nil
}
