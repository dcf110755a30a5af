package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/Hara602/devSentry/internal/model"
	"github.com/Hara602/devSentry/internal/monitor"
	"github.com/Hara602/devSentry/internal/sysutil"
	"github.com/Hara602/devSentry/internal/tui"
	"github.com/Hara602/devSentry/internal/watcher"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var plainOutput bool

func init() {
	cmdMonitor.Flags().BoolVar(&plainOutput, "plain", false, "print events to stdout instead of the interactive UI")
	rootCmd.AddCommand(cmdMonitor)
}

var cmdMonitor = &cobra.Command{
	Use:   "monitor",
	Short: "Watch microphone, camera and process activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		// 捕获操作系统信号，优雅退出
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if plainOutput {
			mon, err := newMonitor(cfg)
			if err != nil {
				return fmt.Errorf("monitor init failed: %w", err)
			}
			return runPlain(ctx, mon)
		}

		// 全屏界面下日志写文件
		logDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(logDir, 0o700); err != nil {
			return err
		}
		if err := sysutil.InitLogger(cfg.LogLevel, filepath.Join(logDir, "devsentry.log")); err != nil {
			return err
		}
		mon, err := newMonitor(cfg)
		if err != nil {
			return fmt.Errorf("monitor init failed: %w", err)
		}
		svc, store, err := openControl(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		ctrl := &tuiController{monitor: mon, control: svc, store: store}
		defer ctrl.StopMonitoring()
		if err := tui.Run(ctx, ctrl, usageFeed(mon), hotplugFeed()); err != nil {
			return fmt.Errorf("tui exited with error: %w", err)
		}
		return nil
	},
}

func runPlain(ctx context.Context, mon *monitor.Monitor) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DEVICE TYPE\tDEVICE NAME\tAPPLICATION\tPID")
	w.Flush()

	mon.Start()
	defer mon.Stop()
	sysutil.Log.Info("🛡️ devsentry monitoring started")

	mon.Consume(ctx, cfg.DrainInterval.Duration(), func(ev model.UsageEvent) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", ev.Category, ev.DeviceName, ev.ProcessName, ev.PID)
		w.Flush()
	})
	sysutil.Log.Info("Shutting down...")
	return nil
}

// usageFeed 唯一的消费者，把事件转给 UI
func usageFeed(mon *monitor.Monitor) tui.Feed {
	return func(ctx context.Context, send func(tea.Msg)) {
		mon.Consume(ctx, cfg.DrainInterval.Duration(), func(ev model.UsageEvent) {
			send(tui.UsageMsg{Event: ev})
		})
	}
}

// hotplugFeed USB 插拔后让设备列表自动刷新
func hotplugFeed() tui.Feed {
	return func(ctx context.Context, send func(tea.Msg)) {
		w := watcher.New(sysutil.Log.Named("watcher"))
		changes, err := w.Start(ctx)
		if err != nil {
			sysutil.Log.Warn("hotplug watcher unavailable", zap.Error(err))
			return
		}
		defer w.Stop()
		for change := range changes {
			send(tui.DeviceChangedMsg{Change: change})
		}
	}
}
