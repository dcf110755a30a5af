package main

import (
	"context"

	"github.com/Hara602/devSentry/internal/analysis"
	"github.com/Hara602/devSentry/internal/auditlog"
	"github.com/Hara602/devSentry/internal/config"
	"github.com/Hara602/devSentry/internal/control"
	"github.com/Hara602/devSentry/internal/model"
	"github.com/Hara602/devSentry/internal/monitor"
	"github.com/Hara602/devSentry/internal/probe"
	"github.com/Hara602/devSentry/internal/sysutil"
	"github.com/Hara602/devSentry/internal/usbdev"
	"go.uber.org/zap"
)

// 初始化核心模块 (依赖注入)
func newMonitor(cfg config.Config) (*monitor.Monitor, error) {
	opts := monitor.Options{
		Processes: &probe.Processes{
			Timeout: cfg.SnapshotTimeout.Duration(),
			WithExe: cfg.InspectExecutables,
		},
		Microphones:        &probe.Microphones{},
		Camera:             &probe.Camera{Index: cfg.CameraIndex, Timeout: cfg.CameraTimeout.Duration()},
		MicrophoneInterval: cfg.MicrophoneInterval.Duration(),
		CameraInterval:     cfg.CameraInterval.Duration(),
		GeneralInterval:    cfg.GeneralInterval.Duration(),
		Logger:             sysutil.Log.Named("monitor"),
	}
	if cfg.InspectExecutables {
		opts.Inspector = analysis.NewExecInspector(sysutil.Log.Named("analysis"))
	}
	return monitor.New(opts)
}

func openControl(cfg config.Config) (*control.Service, *auditlog.Store, error) {
	store, err := auditlog.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	svc, err := control.New(control.Options{
		Platform:  usbdev.New(usbdev.Options{Logger: sysutil.Log.Named("usbdev")}),
		Privilege: control.PrivilegeFunc(sysutil.IsElevated),
		Recorder:  store,
		Logger:    sysutil.Log.Named("control"),
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return svc, store, nil
}

// tuiController 把 monitor、control 和日志库组合成 tui.Controller
type tuiController struct {
	monitor *monitor.Monitor
	control *control.Service
	store   *auditlog.Store
}

func (c *tuiController) StartMonitoring() bool { return c.monitor.Start() }

func (c *tuiController) StopMonitoring() { c.monitor.Stop() }

func (c *tuiController) Monitoring() bool { return c.monitor.Running() }

func (c *tuiController) KnownDevices(cat model.DeviceCategory) int {
	return len(c.monitor.Session().Devices(cat))
}

func (c *tuiController) Enumerate(ctx context.Context) ([]model.DeviceRecord, error) {
	return c.control.Enumerate(ctx, model.USBDevices)
}

func (c *tuiController) Toggle(ctx context.Context, deviceID string, enable bool) error {
	err := c.control.Toggle(ctx, deviceID, enable)
	if err != nil {
		sysutil.Log.Debug("toggle from tui failed", zap.Error(err))
	}
	return err
}

func (c *tuiController) Logs(ctx context.Context) (string, error) {
	return c.store.Text(ctx)
}
