package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/Hara602/devSentry/internal/model"
	"go.uber.org/zap"
)

// sampler 返回本周期观察到的设备名，General 固定返回 "N/A"
type sampler func(ctx context.Context) ([]string, error)

type worker struct {
	category model.DeviceCategory
	interval time.Duration
	sample   sampler
	procs    ProcessLister
	session  *Session
	queue    *Queue
	inspect  ProcessInspector
	log      *zap.Logger
}

func (w *worker) run(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		w.poll(ctx)
		timer.Reset(w.interval)
	}
}

// poll 执行一个周期，返回本周期推入队列的事件数
func (w *worker) poll(ctx context.Context) (emitted int) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("worker cycle panicked", zap.Any("panic", r))
		}
	}()

	devices, err := w.sample(ctx)
	if err != nil {
		// Stop 导致的取消不算探测失败
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return 0
		}
		w.log.Warn("probe failed",
			zap.String("kind", "ProbeFailure"),
			zap.Error(&ProbeError{Category: w.category, Err: err}))
		return 0
	}
	if len(devices) == 0 {
		return 0
	}

	procs, err := w.procs.Snapshot(ctx)
	if err != nil {
		w.log.Error("process snapshot failed", zap.Error(err))
		return 0
	}

	for _, dev := range devices {
		if dev != model.NoDevice && w.session.MarkDevice(w.category, dev) {
			w.log.Info("🔍 Device observed", zap.String("device", dev))
		}
		// 同一进程名在该类别只上报一次，与具体设备无关
		for _, p := range procs {
			if !w.session.Claim(w.category, p.Name) {
				continue
			}
			w.queue.Push(model.UsageEvent{
				Category:    w.category,
				DeviceName:  dev,
				ProcessName: p.Name,
				PID:         p.PID,
			})
			emitted++
			if w.inspect != nil {
				w.inspect.InspectProcess(ctx, p)
			}
		}
	}
	if emitted > 0 {
		w.log.Debug("new usage events", zap.Int("count", emitted))
	}
	return emitted
}
