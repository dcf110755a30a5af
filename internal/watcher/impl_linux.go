//go:build linux

package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/Hara602/devSentry/internal/model"
	"github.com/pilebones/go-udev/netlink"
	"go.uber.org/zap"
)

type linuxWatcher struct {
	events chan model.DeviceChange
	stop   chan struct{}
	once   sync.Once
	log    *zap.Logger
}

func newWatcher(log *zap.Logger) DeviceWatcher {
	return &linuxWatcher{
		events: make(chan model.DeviceChange, 10),
		stop:   make(chan struct{}),
		log:    log,
	}
}

func (w *linuxWatcher) Start(ctx context.Context) (<-chan model.DeviceChange, error) {
	// 连接 NETLINK_KOBJECT_UEVENT
	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		return nil, err
	}
	queue := make(chan netlink.UEvent)
	errChan := make(chan error)

	add, remove := "add", "remove"
	matcher := &netlink.RuleDefinitions{Rules: []netlink.RuleDefinition{
		{Action: &add, Env: map[string]string{"SUBSYSTEM": "^usb$", "DEVTYPE": "^usb_device$"}},
		{Action: &remove, Env: map[string]string{"SUBSYSTEM": "^usb$", "DEVTYPE": "^usb_device$"}},
	}}
	quit := conn.Monitor(queue, errChan, matcher)

	go func() {
		defer conn.Close()
		defer close(w.events)
		for {
			select {
			case <-ctx.Done():
				close(quit)
				return
			case <-w.stop:
				close(quit)
				return
			case err := <-errChan:
				// 忽略底层网络错误，继续监听
				w.log.Debug("uevent error", zap.Error(err))
			case uevent := <-queue:
				w.handle(ctx, uevent)
			}
		}
	}()
	return w.events, nil
}

func (w *linuxWatcher) Stop() {
	w.once.Do(func() { close(w.stop) })
}

func (w *linuxWatcher) handle(ctx context.Context, uevent netlink.UEvent) {
	change, ok := toChange(string(uevent.Action), uevent.Env, time.Now())
	if !ok {
		return
	}
	if change.Action == "add" {
		rec := describe(uevent.Env)
		w.log.Info("✅ USB Connected",
			zap.String("device_id", change.DeviceID),
			zap.String("vid", rec.VendorID),
			zap.String("pid", rec.ProductID),
			zap.String("type", rec.Kind))
	} else {
		w.log.Info("❌ USB Removed", zap.String("device_id", change.DeviceID))
	}
	select {
	case w.events <- change:
	case <-ctx.Done():
	case <-w.stop:
	}
}
