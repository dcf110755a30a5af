// Package watcher 监听 USB 热插拔，供设备列表自动刷新
package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/Hara602/devSentry/internal/model"
	"github.com/Hara602/devSentry/internal/usbdev"
	"go.uber.org/zap"
)

// DeviceWatcher 定义接口
type DeviceWatcher interface {
	Start(ctx context.Context) (<-chan model.DeviceChange, error)
	Stop()
}

func New(log *zap.Logger) DeviceWatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return newWatcher(log)
}

// toChange 只保留 USB 物理设备的 add/remove
func toChange(action string, env map[string]string, now time.Time) (model.DeviceChange, bool) {
	if action != "add" && action != "remove" {
		return model.DeviceChange{}, false
	}
	if env["SUBSYSTEM"] != "usb" || env["DEVTYPE"] != "usb_device" {
		return model.DeviceChange{}, false
	}
	devPath := env["DEVPATH"]
	if devPath == "" {
		return model.DeviceChange{}, false
	}
	return model.DeviceChange{
		Action:    action,
		DeviceID:  filepath.Base(devPath),
		TimeStamp: now,
	}, true
}

// describe 补充新插入设备的信息用于日志
func describe(env map[string]string) model.DeviceRecord {
	root, ok := usbdev.FindUSBRoot("/sys" + env["DEVPATH"])
	if !ok {
		return model.DeviceRecord{DeviceID: filepath.Base(env["DEVPATH"])}
	}
	return usbdev.Describe(root)
}
