// Package usbdev 通过 udev 枚举 USB 物理设备，通过 sysfs authorized 属性启用/禁用设备
package usbdev

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/Hara602/devSentry/internal/analysis"
	"github.com/Hara602/devSentry/internal/model"
	"github.com/Hara602/devSentry/internal/sysutil"
	"go.uber.org/zap"
)

const DefaultDevicesDir = "/sys/bus/usb/devices"

// ErrInvalidDeviceID device_id 不是合法的 USB 总线 id
var ErrInvalidDeviceID = errors.New("invalid usb bus id")

// 1-1, 1-1.2.3, usb1
var busIDPattern = regexp.MustCompile(`^(usb[0-9]+|[0-9]+-[0-9]+(\.[0-9]+)*)$`)

// crawlFunc 返回匹配 filter 的设备 sysfs 目录
type crawlFunc func(ctx context.Context, filter model.DeviceFilter) ([]string, error)

type Options struct {
	DevicesDir string
	Logger     *zap.Logger
}

// Manager 实现 control.Platform
type Manager struct {
	devicesDir string
	crawl      crawlFunc
	log        *zap.Logger
}

func New(opts Options) *Manager {
	if opts.DevicesDir == "" {
		opts.DevicesDir = DefaultDevicesDir
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{devicesDir: opts.DevicesDir, crawl: udevCrawl, log: log}
}

// Query 枚举匹配 filter 的设备，按 device_id 排序
func (m *Manager) Query(ctx context.Context, filter model.DeviceFilter) ([]model.DeviceRecord, error) {
	dirs, err := m.crawl(ctx, filter)
	if err != nil {
		return nil, err
	}
	records := make([]model.DeviceRecord, 0, len(dirs))
	for _, dir := range dirs {
		rec := Describe(dir)
		if rec.Kind == analysis.KindBadUSB {
			m.log.Warn("🚨 POTENTIAL BADUSB DETECTED",
				zap.String("device_id", rec.DeviceID),
				zap.String("vid", rec.VendorID),
				zap.String("pid", rec.ProductID))
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].DeviceID < records[j].DeviceID })
	return records, nil
}

// Invoke 写 authorized 属性：1 启用，0 物理层级禁用
func (m *Manager) Invoke(ctx context.Context, deviceID string, action model.DeviceAction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !busIDPattern.MatchString(deviceID) {
		return fmt.Errorf("%w: %q", ErrInvalidDeviceID, deviceID)
	}
	value := "0"
	if action == model.ActionEnable {
		value = "1"
	}
	// 路径: /sys/bus/usb/devices/1-1.2/authorized
	path := filepath.Join(m.devicesDir, deviceID, "authorized")
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("device %s: %w", deviceID, err)
	}
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		return fmt.Errorf("%s failed: %w", action, err)
	}
	m.log.Info("authorized attribute written",
		zap.String("device_id", deviceID),
		zap.String("value", value))
	return nil
}

// Describe 从 USB 设备 sysfs 目录读取属性组装 DeviceRecord
// 显示名形如 "Product [vid:pid] (1-1.2)"
func Describe(dir string) model.DeviceRecord {
	busID := filepath.Base(dir)
	vid := sysutil.ReadAttr(filepath.Join(dir, "idVendor"))
	pid := sysutil.ReadAttr(filepath.Join(dir, "idProduct"))

	name := sysutil.ReadAttr(filepath.Join(dir, "product"))
	if name == "unknown" {
		name = sysutil.ReadAttr(filepath.Join(dir, "manufacturer"))
	}
	if name == "unknown" {
		name = "USB Device"
	}

	kind, _ := analysis.ClassifyUSB(dir)
	return model.DeviceRecord{
		DisplayName: fmt.Sprintf("%s [%s:%s] (%s)", name, vid, pid, busID),
		DeviceID:    busID,
		VendorID:    vid,
		ProductID:   pid,
		Kind:        kind,
	}
}

// FindUSBRoot 向上查找包含 idVendor 的目录（即 USB Device 根目录）
func FindUSBRoot(path string) (string, bool) {
	dir := path
	// 向上回溯最多 10 层
	for i := 0; i < 10; i++ {
		if _, err := os.Stat(filepath.Join(dir, "idVendor")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir || parent == "." {
			break
		}
		dir = parent
	}
	return path, false
}
