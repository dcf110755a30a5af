//go:build linux

package usbdev

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Hara602/devSentry/internal/model"
	"github.com/pilebones/go-udev/crawler"
	"github.com/pilebones/go-udev/netlink"
)

// Matcher 把 DeviceFilter 翻译成 udev 规则
func Matcher(filter model.DeviceFilter) netlink.Matcher {
	env := make(map[string]string)
	if filter.Subsystem != "" {
		env["SUBSYSTEM"] = "^" + filter.Subsystem + "$"
	}
	if filter.DevType != "" {
		env["DEVTYPE"] = "^" + filter.DevType + "$"
	}
	return &netlink.RuleDefinitions{Rules: []netlink.RuleDefinition{{Env: env}}}
}

// udevCrawl 扫描 /sys/devices 下已存在的设备
func udevCrawl(ctx context.Context, filter model.DeviceFilter) ([]string, error) {
	queue := make(chan crawler.Device)
	errs := make(chan error, 8)
	quit := crawler.ExistingDevices(queue, errs, Matcher(filter))

	var (
		dirs    []string
		lastErr error
	)
	for {
		select {
		case dev, ok := <-queue:
			if !ok {
				// crawler 先写 errs 再关闭 queue，两者可能同时就绪
				for drained := false; !drained; {
					select {
					case err := <-errs:
						lastErr = err
					default:
						drained = true
					}
				}
				if lastErr != nil {
					return dirs, fmt.Errorf("udev crawl: %w", lastErr)
				}
				return dirs, nil
			}
			dir := dev.KObj
			if !filepath.IsAbs(dir) {
				dir = filepath.Join("/sys", dir)
			}
			dirs = append(dirs, dir)
		case err := <-errs:
			lastErr = err
		case <-ctx.Done():
			close(quit)
			// 让 crawler 退出
			go func() {
				for range queue {
				}
			}()
			return nil, ctx.Err()
		}
	}
}
