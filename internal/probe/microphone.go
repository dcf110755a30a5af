package probe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Hara602/devSentry/internal/model"
	"github.com/Hara602/devSentry/internal/sysutil"
)

const DefaultPCMPath = "/proc/asound/pcm"

// Microphones 通过 ALSA 的 /proc/asound/pcm 枚举输入端点
// 行格式: "00-00: ALC3246 Analog : ALC3246 Analog : playback 1 : capture 1"
type Microphones struct {
	Path string
}

func (m *Microphones) ListInputDevices(ctx context.Context) ([]model.InputDevice, error) {
	path := m.Path
	if path == "" {
		path = DefaultPCMPath
	}
	var devices []model.InputDevice
	err := sysutil.ScanLines(path, func(line string) bool {
		if ctx.Err() != nil {
			return false
		}
		if dev, ok := parsePCMLine(line); ok {
			devices = append(devices, dev)
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return devices, nil
}

func parsePCMLine(line string) (model.InputDevice, bool) {
	fields := strings.Split(line, ":")
	if len(fields) < 3 {
		return model.InputDevice{}, false
	}
	// "00-00" -> hw:0,0
	card, dev, ok := strings.Cut(strings.TrimSpace(fields[0]), "-")
	if !ok {
		return model.InputDevice{}, false
	}
	cardN, err1 := strconv.Atoi(card)
	devN, err2 := strconv.Atoi(dev)
	if err1 != nil || err2 != nil {
		return model.InputDevice{}, false
	}

	d := model.InputDevice{
		Name: fmt.Sprintf("%s (hw:%d,%d)", strings.TrimSpace(fields[1]), cardN, devN),
	}
	for _, f := range fields[3:] {
		kind, count, ok := strings.Cut(strings.TrimSpace(f), " ")
		if !ok || kind != "capture" {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(count)); err == nil {
			d.InputChannels = n
		}
	}
	return d, true
}
