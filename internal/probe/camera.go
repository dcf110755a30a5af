package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Hara602/devSentry/internal/model"
)

const DefaultCameraTimeout = 750 * time.Millisecond

var ErrCameraTimeout = errors.New("camera open timed out")

type openResult struct {
	release func() error
	err     error
}

// Camera 每次探测都打开再释放 index 对应的采集设备
type Camera struct {
	Index   int
	Timeout time.Duration
	// DevPattern 设备路径模板，默认 /dev/video%d
	DevPattern string

	open func(path string) (release func() error, err error)
}

func (c *Camera) ProbeDefaultCamera(ctx context.Context) (string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCameraTimeout
	}
	pattern := c.DevPattern
	if pattern == "" {
		pattern = "/dev/video%d"
	}
	path := fmt.Sprintf(pattern, c.Index)
	open := c.open
	if open == nil {
		open = openCapture
	}

	done := make(chan openResult, 1)
	go func() {
		release, err := open(path)
		done <- openResult{release, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("open %s: %w", path, r.err)
		}
		if err := r.release(); err != nil {
			return "", fmt.Errorf("release %s: %w", path, err)
		}
		return c.name(), nil
	case <-timer.C:
		go reap(done)
		return "", fmt.Errorf("%s: %w", path, ErrCameraTimeout)
	case <-ctx.Done():
		go reap(done)
		return "", ctx.Err()
	}
}

// reap 超时后 open 迟早返回，拿到句柄就释放
func reap(done <-chan openResult) {
	if r := <-done; r.err == nil {
		_ = r.release()
	}
}

func (c *Camera) name() string {
	if c.Index == 0 {
		return model.DefaultCameraName
	}
	return fmt.Sprintf("Camera %d", c.Index)
}
