//go:build linux

package probe

import "golang.org/x/sys/unix"

// openCapture V4L2 设备被其他进程独占时返回 EBUSY
func openCapture(path string) (func() error, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	return func() error { return unix.Close(fd) }, nil
}
