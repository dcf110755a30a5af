//go:build unix

package sysutil

import "golang.org/x/sys/unix"

// IsElevated 写 sysfs authorized 需要 root
func IsElevated() bool {
	return unix.Geteuid() == 0
}
