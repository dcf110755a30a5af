//go:build !unix

package sysutil

func IsElevated() bool { return false }
