package control

import (
	"errors"
	"fmt"

	"github.com/Hara602/devSentry/internal/model"
)

var (
	// ErrPermissionDenied 调用方没有提权，设备状态不会被改动
	ErrPermissionDenied = errors.New("administrator privileges required")
	// ErrDeviceNotFound 不在上一次枚举结果中，调用方应重新枚举
	ErrDeviceNotFound = errors.New("device not found in last enumeration")
	// ErrPlatformFailure 设备管理设施调用失败，具体原因见 PlatformError.Err
	ErrPlatformFailure = errors.New("device management failure")
)

// PlatformError 包装底层设备管理设施的错误
type PlatformError struct {
	Op       string // "query", "Enable", "Disable"
	DeviceID string
	Err      error
}

func (e *PlatformError) Error() string {
	if e.DeviceID == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Op, e.DeviceID, e.Err)
}

func (e *PlatformError) Unwrap() error { return e.Err }

func (e *PlatformError) Is(target error) bool { return target == ErrPlatformFailure }

func actionError(action model.DeviceAction, id string, err error) error {
	return &PlatformError{Op: string(action), DeviceID: id, Err: err}
}
