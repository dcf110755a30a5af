package monitor

import (
	"fmt"

	"github.com/Hara602/devSentry/internal/model"
)

// ProbeError 一次采样失败，只记录日志，worker 继续下个周期
type ProbeError struct {
	Category model.DeviceCategory
	Err      error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("%s probe failed: %v", e.Category, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }
