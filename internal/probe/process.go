package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/Hara602/devSentry/internal/model"
	"github.com/shirou/gopsutil/v4/process"
)

const DefaultSnapshotTimeout = 3 * time.Second

// Processes 基于 gopsutil 的进程快照
type Processes struct {
	Timeout time.Duration
	// WithExe 同时读取可执行文件路径 (给 analysis 用)
	WithExe bool
}

func (p *Processes) Snapshot(ctx context.Context) ([]model.ProcessInfo, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultSnapshotTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("list processes: %w", ctxErr)
		}
		return nil, err
	}

	out := make([]model.ProcessInfo, 0, len(procs))
	for _, proc := range procs {
		// 列举和读取之间进程可能已经退出，直接丢弃
		name, err := proc.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		info := model.ProcessInfo{PID: proc.Pid, Name: name}
		if p.WithExe {
			if exe, err := proc.ExeWithContext(ctx); err == nil {
				info.Exe = exe
			}
		}
		out = append(out, info)
	}
	// 超时后剩余进程都会读失败，不能当作已退出处理
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("process snapshot truncated: %w", err)
	}
	return out, nil
}
