package analysis

import (
	"context"
	"strings"
	"sync"

	"github.com/Hara602/devSentry/internal/model"
	"go.uber.org/zap"
)

// DefaultRemovablePrefixes 可移动介质常见挂载点
var DefaultRemovablePrefixes = []string{"/media/", "/run/media/", "/mnt/"}

// ExecInspector 检查首次出现的进程的可执行文件
// 同一路径只检查一次
type ExecInspector struct {
	types     *TypeInspector
	removable []string
	log       *zap.Logger

	mu   sync.Mutex
	seen map[string]*Result
}

func NewExecInspector(log *zap.Logger) *ExecInspector {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExecInspector{
		types:     NewTypeInspector(),
		removable: DefaultRemovablePrefixes,
		log:       log,
		seen:      make(map[string]*Result),
	}
}

// InspectProcess 实现 monitor.ProcessInspector
func (e *ExecInspector) InspectProcess(ctx context.Context, p model.ProcessInfo) {
	if p.Exe == "" {
		return
	}
	log := e.log.With(zap.String("process", p.Name), zap.Int32("pid", p.PID), zap.String("exe", p.Exe))

	if e.fromRemovable(p.Exe) {
		log.Warn("⚠️ Process running from removable media")
	}

	res, err := e.inspect(p.Exe)
	if err != nil {
		log.Debug("executable inspection skipped", zap.Error(err))
		return
	}
	if res.IsMasquerade {
		log.Warn("🚨 Executable masquerade detected",
			zap.String("risk", res.RiskLevel),
			zap.String("real", res.RealExt),
			zap.String("declared", res.DeclaredExt))
	}
}

// Result 返回某个路径缓存的检查结果
func (e *ExecInspector) Result(path string) (*Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.seen[path]
	return r, ok
}

func (e *ExecInspector) inspect(path string) (*Result, error) {
	if r, ok := e.Result(path); ok {
		return r, nil
	}
	r, err := e.types.Inspect(path)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.seen[path] = r
	e.mu.Unlock()
	return r, nil
}

func (e *ExecInspector) fromRemovable(path string) bool {
	for _, prefix := range e.removable {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
