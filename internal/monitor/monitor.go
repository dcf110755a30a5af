package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Hara602/devSentry/internal/model"
	"go.uber.org/zap"
)

const (
	DefaultMicrophoneInterval = 2 * time.Second
	DefaultCameraInterval     = 1 * time.Second
	DefaultGeneralInterval    = 5 * time.Second
)

// ProcessLister 进程快照提供者，已退出的进程直接丢弃
type ProcessLister interface {
	Snapshot(ctx context.Context) ([]model.ProcessInfo, error)
}

// InputLister 音频输入端点枚举
type InputLister interface {
	ListInputDevices(ctx context.Context) ([]model.InputDevice, error)
}

// CameraProber 打开再释放默认摄像头，打开失败返回 error
type CameraProber interface {
	ProbeDefaultCamera(ctx context.Context) (string, error)
}

// ProcessInspector 对首次出现的 General 进程做额外检查
type ProcessInspector interface {
	InspectProcess(ctx context.Context, p model.ProcessInfo)
}

type Options struct {
	Processes   ProcessLister // 必填
	Microphones InputLister   // 为 nil 时不启动 Microphone worker
	Camera      CameraProber  // 为 nil 时不启动 Camera worker
	Inspector   ProcessInspector

	MicrophoneInterval time.Duration
	CameraInterval     time.Duration
	GeneralInterval    time.Duration

	Logger *zap.Logger
}

// Monitor 生命周期控制器：统一启动/停止三个 worker
// Session 和 Queue 跟随 Monitor 的整个生命周期，Stop/Start 不会清空
type Monitor struct {
	opts    Options
	session *Session
	queue   *Queue
	log     *zap.Logger

	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
}

func New(opts Options) (*Monitor, error) {
	if opts.Processes == nil {
		return nil, errors.New("monitor: process lister is required")
	}
	if opts.MicrophoneInterval <= 0 {
		opts.MicrophoneInterval = DefaultMicrophoneInterval
	}
	if opts.CameraInterval <= 0 {
		opts.CameraInterval = DefaultCameraInterval
	}
	if opts.GeneralInterval <= 0 {
		opts.GeneralInterval = DefaultGeneralInterval
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{
		opts:    opts,
		session: NewSession(),
		queue:   NewQueue(),
		log:     log,
	}, nil
}

// Start 已在运行时返回 false，不会重复启动 worker
func (m *Monitor) Start() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running.Load() {
		return false
	}
	// 每个会话一个独立的 ctx，旧 worker 只看自己的取消信号
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.running.Store(true)

	workers := m.workers()
	for _, w := range workers {
		go w.run(ctx)
	}
	m.log.Info("🎙️ Monitoring started", zap.Int("workers", len(workers)))
	return true
}

// Stop 只发出信号，不等待 worker 退出
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running.Load() {
		return
	}
	m.cancel()
	m.cancel = nil
	m.running.Store(false)
	m.log.Info("Monitoring stopped")
}

func (m *Monitor) Running() bool { return m.running.Load() }

func (m *Monitor) Session() *Session { return m.session }

func (m *Monitor) Queue() *Queue { return m.queue }

func (m *Monitor) workers() []*worker {
	var ws []*worker
	if m.opts.Microphones != nil {
		ws = append(ws, m.newWorker(model.Microphone, m.opts.MicrophoneInterval, m.sampleMicrophones))
	} else {
		m.log.Warn("no microphone probe configured, skipping worker")
	}
	if m.opts.Camera != nil {
		ws = append(ws, m.newWorker(model.Camera, m.opts.CameraInterval, m.sampleCamera))
	} else {
		m.log.Warn("no camera probe configured, skipping worker")
	}
	ws = append(ws, m.newWorker(model.General, m.opts.GeneralInterval, sampleGeneral))
	return ws
}

func (m *Monitor) newWorker(cat model.DeviceCategory, interval time.Duration, sample sampler) *worker {
	w := &worker{
		category: cat,
		interval: interval,
		sample:   sample,
		procs:    m.opts.Processes,
		session:  m.session,
		queue:    m.queue,
		log:      m.log.With(zap.String("category", cat.String())),
	}
	if cat == model.General {
		w.inspect = m.opts.Inspector
	}
	return w
}

func (m *Monitor) sampleMicrophones(ctx context.Context) ([]string, error) {
	devices, err := m.opts.Microphones.ListInputDevices(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, d := range devices {
		if d.HasInput() {
			names = append(names, d.Name)
		}
	}
	return names, nil
}

func (m *Monitor) sampleCamera(ctx context.Context) ([]string, error) {
	name, err := m.opts.Camera.ProbeDefaultCamera(ctx)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = model.DefaultCameraName
	}
	return []string{name}, nil
}

func sampleGeneral(context.Context) ([]string, error) {
	return []string{model.NoDevice}, nil
}
