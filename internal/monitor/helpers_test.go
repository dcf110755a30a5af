package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Hara602/devSentry/internal/model"
)

type fakeProcs struct {
	mu    sync.Mutex
	procs []model.ProcessInfo
	err   error
	calls int
}

func (f *fakeProcs) Snapshot(ctx context.Context) ([]model.ProcessInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.ProcessInfo(nil), f.procs...), nil
}

func (f *fakeProcs) set(procs ...model.ProcessInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.procs = procs
}

type fakeMics struct {
	devices []model.InputDevice
	err     error
}

func (f *fakeMics) ListInputDevices(ctx context.Context) ([]model.InputDevice, error) {
	return f.devices, f.err
}

type fakeCamera struct {
	mu    sync.Mutex
	name  string
	err   error
	calls int
}

func (f *fakeCamera) ProbeDefaultCamera(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.name, f.err
}

type recordingInspector struct {
	mu   sync.Mutex
	seen []string
}

func (r *recordingInspector) InspectProcess(ctx context.Context, p model.ProcessInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, p.Name)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func newTestMonitor(t *testing.T, opts Options) *Monitor {
	t.Helper()
	m, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(m.Stop)
	return m
}
