package control

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Hara602/devSentry/internal/model"
	"go.uber.org/zap/zapcore"
)

type invocation struct {
	id     string
	action model.DeviceAction
}

type fakePlatform struct {
	devices   []model.DeviceRecord
	queryErr  error
	invokeErr error
	invoked   []invocation
}

func (f *fakePlatform) Query(ctx context.Context, filter model.DeviceFilter) ([]model.DeviceRecord, error) {
	return f.devices, f.queryErr
}

func (f *fakePlatform) Invoke(ctx context.Context, id string, action model.DeviceAction) error {
	f.invoked = append(f.invoked, invocation{id, action})
	return f.invokeErr
}

type memRecorder struct {
	mu      sync.Mutex
	entries []string
}

func (r *memRecorder) Record(ctx context.Context, level zapcore.Level, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, level.CapitalString()+" "+msg)
	return nil
}

func newService(t *testing.T, p *fakePlatform, elevated bool, rec Recorder) *Service {
	t.Helper()
	s, err := New(Options{
		Platform:  p,
		Privilege: PrivilegeFunc(func() bool { return elevated }),
		Recorder:  rec,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

var usbKeyboard = model.DeviceRecord{DisplayName: "USB Keyboard", DeviceID: `USB\VID_1234`, Kind: "hid"}

func TestNewValidatesCollaborators(t *testing.T) {
	if _, err := New(Options{Privilege: PrivilegeFunc(func() bool { return true })}); err == nil {
		t.Fatal("expected error without platform")
	}
	if _, err := New(Options{Platform: &fakePlatform{}}); err == nil {
		t.Fatal("expected error without privilege checker")
	}
}

func TestEnumerateEmptyIsNotError(t *testing.T) {
	s := newService(t, &fakePlatform{}, true, nil)
	if got := s.Devices(); got == nil || len(got) != 0 {
		t.Fatalf("Devices before enumeration = %#v, want empty non-nil", got)
	}
	devs, err := s.Enumerate(context.Background(), model.USBDevices)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if devs == nil || len(devs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", devs)
	}
	if got := s.Devices(); got == nil || len(got) != 0 {
		t.Fatalf("Devices after empty enumeration = %#v", got)
	}
}

func TestEnumerateQueryFailure(t *testing.T) {
	s := newService(t, &fakePlatform{queryErr: errors.New("sysfs unavailable")}, true, nil)
	devs, err := s.Enumerate(context.Background(), model.USBDevices)
	if !errors.Is(err, ErrPlatformFailure) {
		t.Fatalf("expected platform failure, got %v", err)
	}
	if len(devs) != 0 {
		t.Fatalf("expected no devices, got %v", devs)
	}
}

func TestEnumerateNameFilterAndResolve(t *testing.T) {
	p := &fakePlatform{devices: []model.DeviceRecord{
		usbKeyboard,
		{DisplayName: "HD Webcam", DeviceID: "1-2", Kind: "video"},
	}}
	s := newService(t, p, true, nil)
	devs, err := s.Enumerate(context.Background(), model.DeviceFilter{Name: "webcam"})
	if err != nil {
		t.Fatal(err)
	}
	if len(devs) != 1 || devs[0].DeviceID != "1-2" {
		t.Fatalf("filtered devices = %+v", devs)
	}
	if _, ok := s.Resolve("USB Keyboard"); ok {
		t.Fatal("filtered-out device must not be resolvable")
	}
	if id, ok := s.Resolve("HD Webcam"); !ok || id != "1-2" {
		t.Fatalf("Resolve = %q, %v", id, ok)
	}
}

func TestToggleWithoutElevation(t *testing.T) {
	p := &fakePlatform{devices: []model.DeviceRecord{usbKeyboard}}
	rec := &memRecorder{}
	s := newService(t, p, false, rec)
	if _, err := s.Enumerate(context.Background(), model.USBDevices); err != nil {
		t.Fatal(err)
	}

	for _, enable := range []bool{true, false} {
		err := s.Toggle(context.Background(), usbKeyboard.DeviceID, enable)
		if !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("expected ErrPermissionDenied, got %v", err)
		}
	}
	// 未知设备同样先报权限错误
	if err := s.Toggle(context.Background(), "nope", false); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if len(p.invoked) != 0 {
		t.Fatalf("platform invoked without elevation: %+v", p.invoked)
	}
	if len(rec.entries) != 3 || !strings.HasPrefix(rec.entries[0], "ERROR ") {
		t.Fatalf("recorded %v", rec.entries)
	}
}

func TestToggleSuccessThenUnknown(t *testing.T) {
	p := &fakePlatform{devices: []model.DeviceRecord{usbKeyboard}}
	rec := &memRecorder{}
	s := newService(t, p, true, rec)
	ctx := context.Background()
	if _, err := s.Enumerate(ctx, model.USBDevices); err != nil {
		t.Fatal(err)
	}

	if err := s.Toggle(ctx, `USB\VID_1234`, false); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if len(p.invoked) != 1 || p.invoked[0] != (invocation{`USB\VID_1234`, model.ActionDisable}) {
		t.Fatalf("invoked %+v", p.invoked)
	}
	want := []string{
		`INFO Attempting to disable device: USB\VID_1234`,
		`INFO Successfully disabled device: USB\VID_1234`,
	}
	if strings.Join(rec.entries, "|") != strings.Join(want, "|") {
		t.Fatalf("recorded %v, want %v", rec.entries, want)
	}

	err := s.Toggle(ctx, `USB\VID_9999`, true)
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
	if len(p.invoked) != 1 {
		t.Fatal("unknown device must not reach the platform")
	}
}

func TestTogglePlatformFailureWrapsCause(t *testing.T) {
	cause := errors.New("write authorized: permission denied")
	p := &fakePlatform{devices: []model.DeviceRecord{usbKeyboard}, invokeErr: cause}
	rec := &memRecorder{}
	s := newService(t, p, true, rec)
	ctx := context.Background()
	if _, err := s.Enumerate(ctx, model.USBDevices); err != nil {
		t.Fatal(err)
	}

	err := s.Toggle(ctx, usbKeyboard.DeviceID, true)
	if !errors.Is(err, ErrPlatformFailure) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped platform failure, got %v", err)
	}
	var pe *PlatformError
	if !errors.As(err, &pe) || pe.Op != "Enable" || pe.DeviceID != usbKeyboard.DeviceID {
		t.Fatalf("unexpected PlatformError %+v", pe)
	}
	last := rec.entries[len(rec.entries)-1]
	if !strings.HasPrefix(last, "ERROR Failed to enable device") {
		t.Fatalf("last record %q", last)
	}
}

func TestToggleByName(t *testing.T) {
	p := &fakePlatform{devices: []model.DeviceRecord{usbKeyboard}}
	s := newService(t, p, true, nil)
	ctx := context.Background()
	if _, err := s.Enumerate(ctx, model.USBDevices); err != nil {
		t.Fatal(err)
	}
	if err := s.ToggleByName(ctx, "USB Keyboard", true); err != nil {
		t.Fatalf("by name: %v", err)
	}
	if err := s.ToggleByName(ctx, usbKeyboard.DeviceID, false); err != nil {
		t.Fatalf("by id: %v", err)
	}
	if err := s.ToggleByName(ctx, "Select a device", false); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
	if len(p.invoked) != 2 {
		t.Fatalf("invoked %d times, want 2", len(p.invoked))
	}
}

func TestReEnumerationDropsStaleIDs(t *testing.T) {
	p := &fakePlatform{devices: []model.DeviceRecord{usbKeyboard}}
	s := newService(t, p, true, nil)
	ctx := context.Background()
	if _, err := s.Enumerate(ctx, model.USBDevices); err != nil {
		t.Fatal(err)
	}
	p.devices = nil
	if _, err := s.Enumerate(ctx, model.USBDevices); err != nil {
		t.Fatal(err)
	}
	if err := s.Toggle(ctx, usbKeyboard.DeviceID, false); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected stale id to be rejected, got %v", err)
	}
	if len(s.Devices()) != 0 {
		t.Fatal("Devices should reflect last enumeration")
	}
}
