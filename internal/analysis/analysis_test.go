package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Hara602/devSentry/internal/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// ELF64 头部，filetype 要求至少 53 字节
var elfHeader = append([]byte{0x7f, 'E', 'L', 'F', 2, 1, 1}, make([]byte, 57)...)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestClassifyUSB(t *testing.T) {
	tests := []struct {
		name       string
		classes    []string
		want       string
		suspicious bool
	}{
		{"keyboard", []string{"03"}, KindHID, false},
		{"flash drive", []string{"08"}, KindStorage, false},
		{"webcam with mic", []string{"0e", "0E", "01"}, KindVideo, false},
		{"headset", []string{"01", "01", "03"}, KindAudio, false},
		{"rubber ducky", []string{"08", "03"}, KindBadUSB, true},
		{"hub", []string{"09"}, KindOther, false},
		{"no interfaces", nil, KindOther, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := t.TempDir()
			writeFile(t, dev, "idVendor", []byte("1234\n"))
			for i, c := range tt.classes {
				writeFile(t, dev, filepath.Join("1-1:1."+string(rune('0'+i)), "bInterfaceClass"), []byte(c+"\n"))
			}
			kind, suspicious := ClassifyUSB(dev)
			if kind != tt.want || suspicious != tt.suspicious {
				t.Fatalf("ClassifyUSB = %q, %v; want %q, %v", kind, suspicious, tt.want, tt.suspicious)
			}
		})
	}
}

func TestClassifyUSBMissingDir(t *testing.T) {
	if kind, bad := ClassifyUSB(filepath.Join(t.TempDir(), "gone")); kind != KindOther || bad {
		t.Fatalf("got %q, %v", kind, bad)
	}
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	ti := NewTypeInspector()

	tests := []struct {
		name       string
		file       string
		data       []byte
		masquerade bool
		risk       string
	}{
		{"no extension", "sentry", elfHeader, false, RiskSafe},
		{"elf as pdf", "invoice.pdf", elfHeader, true, RiskHigh},
		{"shared object", "libfoo.so", elfHeader, false, RiskSafe},
		{"plain text", "notes.txt", []byte("hello world\n"), false, RiskSafe},
		{"empty", "empty.pdf", nil, false, RiskSafe},
		{"real pdf", "doc.pdf", []byte("%PDF-1.7\n"), false, RiskSafe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeFile(t, dir, tt.file, tt.data)
			res, err := ti.Inspect(p)
			if err != nil {
				t.Fatalf("Inspect: %v", err)
			}
			if res.IsMasquerade != tt.masquerade || res.RiskLevel != tt.risk {
				t.Fatalf("Inspect = %+v", res)
			}
		})
	}
}

func TestInspectMissingFile(t *testing.T) {
	if _, err := NewTypeInspector().Inspect(filepath.Join(t.TempDir(), "x.bin")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestExecInspectorLogsMasquerade(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ins := NewExecInspector(zap.New(core))
	exe := writeFile(t, t.TempDir(), "report.pdf", elfHeader)

	p := model.ProcessInfo{PID: 42, Name: "report.pdf", Exe: exe}
	ins.InspectProcess(context.Background(), p)
	ins.InspectProcess(context.Background(), p)

	if n := logs.FilterMessage("🚨 Executable masquerade detected").Len(); n != 2 {
		t.Fatalf("masquerade warnings = %d, want 2", n)
	}
	if res, ok := ins.Result(exe); !ok || res.RiskLevel != RiskHigh {
		t.Fatalf("cached result = %+v, %v", res, ok)
	}
}

func TestExecInspectorRemovableMedia(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ins := NewExecInspector(zap.New(core))
	dir := t.TempDir()
	ins.removable = []string{dir + "/"}
	exe := writeFile(t, dir, "payload", elfHeader)

	ins.InspectProcess(context.Background(), model.ProcessInfo{PID: 7, Name: "payload", Exe: exe})
	ins.InspectProcess(context.Background(), model.ProcessInfo{PID: 8, Name: "kworker"})

	if n := logs.FilterMessage("⚠️ Process running from removable media").Len(); n != 1 {
		t.Fatalf("removable warnings = %d, want 1", n)
	}
}
