package auditlog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "devsentry.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndReadBack(t *testing.T) {
	s := openTestStore(t)
	fixed := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	if err := s.Record(ctx, zapcore.InfoLevel, "Attempting to disable device: 1-1.2"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(ctx, zapcore.ErrorLevel, "Failed to disable device: 1-1.2"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := s.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if !entries[0].Time.Equal(fixed) || entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("unexpected entries %+v", entries)
	}

	text, err := s.Text(ctx)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 2 {
		t.Fatalf("text has %d lines: %q", len(lines), text)
	}
	if !strings.HasSuffix(lines[0], " - INFO - Attempting to disable device: 1-1.2") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], " - ERROR - Failed to disable device: 1-1.2") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestEmptyStoreText(t *testing.T) {
	s := openTestStore(t)
	text, err := s.Text(context.Background())
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}

func TestExport(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.Record(ctx, zapcore.WarnLevel, "hello"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "Desktop", "audit.log")
	if err := s.Export(ctx, path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), " - WARN - hello") {
		t.Fatalf("exported %q", b)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temporary export file left behind")
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devsentry.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(context.Background(), zapcore.InfoLevel, "persisted"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	entries, err := s2.Entries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Message != "persisted" {
		t.Fatalf("unexpected entries after reopen %+v", entries)
	}
}
