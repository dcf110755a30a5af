package main

import (
	"path/filepath"
	"testing"
)

func TestExportPath(t *testing.T) {
	dir := filepath.Join("home", "me", "Desktop")
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"usb-audit", filepath.Join(dir, "usb-audit.log"), false},
		{"usb-audit.log", filepath.Join(dir, "usb-audit.log"), false},
		{"  spaced  ", filepath.Join(dir, "spaced.log"), false},
		{"", "", true},
		{"../etc/passwd", "", true},
		{"a/b", "", true},
		{"..", "", true},
	}
	for _, tt := range tests {
		got, err := exportPath(dir, tt.name)
		if (err != nil) != tt.wantErr {
			t.Fatalf("exportPath(%q) err = %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("exportPath(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"monitor"},
		{"devices", "list"},
		{"devices", "enable"},
		{"devices", "disable"},
		{"logs", "view"},
		{"logs", "export"},
	} {
		cmd, _, err := rootCmd.Find(path)
		if err != nil || cmd == rootCmd {
			t.Fatalf("command %v not registered: %v", path, err)
		}
	}
	if rootCmd.PersistentFlags().Lookup("config") == nil || cmdMonitor.Flags().Lookup("plain") == nil {
		t.Fatal("expected --config and --plain flags")
	}
}
