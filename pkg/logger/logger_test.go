package logger

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerBasic(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil")
	}

	ctx := context.Background()
	logger.Info(ctx, "test message", String("k", "v"))
	logger.Warn(ctx, "test warning", Int("n", 3))
	logger.Error(ctx, "test error", Error(errors.New("boom")))
}

func TestLoggerNamed(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	namedLogger := Named("test")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}

	ctx := context.Background()
	namedLogger.Info(ctx, "test message")
}

func TestLoggerRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchrank.log")

	err := Init(WithRotatingFile(path))
	if err != nil {
		t.Fatalf("failed to initialize file logger: %v", err)
	}
	defer func() {
		_ = Init() // restore stdout output for other tests
	}()

	Get().Info(context.Background(), "file message", String("k", "v"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("log file is empty after writing")
	}
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"", false},
		{"warn", false},
		{"warning", false},
		{"error", false},
		{"ERROR", false},
		{"verbose", true},
	}

	for _, tt := range tests {
		err := SetLevelString(tt.level)
		if tt.wantErr && err == nil {
			t.Errorf("expected error for level %q", tt.level)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("unexpected error for level %q: %v", tt.level, err)
		}
	}

	// Restore default level.
	SetLevel(slog.LevelInfo)
}
