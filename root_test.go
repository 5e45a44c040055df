package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"gmaps-scraper/config"
	"gmaps-scraper/services"
	"gmaps-scraper/storage"
	"gmaps-scraper/utils"
)

func TestNewRootCmdFlags(t *testing.T) {
	cfg := &config.Config{DefaultTotal: 20, InputFile: "input.txt"}
	cmd := NewRootCmd(cfg)

	if cmd.Use != "gmaps-scraper" {
		t.Errorf("use: got %q, want %q", cmd.Use, "gmaps-scraper")
	}

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"search", "s", ""},
		{"total", "t", "20"},
		{"input", "", "input.txt"},
		{"verbose", "v", "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := cmd.Flags().Lookup(tt.name)
			if f == nil {
				t.Fatalf("flag --%s missing", tt.name)
			}
			if f.Shorthand != tt.shorthand {
				t.Errorf("shorthand: got %q, want %q", f.Shorthand, tt.shorthand)
			}
			if f.DefValue != tt.def {
				t.Errorf("default: got %q, want %q", f.DefValue, tt.def)
			}
		})
	}
}

func TestRunWithoutQueries(t *testing.T) {
	cfg := config.FromEnv()
	cfg.DataDir = t.TempDir()
	cfg.StorageBackend = config.BackendCSV
	cfg.ScrollPixels = 3000

	opts := &options{total: 5, input: filepath.Join(t.TempDir(), "missing.txt")}
	err := run(context.Background(), cfg, opts, &bytes.Buffer{})
	if !errors.Is(err, config.ErrNoQueries) {
		t.Errorf("run: got %v, want %v", err, config.ErrNoQueries)
	}
}

func TestRunRejectsBadTotal(t *testing.T) {
	cfg := config.FromEnv()
	cfg.DataDir = t.TempDir()
	cfg.StorageBackend = config.BackendCSV
	cfg.ScrollPixels = 3000

	err := run(context.Background(), cfg, &options{total: 0, search: "cafes"}, &bytes.Buffer{})
	if !errors.Is(err, config.ErrInvalidTotal) {
		t.Errorf("run: got %v, want %v", err, config.ErrInvalidTotal)
	}
}

func TestOpenStore(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir(), StorageBackend: config.BackendSQLite}
	var logs bytes.Buffer
	store, err := openStore(cfg, utils.NewLoggerTo(&logs, &logs, false))
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*storage.SQLiteStore); !ok {
		t.Errorf("backend: got %T, want *storage.SQLiteStore", store)
	}
	if want := filepath.Join(cfg.DataDir, "gmaps.db"); !strings.Contains(logs.String(), want) {
		t.Errorf("log: got %q, want it to mention %q", logs.String(), want)
	}

	cfg.StorageBackend = config.BackendCSV
	store, err = openStore(cfg, utils.Discard())
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	if _, ok := store.(*storage.CSVStore); !ok {
		t.Errorf("backend: got %T, want *storage.CSVStore", store)
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, []*services.QueryReport{
		{Query: "a", Drive: &services.DriveResult{Accepted: 3}},
		{Query: "b"},
	})

	want := "  Done. 2 searches, 3 new businesses.\n\n"
	if got := buf.String(); got != want {
		t.Errorf("summary: got %q, want %q", got, want)
	}
}
