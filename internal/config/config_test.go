package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir:  "/home/user/.local/share/indx",
		LogDir:   "/home/user/.local/share/indx/log",
		Database: DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/indx/data", Trace: true},
		Cache:    CacheConfig{Type: "redis", TTLMinutes: 15, RedisAddr: "localhost:6379", RedisDB: 2},
		Filesystem: FilesystemConfig{
			Types:  map[string]string{"mp3": "audio", "pdf": "document"},
			Ignore: []string{"*.log", ".git"},
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "sqlite")
	}
	if !got.Database.Trace {
		t.Error("Database.Trace = false, want true")
	}
	if got.Cache.Type != "redis" {
		t.Errorf("Cache.Type = %q, want %q", got.Cache.Type, "redis")
	}
	if got.Cache.TTLMinutes != 15 {
		t.Errorf("Cache.TTLMinutes = %d, want %d", got.Cache.TTLMinutes, 15)
	}
	if got.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("Cache.RedisAddr = %q, want %q", got.Cache.RedisAddr, "localhost:6379")
	}
	if got.Filesystem.Types["mp3"] != "audio" {
		t.Errorf("Filesystem.Types[mp3] = %q, want %q", got.Filesystem.Types["mp3"], "audio")
	}
	if len(got.Filesystem.Ignore) != 2 {
		t.Fatalf("len(Filesystem.Ignore) = %d, want 2", len(got.Filesystem.Ignore))
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/indx")

	if cfg.BaseDir != "/data/indx" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/indx")
	}
	if cfg.LogDir != "/data/indx/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/indx/log")
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", cfg.Database.Type, "sqlite")
	}
	if cfg.Database.DataDir != "/data/indx/data" {
		t.Errorf("Database.DataDir = %q, want %q", cfg.Database.DataDir, "/data/indx/data")
	}
	if cfg.Cache.Type != "memory" {
		t.Errorf("Cache.Type = %q, want %q", cfg.Cache.Type, "memory")
	}
	if cfg.Cache.TTLMinutes != 30 {
		t.Errorf("Cache.TTLMinutes = %d, want %d", cfg.Cache.TTLMinutes, 30)
	}
	if len(cfg.Filesystem.Types) == 0 {
		t.Error("Filesystem.Types is empty, want defaults")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "indx.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "indx.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "indx.toml")
		cfg := NewConfig(dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/indx.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
