package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 4173 || cfg.Server.MetricsPort != 9090 {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Storage.Type != StorageSQLite || !cfg.Storage.SeedDemoData {
		t.Errorf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.Retention.Enabled || cfg.Retention.Days != 90 {
		t.Errorf("unexpected retention defaults: %+v", cfg.Retention)
	}
	if cfg.Analytics.ScrollWeight != 0.8 || cfg.Analytics.FocusWeight != 0.6 {
		t.Errorf("unexpected analytics defaults: %+v", cfg.Analytics)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Errorf("unexpected allowed origins: %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screentime.yaml")
	content := `
server:
  port: 8080
storage:
  type: bolt
  path: /tmp/screentime.bolt
  seed_demo_data: false
retention:
  enabled: true
  days: 30
  schedule: "@daily"
logging:
  level: debug
  format: text
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Storage.Type != StorageBolt || cfg.Storage.SeedDemoData {
		t.Errorf("file values not applied: %+v / %+v", cfg.Server, cfg.Storage)
	}
	if !cfg.Retention.Enabled || cfg.Retention.Days != 30 || cfg.Retention.Schedule != "@daily" {
		t.Errorf("unexpected retention: %+v", cfg.Retention)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SCREENTIME_SERVER_PORT", "9999")
	t.Setenv("SCREENTIME_STORAGE_TYPE", "redis")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9999 || cfg.Storage.Type != StorageRedis {
		t.Errorf("env overrides not applied: port %d, storage %s", cfg.Server.Port, cfg.Storage.Type)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:  ServerConfig{Port: 4173, MetricsPort: 9090, ReadTimeout: "15s", WriteTimeout: "15s"},
			Storage: StorageConfig{Type: StorageSQLite, Path: "/tmp/screentime.db"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"bad metrics port", func(c *Config) { c.Server.MetricsPort = 70000 }, true},
		{"metrics disabled", func(c *Config) { c.Server.MetricsPort = 0 }, false},
		{"bad timeout", func(c *Config) { c.Server.ReadTimeout = "soon" }, true},
		{"unknown storage", func(c *Config) { c.Storage.Type = "postgres" }, true},
		{"missing path", func(c *Config) { c.Storage.Path = "" }, true},
		{"redis without host", func(c *Config) { c.Storage.Type = StorageRedis }, true},
		{"empty type defaults to sqlite", func(c *Config) { c.Storage.Type = "" }, false},
		{"retention bad days", func(c *Config) { c.Retention = RetentionConfig{Enabled: true, Days: 0, Schedule: "@daily"} }, true},
		{"retention bad schedule", func(c *Config) { c.Retention = RetentionConfig{Enabled: true, Days: 30, Schedule: "sometimes"} }, true},
		{"negative weight", func(c *Config) { c.Analytics.ScrollWeight = -1 }, true},
		{"zero weights", func(c *Config) { c.Analytics.ScrollWeight = 0; c.Analytics.FocusWeight = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := validate(&cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultsMatchLoad(t *testing.T) {
	loaded, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defaults := Defaults()
	if defaults.Storage.Path != loaded.Storage.Path || defaults.Server.Port != loaded.Server.Port {
		t.Errorf("Defaults() = %+v, Load(\"\") = %+v", defaults, loaded)
	}
}

func TestUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screentime.yaml")
	content := `
server:
  port: 8080
  prot: 8081
storage:
  redis:
    hots: redis.local
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	unknown, err := UnknownKeys(path)
	if err != nil {
		t.Fatalf("UnknownKeys: %v", err)
	}
	want := []string{"server.prot", "storage.redis.hots"}
	if len(unknown) != len(want) {
		t.Fatalf("unknown = %v, want %v", unknown, want)
	}
	for i := range want {
		if unknown[i] != want[i] {
			t.Errorf("unknown[%d] = %q, want %q", i, unknown[i], want[i])
		}
	}

	if _, err := UnknownKeys(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
