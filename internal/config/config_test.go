package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
  base_url: https://ingest.example.com
gcp:
  project_id: you-predict-prod
warehouse:
  dataset: analytics
storage:
  raw_bucket: you-predict-raw
tasks:
  queue: video-fanout
  location: us-east1
youtube:
  api_key: secret
  quota_limit: 9000
  transcript_language: en
monitoring:
  window_hours: 72
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.BaseURL != "https://ingest.example.com" {
		t.Fatalf("expected base_url override, got %q", cfg.Server.BaseURL)
	}
	if cfg.GCP.ProjectID != "you-predict-prod" || cfg.Warehouse.Dataset != "analytics" {
		t.Fatalf("expected project/dataset overrides to apply")
	}
	if cfg.Tasks.Location != "us-east1" {
		t.Fatalf("expected tasks location override, got %q", cfg.Tasks.Location)
	}
	if cfg.YouTube.QuotaLimit != 9000 {
		t.Fatalf("expected quota limit 9000, got %d", cfg.YouTube.QuotaLimit)
	}
	if cfg.Logging.Development {
		t.Fatalf("expected development logging disabled")
	}
	if got := cfg.MonitoringWindow(); got != 72*time.Hour {
		t.Fatalf("expected 72h monitoring window, got %v", got)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server:     ServerConfig{Port: 8080},
		GCP:        GCPConfig{ProjectID: "proj"},
		Warehouse:  WarehouseConfig{Dataset: "youpredict"},
		YouTube:    YouTubeConfig{QuotaLimit: 10000},
		Monitoring: MonitoringConfig{WindowHours: 72},
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("expected base config to validate, got %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.Server.Port = 0
				return c
			}(),
			want: "server.port",
		},
		{
			name: "missing project",
			cfg: func() Config {
				c := base
				c.GCP.ProjectID = ""
				return c
			}(),
			want: "gcp.project_id",
		},
		{
			name: "missing dataset",
			cfg: func() Config {
				c := base
				c.Warehouse.Dataset = ""
				return c
			}(),
			want: "warehouse.dataset",
		},
		{
			name: "invalid quota limit",
			cfg: func() Config {
				c := base
				c.YouTube.QuotaLimit = 0
				return c
			}(),
			want: "youtube.quota_limit",
		},
		{
			name: "window shorter than schedule",
			cfg: func() Config {
				c := base
				c.Monitoring.WindowHours = 48
				return c
			}(),
			want: "monitoring.window_hours",
		},
		{
			name: "window longer than schedule",
			cfg: func() Config {
				c := base
				c.Monitoring.WindowHours = 96
				return c
			}(),
			want: "monitoring.window_hours",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
