// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/youpredict/you-predict-core/internal/schedule"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	GCP        GCPConfig        `mapstructure:"gcp"`
	Warehouse  WarehouseConfig  `mapstructure:"warehouse"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Tasks      TasksConfig      `mapstructure:"tasks"`
	YouTube    YouTubeConfig    `mapstructure:"youtube"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
	// BaseURL is the public URL of this service, used as the webhook
	// callback and as the target of delayed tasks.
	BaseURL string `mapstructure:"base_url"`
}

// GCPConfig identifies the hosting project.
type GCPConfig struct {
	ProjectID string `mapstructure:"project_id"`
}

// WarehouseConfig locates the analytical dataset.
type WarehouseConfig struct {
	Dataset string `mapstructure:"dataset"`
}

// StorageConfig locates the raw payload bucket.
type StorageConfig struct {
	RawBucket string `mapstructure:"raw_bucket"`
}

// TasksConfig locates the delayed-task queue.
type TasksConfig struct {
	Queue    string `mapstructure:"queue"`
	Location string `mapstructure:"location"`
}

// YouTubeConfig configures the metered API client.
type YouTubeConfig struct {
	APIKey             string `mapstructure:"api_key"`
	QuotaLimit         int    `mapstructure:"quota_limit"`
	TranscriptLanguage string `mapstructure:"transcript_language"`
}

// MonitoringConfig bounds how long a discovered video stays monitored.
type MonitoringConfig struct {
	WindowHours int `mapstructure:"window_hours"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("YOUPREDICT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("warehouse.dataset", "youpredict")
	v.SetDefault("tasks.queue", "video-fanout")
	v.SetDefault("tasks.location", "us-central1")
	v.SetDefault("youtube.quota_limit", 10000)
	v.SetDefault("youtube.transcript_language", "en")
	v.SetDefault("monitoring.window_hours", schedule.Default().LastSnapshotHour())
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and the schedule coupling: the
// monitoring window must end exactly at the last snapshot interval, or
// videos would expire with snapshots still pending (or linger long after
// the final capture).
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.GCP.ProjectID == "" {
		return fmt.Errorf("gcp.project_id must be set")
	}
	if c.Warehouse.Dataset == "" {
		return fmt.Errorf("warehouse.dataset must be set")
	}
	if c.YouTube.QuotaLimit <= 0 {
		return fmt.Errorf("youtube.quota_limit must be > 0")
	}
	if last := schedule.Default().LastSnapshotHour(); c.Monitoring.WindowHours != last {
		return fmt.Errorf("monitoring.window_hours must equal the last snapshot interval (%dh), got %dh",
			last, c.Monitoring.WindowHours)
	}
	return nil
}

// MonitoringWindow returns the monitoring window as a duration.
func (c Config) MonitoringWindow() time.Duration {
	return time.Duration(c.Monitoring.WindowHours) * time.Hour
}
