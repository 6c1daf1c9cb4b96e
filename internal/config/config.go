package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	commoncfg "github.com/odense-rpa/postmester-medcom/common/config"

	"gopkg.in/yaml.v3"
)

// Config postmester-medcom worker configuration
type Config struct {
	ProcessName string                   `yaml:"process_name"`
	Database    commoncfg.DatabaseConfig `yaml:"database"`
	Redis       commoncfg.RedisConfig    `yaml:"redis"`
	MQTT        commoncfg.MQTTConfig     `yaml:"mqtt"`
	Nexus       NexusConfig              `yaml:"nexus"`
	Workqueue   WorkqueueConfig          `yaml:"workqueue"`
	Reporting   ReportingConfig          `yaml:"reporting"`
	Tracking    TrackingConfig           `yaml:"tracking"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// NexusConfig case-management backend
type NexusConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Token         string        `yaml:"token"`
	Timeout       time.Duration `yaml:"timeout"`
	WorklistName  string        `yaml:"worklist_name"`
	WorklistPages int           `yaml:"worklist_pages"`
}

// WorkqueueConfig selects the queue this process consumes
type WorkqueueConfig struct {
	Name string `yaml:"name"`
}

// ReportingConfig audit stream settings
type ReportingConfig struct {
	Stream   string `yaml:"stream"`
	ReportID string `yaml:"report_id"`
	Group    string `yaml:"group"`
	MaxLen   int64  `yaml:"max_len"`
}

// TrackingConfig task metric settings
type TrackingConfig struct {
	Topic string `yaml:"topic"`
	QoS   byte   `yaml:"qos"`
}

// Load builds the config: defaults, then CONFIG_FILE (yaml) if set, then env.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ProcessName = getEnv("PROCESS_NAME", cfg.ProcessName)

	cfg.Database.LoadFromEnv("DB")
	cfg.Redis.LoadFromEnv("REDIS")
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Nexus.BaseURL = getEnv("NEXUS_BASE_URL", cfg.Nexus.BaseURL)
	cfg.Nexus.Token = getEnv("NEXUS_TOKEN", cfg.Nexus.Token)
	cfg.Nexus.Timeout = parseDuration(os.Getenv("NEXUS_TIMEOUT"), cfg.Nexus.Timeout)
	cfg.Nexus.WorklistName = getEnv("NEXUS_WORKLIST_NAME", cfg.Nexus.WorklistName)
	cfg.Nexus.WorklistPages = parseInt(os.Getenv("NEXUS_WORKLIST_PAGES"), cfg.Nexus.WorklistPages)

	cfg.Workqueue.Name = getEnv("WORKQUEUE_NAME", cfg.Workqueue.Name)

	cfg.Reporting.Stream = getEnv("REPORT_STREAM", cfg.Reporting.Stream)
	cfg.Reporting.ReportID = getEnv("REPORT_ID", cfg.Reporting.ReportID)
	cfg.Reporting.Group = getEnv("REPORT_GROUP", cfg.Reporting.Group)

	cfg.Tracking.Topic = getEnv("TRACKING_TOPIC", cfg.Tracking.Topic)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	if cfg.Nexus.BaseURL == "" {
		return nil, fmt.Errorf("NEXUS_BASE_URL is required")
	}

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.ProcessName = "Postmester Medcom"

	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "rpa"
	cfg.Database.SSLMode = "disable"

	cfg.Redis.Addr = "localhost:6379"

	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "postmester-medcom"
	cfg.MQTT.QoS = 1

	cfg.Nexus.BaseURL = "http://localhost:8081/api/core/mobile/odense/v2"
	cfg.Nexus.Timeout = 30 * time.Second
	cfg.Nexus.WorklistName = "MedCom - Korrespondancer: venter + accepterede"
	cfg.Nexus.WorklistPages = 10

	cfg.Workqueue.Name = "postmester_medcom"

	cfg.Reporting.Stream = "reports:postmester_medcom"
	cfg.Reporting.ReportID = "postmester_medcom"
	cfg.Reporting.Group = "Udført af TYRA"
	cfg.Reporting.MaxLen = 100000

	cfg.Tracking.Topic = "rpa/tracking/tasks"
	cfg.Tracking.QoS = 1

	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
