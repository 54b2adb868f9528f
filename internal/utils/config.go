package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full guard configuration. It is built once at startup,
// validated, and passed by reference; nothing reads the environment after
// Load returns.
type Config struct {
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Overrides  OverridesConfig  `yaml:"overrides"`
	Alerting   AlertingConfig   `yaml:"alerting"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	API        APIConfig        `yaml:"api"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type ThresholdsConfig struct {
	MaxQueueLength       int     `yaml:"max_queue_length"`
	MaxUnackedMessages   int     `yaml:"max_unacked_messages"`
	MinConsumersPerQueue int     `yaml:"min_consumers_per_queue"`
	MaxMemoryPercent     float64 `yaml:"max_memory_percent"`
	MaxDiskPercent       float64 `yaml:"max_disk_percent"`
	ProcessingHalt       int     `yaml:"processing_halt"`
	ConnectionFailures   int     `yaml:"connection_failures"`
}

// OverridesConfig names the long-job queues whose queue-backup threshold and
// alert cooldown replace the defaults.
type OverridesConfig struct {
	Queues          []string `yaml:"queues"`
	Threshold       int      `yaml:"threshold"`
	CooldownSeconds int      `yaml:"cooldown_seconds"`
}

type AlertChannelsConfig struct {
	Log   bool `yaml:"log"`
	Slack bool `yaml:"slack"`
}

type AlertingConfig struct {
	SlackWebhookURL        string              `yaml:"slack_webhook_url"`
	DefaultCooldownSeconds int                 `yaml:"default_cooldown_seconds"`
	Channels               AlertChannelsConfig `yaml:"channels"`
}

type MonitoringConfig struct {
	IntervalSeconds     int    `yaml:"interval_seconds"`
	FetchTimeoutSeconds int    `yaml:"fetch_timeout_seconds"`
	PrometheusPort      string `yaml:"prometheus_port"`
}

type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    string `yaml:"port"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadConfig reads the YAML file (optional), applies environment overrides,
// and validates. Any invalid numeric setting is a startup error; the monitor
// must fail fast rather than run with a broken threshold.
func LoadConfig(filename string) (*Config, error) {
	config := GetDefaultConfig()

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %v", filename, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file %s: %v", filename, err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}

	return config, nil
}

// GetDefaultConfig returns the built-in defaults, matching a local broker
// with the management plugin on its standard port.
func GetDefaultConfig() *Config {
	return &Config{
		RabbitMQ: RabbitMQConfig{
			Host:     "localhost",
			Port:     15672,
			Username: "rabbitmq",
			Password: "guest",
		},
		Thresholds: ThresholdsConfig{
			MaxQueueLength:       1000,
			MaxUnackedMessages:   500,
			MinConsumersPerQueue: 1,
			MaxMemoryPercent:     80,
			MaxDiskPercent:       85,
			ProcessingHalt:       100,
			ConnectionFailures:   3,
		},
		Overrides: OverridesConfig{
			Queues:          []string{},
			Threshold:       1000000,
			CooldownSeconds: 10800,
		},
		Alerting: AlertingConfig{
			DefaultCooldownSeconds: 1800,
			Channels: AlertChannelsConfig{
				Log:   true,
				Slack: true,
			},
		},
		Monitoring: MonitoringConfig{
			IntervalSeconds:     60,
			FetchTimeoutSeconds: 10,
			PrometheusPort:      "8080",
		},
		API: APIConfig{
			Enabled: true,
			Port:    "5001",
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// applyEnv layers the original env-variable surface over the file config.
func (c *Config) applyEnv() error {
	envString("RABBITMQ_HOST", &c.RabbitMQ.Host)
	envString("RABBITMQ_DEFAULT_USER", &c.RabbitMQ.Username)
	envString("RABBITMQ_DEFAULT_PASS", &c.RabbitMQ.Password)
	envString("SLACK_WEBHOOK_URL", &c.Alerting.SlackWebhookURL)

	if v, ok := os.LookupEnv("LONG_JOB_QUEUES"); ok {
		queues := make([]string, 0)
		for _, q := range strings.Split(v, ",") {
			if q = strings.TrimSpace(q); q != "" {
				queues = append(queues, q)
			}
		}
		c.Overrides.Queues = queues
	}

	intVars := []struct {
		name   string
		target *int
	}{
		{"RABBITMQ_PORT", &c.RabbitMQ.Port},
		{"ALERT_MAX_QUEUE_LENGTH", &c.Thresholds.MaxQueueLength},
		{"ALERT_MAX_UNACKED_MESSAGES", &c.Thresholds.MaxUnackedMessages},
		{"ALERT_MIN_CONSUMERS", &c.Thresholds.MinConsumersPerQueue},
		{"ALERT_PROCESSING_HALT_THRESHOLD", &c.Thresholds.ProcessingHalt},
		{"ALERT_CONNECTION_FAILURES", &c.Thresholds.ConnectionFailures},
		{"DEFAULT_ALERT_COOLDOWN", &c.Alerting.DefaultCooldownSeconds},
		{"LONG_JOB_QUEUE_THRESHOLD", &c.Overrides.Threshold},
		{"LONG_JOB_QUEUE_COOLDOWN", &c.Overrides.CooldownSeconds},
		{"MONITORING_INTERVAL", &c.Monitoring.IntervalSeconds},
	}
	for _, v := range intVars {
		if err := envInt(v.name, v.target); err != nil {
			return err
		}
	}

	floatVars := []struct {
		name   string
		target *float64
	}{
		{"ALERT_MAX_MEMORY_PERCENT", &c.Thresholds.MaxMemoryPercent},
		{"ALERT_MAX_DISK_PERCENT", &c.Thresholds.MaxDiskPercent},
	}
	for _, v := range floatVars {
		if err := envFloat(v.name, v.target); err != nil {
			return err
		}
	}

	return nil
}

// Validate applies defaults to empty values and rejects invalid numerics.
func (c *Config) Validate() error {
	if c.RabbitMQ.Host == "" {
		c.RabbitMQ.Host = "localhost"
	}
	if c.RabbitMQ.Port == 0 {
		c.RabbitMQ.Port = 15672
	}
	if c.RabbitMQ.Port < 0 || c.RabbitMQ.Port > 65535 {
		return fmt.Errorf("rabbitmq port %d out of range", c.RabbitMQ.Port)
	}
	if c.RabbitMQ.Username == "" {
		c.RabbitMQ.Username = "rabbitmq"
	}
	if c.RabbitMQ.Password == "" {
		c.RabbitMQ.Password = "guest"
	}

	if err := nonNegativeInt("thresholds.max_queue_length", c.Thresholds.MaxQueueLength); err != nil {
		return err
	}
	if err := nonNegativeInt("thresholds.max_unacked_messages", c.Thresholds.MaxUnackedMessages); err != nil {
		return err
	}
	if err := nonNegativeInt("thresholds.min_consumers_per_queue", c.Thresholds.MinConsumersPerQueue); err != nil {
		return err
	}
	if err := nonNegativeInt("thresholds.processing_halt", c.Thresholds.ProcessingHalt); err != nil {
		return err
	}
	if err := nonNegativeInt("thresholds.connection_failures", c.Thresholds.ConnectionFailures); err != nil {
		return err
	}
	if c.Thresholds.MaxMemoryPercent < 0 || c.Thresholds.MaxDiskPercent < 0 {
		return fmt.Errorf("threshold percentages cannot be negative")
	}
	if err := nonNegativeInt("overrides.threshold", c.Overrides.Threshold); err != nil {
		return err
	}
	if err := nonNegativeInt("overrides.cooldown_seconds", c.Overrides.CooldownSeconds); err != nil {
		return err
	}
	if err := nonNegativeInt("alerting.default_cooldown_seconds", c.Alerting.DefaultCooldownSeconds); err != nil {
		return err
	}

	if c.Monitoring.IntervalSeconds == 0 {
		c.Monitoring.IntervalSeconds = 60
	}
	if c.Monitoring.IntervalSeconds < 10 || c.Monitoring.IntervalSeconds > 3600 {
		return fmt.Errorf("monitoring.interval_seconds %d outside acceptable range 10-3600", c.Monitoring.IntervalSeconds)
	}
	if c.Monitoring.FetchTimeoutSeconds <= 0 {
		c.Monitoring.FetchTimeoutSeconds = 10
	}
	if c.Monitoring.PrometheusPort == "" {
		c.Monitoring.PrometheusPort = "8080"
	}

	if c.API.Port == "" {
		c.API.Port = "5001"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	return nil
}

// Endpoint returns the management API host:port.
func (c *Config) Endpoint() string {
	return fmt.Sprintf("%s:%d", c.RabbitMQ.Host, c.RabbitMQ.Port)
}

// DefaultCooldown returns the default suppression window as a duration.
func (c *Config) DefaultCooldown() time.Duration {
	return time.Duration(c.Alerting.DefaultCooldownSeconds) * time.Second
}

// OverrideCooldown returns the long-job suppression window as a duration.
func (c *Config) OverrideCooldown() time.Duration {
	return time.Duration(c.Overrides.CooldownSeconds) * time.Second
}

// Interval returns the polling interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Monitoring.IntervalSeconds) * time.Second
}

// FetchTimeout returns the per-fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Monitoring.FetchTimeoutSeconds) * time.Second
}

func nonNegativeInt(name string, value int) error {
	if value < 0 {
		return fmt.Errorf("%s cannot be negative (got %d)", name, value)
	}
	return nil
}

func envString(name string, target *string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*target = v
	}
}

func envInt(name string, target *int) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %q", name, v)
	}
	*target = parsed
	return nil
}

func envFloat(name string, target *float64) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %q", name, v)
	}
	*target = parsed
	return nil
}
