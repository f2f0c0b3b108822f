package config

import (
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the full application configuration.
type Config struct {
	Upstream  UpstreamConfig  `yaml:"upstream" mapstructure:"upstream"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Reconcile ReconcileConfig `yaml:"reconcile" mapstructure:"reconcile"`
	Sink      SinkConfig      `yaml:"sink" mapstructure:"sink"`
	Mongo     MongoConfig     `yaml:"mongo" mapstructure:"mongo"`
	MQTT      MQTTConfig      `yaml:"mqtt" mapstructure:"mqtt"`
}

// UpstreamConfig locates the fuel and GPS tracking APIs.
type UpstreamConfig struct {
	FuelAPIBaseURL string `yaml:"fuel_api_base_url" mapstructure:"fuel_api_base_url"`
	GPSAPIBaseURL  string `yaml:"gps_api_base_url" mapstructure:"gps_api_base_url"`
	GPSUserID      string `yaml:"gps_user_id" mapstructure:"gps_user_id"`
	GPSTypeFT      string `yaml:"gps_type_ft" mapstructure:"gps_type_ft"`
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the per-request upstream timeout.
func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutSecs) * time.Second
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port      int     `yaml:"port" mapstructure:"port"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ReconcileConfig holds engine settings.
type ReconcileConfig struct {
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
}

// Location resolves the configured timezone used for day windows.
func (r ReconcileConfig) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, eris.Wrapf(err, "config: load timezone %q", r.Timezone)
	}
	return loc, nil
}

// Sink drivers.
const (
	SinkHTTP  = "http"
	SinkMongo = "mongo"
)

// SinkConfig selects where decisions are written.
type SinkConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
}

// MongoConfig configures the decision journal.
type MongoConfig struct {
	URI        string `yaml:"uri" mapstructure:"uri"`
	Database   string `yaml:"database" mapstructure:"database"`
	Collection string `yaml:"collection" mapstructure:"collection"`
}

// MQTTConfig configures audit notifications.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Broker   string `yaml:"broker" mapstructure:"broker"`
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Topic    string `yaml:"topic" mapstructure:"topic"`
}

// Load reads .env, config.yaml and FUELAUDIT_* environment variables.
func Load() (*Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FUELAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("upstream.fuel_api_base_url", "http://localhost:8090")
	v.SetDefault("upstream.gps_api_base_url", "http://localhost:8090")
	v.SetDefault("upstream.gps_user_id", "833193")
	v.SetDefault("upstream.gps_type_ft", "1")
	v.SetDefault("upstream.timeout_secs", 15)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 5.0)
	v.SetDefault("server.rate_burst", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("reconcile.timezone", "Asia/Kolkata")
	v.SetDefault("sink.driver", SinkHTTP)
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "fleet_fuel")
	v.SetDefault("mongo.collection", "fuel_decisions")
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "fleet-fuel-audit")
	v.SetDefault("mqtt.topic", "fleet/fuel/audit")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Sink.Driver {
	case SinkHTTP, SinkMongo:
	default:
		return eris.Errorf("config: unknown sink driver %q", c.Sink.Driver)
	}
	if c.Upstream.FuelAPIBaseURL == "" {
		return eris.New("config: upstream.fuel_api_base_url is required")
	}
	if c.Upstream.GPSAPIBaseURL == "" {
		return eris.New("config: upstream.gps_api_base_url is required")
	}
	if c.Upstream.TimeoutSecs <= 0 {
		return eris.New("config: upstream.timeout_secs must be positive")
	}
	return nil
}

// InitLogger configures the standard logrus logger.
func InitLogger(cfg LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	log.SetLevel(level)

	if cfg.Format == "text" {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}
	log.SetOutput(os.Stdout)

	return nil
}
