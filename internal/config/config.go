package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Env        string           `yaml:"env"`                            // Env is the current environment: local, development, production.
	Postgres   PostgresConfig   `yaml:"postgres"   validate:"required"` // Postgres holds the database configuration
	Messaging  MessagingConfig  `yaml:"messaging"  validate:"required"` // Messaging holds the SMS provider configuration
	HTTP       HTTPConfig       `yaml:"http"`                           // HTTP holds the API server configuration
	Monitoring MonitoringConfig `yaml:"monitoring"`                     // Monitoring holds the metrics/health server configuration
	Export     ExportConfig     `yaml:"export"`                         // Export holds the flat file output configuration
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"     validate:"required"` // Host is the database server address.
	Port     string `yaml:"port"     validate:"required"` // Port is the database server port.
	User     string `yaml:"user"     validate:"required"` // User is the database user.
	Password string `yaml:"password"`                     // Password is the database user's password.
	Dbname   string `yaml:"db_name"  validate:"required"` // Dbname is the name of the database.
}

// MessagingConfig struct holds the credentials of the SMS provider account.
type MessagingConfig struct {
	AccountSID string `yaml:"account_sid" validate:"required"`     // AccountSID is the provider account identifier.
	AuthToken  string `yaml:"auth_token"  validate:"required"`     // AuthToken is the provider auth token.
	FromNumber string `yaml:"from_number" validate:"required"`     // FromNumber is the sender identity of every message.
	HealthURL  string `yaml:"health_url"  validate:"required,url"` // HealthURL is probed by the health check.
}

// HTTPConfig struct holds the API server settings.
type HTTPConfig struct {
	Port         int           `yaml:"port"          validate:"gt=0,lt=65536"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// MonitoringConfig struct holds the settings of the metrics and health server.
type MonitoringConfig struct {
	Port int `yaml:"port" validate:"gt=0,lt=65536"`
}

// ExportConfig struct holds the settings of the flat file output.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir" validate:"required"` // OutputDir is where every csv file is written.
}

const (
	defaultHTTPPort       = 8000
	defaultMonitoringPort = 8080
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 2 * time.Minute
)

// envBindings maps configuration keys to environment variables that override them.
var envBindings = map[string]string{
	"env":                   "THEMIS_ENV",
	"postgres.host":         "DB_HOST",
	"postgres.port":         "DB_PORT",
	"postgres.user":         "DB_USERNAME",
	"postgres.password":     "DB_PASSWORD",
	"postgres.db_name":      "DB_NAME",
	"messaging.account_sid": "TWILIO_ACCOUNT_SID",
	"messaging.auth_token":  "TWILIO_AUTH_TOKEN",
	"messaging.from_number": "TWILIO_FROM_NUMBER",
	"messaging.health_url":  "TWILIO_HEALTH_URL",
	"http.port":             "THEMIS_HTTP_PORT",
	"monitoring.port":       "THEMIS_MONITORING_PORT",
	"export.output_dir":     "THEMIS_OUTPUT_DIR",
}

// MustLoad loads the configuration and panics if it cannot be loaded or is invalid.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic("config error: " + err.Error())
	}

	return cfg
}

// Load reads the configuration from the YAML file pointed to by CONFIG_PATH (if set)
// and from environment variables, which take precedence over the file.
func Load() (*Config, error) {
	vpr := viper.New()

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		// check if file exists
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}

		vpr.SetConfigFile(configPath)
		if err := vpr.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for key, env := range envBindings {
		if err := vpr.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	vpr.SetDefault("env", "local")
	vpr.SetDefault("postgres.port", "5432")
	vpr.SetDefault("messaging.health_url", "https://api.twilio.com")
	vpr.SetDefault("http.port", defaultHTTPPort)
	vpr.SetDefault("http.read_timeout", defaultReadTimeout)
	vpr.SetDefault("http.write_timeout", defaultWriteTimeout)
	vpr.SetDefault("monitoring.port", defaultMonitoringPort)
	vpr.SetDefault("export.output_dir", "exports")

	cfg := &Config{
		Env: vpr.GetString("env"),
		Postgres: PostgresConfig{
			Host:     vpr.GetString("postgres.host"),
			Port:     vpr.GetString("postgres.port"),
			User:     vpr.GetString("postgres.user"),
			Password: vpr.GetString("postgres.password"),
			Dbname:   vpr.GetString("postgres.db_name"),
		},
		Messaging: MessagingConfig{
			AccountSID: vpr.GetString("messaging.account_sid"),
			AuthToken:  vpr.GetString("messaging.auth_token"),
			FromNumber: vpr.GetString("messaging.from_number"),
			HealthURL:  vpr.GetString("messaging.health_url"),
		},
		HTTP: HTTPConfig{
			Port:         vpr.GetInt("http.port"),
			ReadTimeout:  vpr.GetDuration("http.read_timeout"),
			WriteTimeout: vpr.GetDuration("http.write_timeout"),
		},
		Monitoring: MonitoringConfig{
			Port: vpr.GetInt("monitoring.port"),
		},
		Export: ExportConfig{
			OutputDir: vpr.GetString("export.output_dir"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
