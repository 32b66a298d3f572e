package confs

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"3536"`
	GinMode  string `envconfig:"GIN_MODE" default:"release"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Embedded so envconfig reads their keys without a struct-name prefix.
	Database
	Auth
	Forecast
	MQTT

	// Empty means every origin is allowed.
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
}

type Database struct {
	Driver     string `envconfig:"DB_DRIVER" default:"postgres"`
	URL        string `envconfig:"DB_URL"`
	Host       string `envconfig:"DB_HOST"`
	Port       string `envconfig:"DB_PORT"`
	User       string `envconfig:"DB_USER"`
	Password   string `envconfig:"DB_PASSWORD"`
	Name       string `envconfig:"DB_NAME"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"ecotracker.db"`
}

type Auth struct {
	JWTSecret            string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpirationMinutes int    `envconfig:"JWT_EXPIRATION_MINUTES" default:"1440"`
}

type Forecast struct {
	// Cron expression; empty disables scheduled regeneration.
	Schedule string   `envconfig:"FORECAST_SCHEDULE" default:"@hourly"`
	Types    []string `envconfig:"FORECAST_TYPES" default:"air_quality,temperature,humidity"`
}

type MQTT struct {
	BrokerURL string `envconfig:"MQTT_BROKER_URL"`
	ClientID  string `envconfig:"MQTT_CLIENT_ID" default:"ecotracker-server"`
	Topic     string `envconfig:"MQTT_TOPIC" default:"ecotracker/+/readings"`
}

// LoadConfig loads environment variables from a .env file if present
// and decodes them into a Config.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Only log when the file exists but could not be read
		if !os.IsNotExist(err) {
			log.Warnf("could not load .env: %v", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("invalid configuration: unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("invalid configuration: JWT_SECRET must not be empty")
	}
	if cfg.Auth.JWTExpirationMinutes <= 0 {
		return nil, fmt.Errorf("invalid configuration: JWT_EXPIRATION_MINUTES must be positive")
	}

	return &cfg, nil
}
