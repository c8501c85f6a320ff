package config

import (
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Configuration is everything the service reads from the environment
type Configuration struct {
	Port        string `env:"PORT" envDefault:"8000"`
	GinMode     string `env:"GIN_MODE"`
	DatabaseURL string `env:"DATABASE_URL"`
	DataPath    string `env:"DATA_PATH" envDefault:"autohours.db"`

	JWTSecret       string `env:"JWT_SECRET"`
	APIMasterSecret string `env:"API_MASTER_SECRET"`
	AdminUsername   string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword   string `env:"ADMIN_PASSWORD" envDefault:"admin123"`

	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SweepEvery  time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
	MetricsPath string        `env:"METRICS_PATH" envDefault:"/metrics"`
	CORSOrigins []string      `env:"CORS_ORIGINS" envSeparator:","`

	// Week offsets shown by the department settings editor and, by default, by templates.
	SettingsWeeks int `env:"SETTINGS_WEEKS" envDefault:"9"`
	TemplateWeeks int `env:"TEMPLATE_WEEKS" envDefault:"18"`
}

// LoadEnv loads the first .env found in the working directory or its parents
func LoadEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env", "../.env", "../../.env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load parses the environment into a Configuration and validates it
func Load() (*Configuration, error) {
	c := &Configuration{}
	if err := env.Parse(c); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks ranges the environment parser cannot express
func (c *Configuration) Validate() error {
	if c.SettingsWeeks < 1 || c.SettingsWeeks > 52 {
		return errors.Errorf("SETTINGS_WEEKS must be between 1 and 52, got %d", c.SettingsWeeks)
	}
	if c.TemplateWeeks < 1 || c.TemplateWeeks > 52 {
		return errors.Errorf("TEMPLATE_WEEKS must be between 1 and 52, got %d", c.TemplateWeeks)
	}
	if c.SessionTTL <= 0 {
		return errors.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		return errors.Errorf("METRICS_PATH must start with '/', got '%s'", c.MetricsPath)
	}
	return nil
}

// Logger builds the process logger from LOG_LEVEL. Release mode logs JSON.
func (c *Configuration) Logger() *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if c.GinMode == "" || c.GinMode == "release" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}
