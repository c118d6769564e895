package utils

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Config holds the settings read from the environment (and .env, if present).
type Config struct {
	Port          string          `envconfig:"PORT" default:"8000"`
	BaseURL       string          `envconfig:"BASE_URL" default:"http://localhost:8000"`
	MongoURI      string          `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database      string          `envconfig:"MONGO_DATABASE" default:"ecommerce"`
	JWTSecret     string          `envconfig:"JWT_SECRET" required:"true"`
	PostmarkToken string          `envconfig:"POSTMARK_API_TOKEN"`
	EmailSender   string          `envconfig:"EMAIL_SENDER"`
	AdminEmail    string          `envconfig:"ADMIN_EMAIL"`
	TaxRate       decimal.Decimal `envconfig:"TAX_RATE" default:"0.08"`
	CartIdleTime  time.Duration   `envconfig:"CART_IDLE_TIMEOUT" default:"30m"`
	LogLevel      string          `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads .env files (missing files are fine) and then parses the
// environment. It reports whether a .env file was found.
func LoadConfig(files ...string) (Config, bool, error) {
	foundEnv := godotenv.Load(files...) == nil

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, foundEnv, errors.Wrap(err, "parse environment")
	}
	if cfg.JWTSecret == "" {
		return Config{}, foundEnv, errors.New("JWT_SECRET must not be empty")
	}
	if cfg.TaxRate.IsNegative() {
		return Config{}, foundEnv, errors.Errorf("TAX_RATE must not be negative, got %s", cfg.TaxRate)
	}
	if cfg.CartIdleTime <= 0 {
		return Config{}, foundEnv, errors.Errorf("CART_IDLE_TIMEOUT must be positive, got %s", cfg.CartIdleTime)
	}
	return cfg, foundEnv, nil
}
