package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, parsed from the environment exactly
// once at startup and passed down by value. Nothing reads the environment
// after this.
type Config struct {
	ProjectName string `env:"PROJECT_NAME" envDefault:"accountd"`
	Env         string `env:"ENV"          envDefault:"dev"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT"   envDefault:"json"`

	Port                int           `env:"PORT"                  envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	// Comma-separated allowed CORS origins; empty allows any.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	DatabaseFile string `env:"DATABASE_FILE" envDefault:"accounts.db"`

	// Session token signing.
	SecretKey                string `env:"SECRET_KEY,required,notEmpty"`
	Algorithm                string `env:"ALGORITHM"                   envDefault:"HS512"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`

	// Registration window for NEW accounts.
	AccountRegisterExpireMinutes int `env:"ACCOUNT_REGISTER_EXPIRE_MINUTES" envDefault:"5"`

	// Two-factor authentication, applied system-wide.
	TOTPActive      bool `env:"TOTP_ACTIVE"       envDefault:"false"`
	TOTPDigits      int  `env:"TOTP_DIGITS"       envDefault:"6"`
	TOTPInterval    int  `env:"TOTP_INTERVAL"     envDefault:"30"` // seconds
	TOTPValidWindow uint `env:"TOTP_VALID_WINDOW" envDefault:"0"`  // adjacent steps
	QRCodeSize      int  `env:"QR_CODE_SIZE"      envDefault:"256"`
}

// LoadConfig parses the environment into a Config.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("app: failed to parse environment: %w", err)
	}
	return cfg, nil
}

// SessionTTL returns the configured session token lifetime.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// RegistrationWindow returns the time a NEW account has to activate.
func (c Config) RegistrationWindow() time.Duration {
	return time.Duration(c.AccountRegisterExpireMinutes) * time.Minute
}

// TOTPPeriod returns the TOTP time step.
func (c Config) TOTPPeriod() time.Duration {
	return time.Duration(c.TOTPInterval) * time.Second
}
