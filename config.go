package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/sethvargo/go-envconfig"
)

// Config holds the lifecycle policy knobs. FailedLoginTolerance is the
// number of consecutive failures allowed before the next one locks the
// account.
type Config struct {
	ExpirationPeriod     time.Duration `env:"ACCOUNTS_EXPIRATION_PERIOD, default=48h"`
	LockoutPeriod        time.Duration `env:"ACCOUNTS_LOCKOUT_PERIOD, default=15m"`
	FailedLoginTolerance int           `env:"ACCOUNTS_FAILED_LOGIN_TOLERANCE, default=5"`
}

// DefaultConfig returns the built-in policy values
func DefaultConfig() *Config {
	return &Config{
		ExpirationPeriod:     48 * time.Hour,
		LockoutPeriod:        15 * time.Minute,
		FailedLoginTolerance: 5,
	}
}

// LoadConfig reads configuration from environment variables
func LoadConfig(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to load accounts configuration")
	}
	return &cfg, nil
}
