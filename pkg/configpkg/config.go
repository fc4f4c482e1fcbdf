// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBSource          string        `mapstructure:"DB_SOURCE"`
	ServerAddress     string        `mapstructure:"SERVER_ADDRESS"`
	TokenType         string        `mapstructure:"TOKEN_TYPE"`
	TokenSymmetricKey string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	Environment       string        `mapstructure:"GO_ENV"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int           `mapstructure:"REDIS_DB"`
	RecurringSchedule string        `mapstructure:"RECURRING_SCHEDULE"`
	RecurringLockTTL  time.Duration `mapstructure:"RECURRING_LOCK_TTL"`
	DispatchInterval  time.Duration `mapstructure:"DISPATCH_INTERVAL"`
	DispatchBatchSize int           `mapstructure:"DISPATCH_BATCH_SIZE"`
	EventMaxAttempts  int           `mapstructure:"EVENT_MAX_ATTEMPTS"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("TOKEN_TYPE", "paseto")
	v.SetDefault("GO_ENV", "production")
	v.SetDefault("RECURRING_SCHEDULE", "0 0 * * *")
	v.SetDefault("RECURRING_LOCK_TTL", 30*time.Minute)
	v.SetDefault("DISPATCH_INTERVAL", time.Second)
	v.SetDefault("DISPATCH_BATCH_SIZE", 100)
	v.SetDefault("EVENT_MAX_ATTEMPTS", 10)
}

// Load reads configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	if err := c.validate(); err != nil {
		return c, err
	}

	return c, nil
}

func (c Config) validate() error {
	switch {
	case c.DispatchInterval <= 0:
		return fmt.Errorf("DISPATCH_INTERVAL must be positive, got %v", c.DispatchInterval)
	case c.DispatchBatchSize <= 0:
		return fmt.Errorf("DISPATCH_BATCH_SIZE must be positive, got %d", c.DispatchBatchSize)
	case c.EventMaxAttempts <= 0:
		return fmt.Errorf("EVENT_MAX_ATTEMPTS must be positive, got %d", c.EventMaxAttempts)
	case c.RecurringLockTTL <= 0:
		return fmt.Errorf("RECURRING_LOCK_TTL must be positive, got %v", c.RecurringLockTTL)
	}

	return nil
}
