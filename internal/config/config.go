// Package config loads the server configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreMySQL     = "mysql"
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"

	IdentityFirebase = "firebase"
	IdentityLocal    = "local"
)

type Config struct {
	AppPort string `mapstructure:"APP_PORT"`
	Env     string `mapstructure:"APP_ENV"`

	StoreDriver string `mapstructure:"STORE_DRIVER"`

	MySQLHost string `mapstructure:"MYSQL_HOST"`
	MySQLPort string `mapstructure:"MYSQL_PORT"`
	MySQLDB   string `mapstructure:"MYSQL_DB"`
	MySQLUser string `mapstructure:"MYSQL_USER"`
	MySQLPass string `mapstructure:"MYSQL_PASS"`

	SQLitePath string `mapstructure:"SQLITE_PATH"`

	// RedisAddr empty disables the idempotency middleware.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	IdempTTLSecs  int    `mapstructure:"IDEMPOTENCY_TTL_SECONDS"`

	IdentityProvider        string `mapstructure:"IDENTITY_PROVIDER"`
	FirebaseProjectID       string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// LocalAuthSecret signs ID tokens and session cookies of the local provider.
	LocalAuthSecret string `mapstructure:"LOCAL_AUTH_SECRET"`
	LocalAuthIssuer string `mapstructure:"LOCAL_AUTH_ISSUER"`
	BcryptCost      int    `mapstructure:"BCRYPT_COST"`

	SessionTTLRaw     string `mapstructure:"SESSION_TTL"`
	SessionCookieName string `mapstructure:"SESSION_COOKIE_NAME"`
	SecureCookie      bool   `mapstructure:"SECURE_COOKIE"`
}

// Load reads .env (if present), then the environment. Env vars win over .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // a missing .env is fine

	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORE_DRIVER", StoreMySQL)
	v.SetDefault("MYSQL_HOST", "mysql")
	v.SetDefault("MYSQL_PORT", "3306")
	v.SetDefault("MYSQL_DB", "loans")
	v.SetDefault("MYSQL_USER", "loans")
	v.SetDefault("MYSQL_PASS", "loans")
	v.SetDefault("SQLITE_PATH", "loans.db")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("IDEMPOTENCY_TTL_SECONDS", 300)
	v.SetDefault("IDENTITY_PROVIDER", IdentityFirebase)
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("LOCAL_AUTH_SECRET", "")
	v.SetDefault("LOCAL_AUTH_ISSUER", "loan-ledger")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SESSION_TTL", "120h")
	v.SetDefault("SESSION_COOKIE_NAME", "session")
	v.SetDefault("SECURE_COOKIE", false)

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if c.Env == "production" {
		c.SecureCookie = true
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.StoreDriver {
	case StoreMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	case StoreFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("STORE_DRIVER=firestore requires FIREBASE_PROJECT_ID")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.IdentityProvider {
	case IdentityFirebase:
		if c.FirebaseProjectID == "" {
			return errors.New("IDENTITY_PROVIDER=firebase requires FIREBASE_PROJECT_ID")
		}
	case IdentityLocal:
		if len(c.LocalAuthSecret) < 32 {
			return errors.New("IDENTITY_PROVIDER=local requires LOCAL_AUTH_SECRET of at least 32 bytes")
		}
		if c.StoreDriver == StoreFirestore {
			return errors.New("IDENTITY_PROVIDER=local needs a SQL store for its users table")
		}
		if c.BcryptCost < 4 || c.BcryptCost > 31 {
			return errors.New("BCRYPT_COST must be between 4 and 31")
		}
	default:
		return fmt.Errorf("unknown IDENTITY_PROVIDER %q", c.IdentityProvider)
	}

	if c.SessionCookieName == "" {
		return errors.New("missing SESSION_COOKIE_NAME")
	}
	return nil
}

// SessionTTL parses SESSION_TTL; five days when unset or invalid.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.SessionTTLRaw)
	if err != nil || d <= 0 {
		return 5 * 24 * time.Hour
	}
	return d
}

func (c *Config) IdempotencyTTL() time.Duration {
	if c.IdempTTLSecs <= 0 {
		return 300 * time.Second
	}
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is needed by the migration runner; parseTime for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
