package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/articlehub/internal/db"
	"github.com/nkiryanov/articlehub/internal/logger"
	"github.com/nkiryanov/articlehub/internal/service/auth"
	"github.com/nkiryanov/articlehub/internal/session"
)

const (
	defaultListenAddr     = "localhost:8000"
	defaultLoggingLevel   = logger.LevelInfo
	defaultEnvironment    = logger.EnvProduction
	defaultPasswordHasher = auth.HasherBcrypt
	defaultSessionMaxAge  = session.DefaultMaxAge
	defaultPostgresPort   = "5432"
)

// Used when DATABASE_URI is not set
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DB       string `yaml:"db"`
	SSLMode  string `yaml:"sslmode"`
}

type Config struct {
	// Default logging level
	LogLevel string `yaml:"log_level"`

	// Address on which the server will be run
	ListenAddr string `yaml:"run_address"`

	// Database to connect to
	// Has priority over Postgres parts
	DatabaseDSN string         `yaml:"database_uri"`
	Postgres    PostgresConfig `yaml:"postgres"`

	// Secret key
	// Session cookie signing and encryption keys are derived from it
	SecretKey string `yaml:"secret_key"`

	// Environment
	Environment string `yaml:"environment"`

	// Hasher for new passwords: bcrypt or argon2id
	PasswordHasher string `yaml:"password_hasher"`

	// Session cookie lifetime in seconds
	SessionMaxAge int `yaml:"session_max_age"`

	// Send session cookie over https only
	CookieSecure bool `yaml:"cookie_secure"`

	// Print routes and exit
	PrintRoutes bool `yaml:"-"`
}

func NewConfig() *Config {
	return &Config{
		LogLevel:       defaultLoggingLevel,
		ListenAddr:     defaultListenAddr,
		Environment:    defaultEnvironment,
		PasswordHasher: defaultPasswordHasher,
		SessionMaxAge:  defaultSessionMaxAge,
		Postgres:       PostgresConfig{Port: defaultPostgresPort},
	}
}

// Build config from every source
// Precedence from low to high: defaults, yaml file, '.env', environment, flags
func LoadConfig(getenv func(string) string, getwd func() (string, error), args []string) (*Config, error) {
	c := NewConfig()

	path, err := ConfigPath(getenv, args)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := c.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := c.LoadDotEnv(getwd); err != nil {
		return nil, fmt.Errorf("can't load .env. Err: %w", err)
	}
	if err := c.LoadEnv(getenv); err != nil {
		return nil, err
	}
	if err := c.ParseFlags(args); err != nil {
		return nil, err
	}

	return c, nil
}

// Find config file path in flags or CONFIG_FILE env, flag wins
// Other flags are ignored here, they parsed later over values from file
func ConfigPath(getenv func(string) string, args []string) (string, error) {
	fs := pflag.NewFlagSet("articlehub", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}

	path := fs.StringP("config", "c", getenv("CONFIG_FILE"), "")
	_ = fs.BoolP("help", "h", false, "") // help is printed by the main parser

	if err := fs.Parse(args); err != nil {
		return "", err
	}

	return *path, nil
}

// Load yaml config file, missing keys keep current values
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("can't read config file. Err: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("can't parse config file %s. Err: %w", path, err)
	}

	return nil
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setInt := func(o *int) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			v, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			*o = v
			return nil
		}
	}
	setBool := func(o *bool) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			v, err := strconv.ParseBool(value)
			if err != nil {
				return err
			}
			*o = v
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":       setString(&c.ListenAddr),
		"DATABASE_URI":      setString(&c.DatabaseDSN),
		"POSTGRES_HOST":     setString(&c.Postgres.Host),
		"POSTGRES_PORT":     setString(&c.Postgres.Port),
		"POSTGRES_USER":     setString(&c.Postgres.User),
		"POSTGRES_PASSWORD": setString(&c.Postgres.Password),
		"POSTGRES_DB":       setString(&c.Postgres.DB),
		"POSTGRES_SSLMODE":  setString(&c.Postgres.SSLMode),
		"SECRET_KEY":        setString(&c.SecretKey),
		"LOG_LEVEL":         setString(&c.LogLevel),
		"ENVIRONMENT":       setString(&c.Environment),
		"PASSWORD_HASHER":   setString(&c.PasswordHasher),
		"SESSION_MAX_AGE":   setInt(&c.SessionMaxAge),
		"COOKIE_SECURE":     setBool(&c.CookieSecure),
	}

	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			return fmt.Errorf("invalid %s value. Err: %w", key, err)
		}
	}

	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("articlehub", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.PasswordHasher, "password-hasher", c.PasswordHasher, "Hasher for new passwords (bcrypt, argon2id)")
	fs.IntVar(&c.SessionMaxAge, "session-max-age", c.SessionMaxAge, "Session cookie lifetime in seconds")
	fs.BoolVar(&c.CookieSecure, "cookie-secure", c.CookieSecure, "Send session cookie over https only")
	fs.StringP("config", "c", "", "Path to yaml config file (env CONFIG_FILE)")
	fs.BoolVar(&c.PrintRoutes, "routes", false, "Print routes as markdown and exit")

	return fs.Parse(args)
}

// Database DSN, either set directly or built from Postgres parts
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" || c.Postgres.Host == "" {
		return c.DatabaseDSN
	}

	return db.DSN(db.Params{
		Host:     c.Postgres.Host,
		Port:     c.Postgres.Port,
		User:     c.Postgres.User,
		Password: c.Postgres.Password,
		Name:     c.Postgres.DB,
		SSLMode:  c.Postgres.SSLMode,
	})
}

// Check options required to run server
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("secret key is required, set SECRET_KEY or --secret-key")
	}
	if c.DSN() == "" {
		return errors.New("database is required, set DATABASE_URI, POSTGRES_HOST or --database")
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("session max age must be positive, got %d", c.SessionMaxAge)
	}
	return nil
}
