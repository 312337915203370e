package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// DefaultCategories is the fixed choice set offered by entry surfaces.
var DefaultCategories = []string{"Food", "Transport", "Shopping", "Bills", "Entertainment", "Healthcare", "Other"}

type Config struct {
	Environment   string              `mapstructure:"environment"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Display       DisplayConfig       `mapstructure:"display"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type StorageConfig struct {
	Backend  string         `mapstructure:"backend"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Database DatabaseConfig `mapstructure:"database"`
}

type MongoConfig struct {
	URI              string        `mapstructure:"uri"`
	Database         string        `mapstructure:"database"`
	Collection       string        `mapstructure:"collection"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Source          string        `mapstructure:"source"`
}

type DisplayConfig struct {
	CurrencySymbol string   `mapstructure:"currency_symbol"`
	Categories     []string `mapstructure:"categories"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ApplyDefaults fills every unset field. It is safe to call more than once.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendMongo
	}
	if c.Storage.Mongo.Database == "" {
		c.Storage.Mongo.Database = "expenseTracker"
	}
	if c.Storage.Mongo.Collection == "" {
		c.Storage.Mongo.Collection = "expenses"
	}
	if c.Storage.Mongo.ConnectTimeout == 0 {
		c.Storage.Mongo.ConnectTimeout = 10 * time.Second
	}
	if c.Storage.Mongo.OperationTimeout == 0 {
		c.Storage.Mongo.OperationTimeout = DefaultOperationTimeout
	}
	if c.Storage.Database.MaxOpenConns == 0 {
		c.Storage.Database.MaxOpenConns = 5
	}
	if c.Storage.Database.MaxIdleConns == 0 {
		c.Storage.Database.MaxIdleConns = 2
	}
	if c.Storage.Database.ConnMaxLifetime == 0 {
		c.Storage.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if c.Display.CurrencySymbol == "" {
		c.Display.CurrencySymbol = "₹"
	}
	if len(c.Display.Categories) == 0 {
		c.Display.Categories = append([]string(nil), DefaultCategories...)
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// LoadConfigFromEnv builds the configuration purely from environment variables.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Environment: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:            getEnvAsInt("HTTP_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 0),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 0),
			IdleTimeout:     getEnvAsDuration("HTTP_IDLE_TIMEOUT", 0),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 0),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", BackendMongo),
			Mongo: MongoConfig{
				URI:              getEnv("MONGODB_URI", ""),
				Database:         getEnv("MONGODB_DATABASE", ""),
				Collection:       getEnv("MONGODB_COLLECTION", ""),
				ConnectTimeout:   getEnvAsDuration("MONGODB_CONNECT_TIMEOUT", 0),
				OperationTimeout: getEnvAsDuration("MONGODB_OPERATION_TIMEOUT", 0),
			},
			Database: DatabaseConfig{
				Source:       getEnv("DATABASE_URL", ""),
				MaxOpenConns: getEnvAsInt("DATABASE_MAX_OPEN_CONNS", 0),
				MaxIdleConns: getEnvAsInt("DATABASE_MAX_IDLE_CONNS", 0),
			},
		},
		Display: DisplayConfig{
			CurrencySymbol: getEnv("DISPLAY_CURRENCY_SYMBOL", ""),
			Categories:     getEnvAsList("DISPLAY_CATEGORIES"),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", ""),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if err := c.Display.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("display config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *StorageConfig) Validate() error {
	switch c.Backend {
	case BackendMongo:
		return c.Mongo.Validate()
	case BackendPostgres, BackendSQLite:
		return c.Database.Validate()
	case BackendMemory:
		return nil
	default:
		return fmt.Errorf("unknown backend %q: must be one of %s, %s, %s, %s",
			c.Backend, BackendMongo, BackendPostgres, BackendSQLite, BackendMemory)
	}
}

func (c *MongoConfig) Validate() error {
	if c.URI == "" {
		return errors.New("mongo uri is required")
	}
	u, err := url.Parse(c.URI)
	if err != nil {
		return fmt.Errorf("invalid mongo uri: %w", err)
	}
	if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return fmt.Errorf("invalid mongo uri scheme %q: must be mongodb or mongodb+srv", u.Scheme)
	}
	if c.Database == "" {
		return errors.New("mongo database name is required")
	}
	if c.Collection == "" {
		return errors.New("mongo collection name is required")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("database source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *DisplayConfig) Validate() error {
	if len(c.Categories) == 0 {
		return errors.New("at least one category is required")
	}
	seen := make(map[string]struct{}, len(c.Categories))
	for _, name := range c.Categories {
		if strings.TrimSpace(name) == "" {
			return errors.New("category names cannot be blank")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate category %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
