package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported store drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

type Config struct {
	Port            string        `yaml:"port"`
	GinMode         string        `yaml:"gin_mode"`
	Env             string        `yaml:"env"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	StoreDriver     string        `yaml:"store_driver"`
	DBHost          string        `yaml:"db_host"`
	DBPort          string        `yaml:"db_port"`
	DBUser          string        `yaml:"db_user"`
	DBPassword      string        `yaml:"db_password"`
	DBName          string        `yaml:"db_name"`
	SQLitePath      string        `yaml:"sqlite_path"`
	MongoURI        string        `yaml:"mongodb_uri"`
	MongoDatabase   string        `yaml:"mongodb_database"`
	TaskListLimit   int           `yaml:"task_list_limit"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func defaults() *Config {
	return &Config{
		Port:            "8080",
		GinMode:         "debug",
		Env:             "local",
		LogFormat:       "text",
		StoreDriver:     DriverMySQL,
		DBHost:          "localhost",
		DBPort:          "3306",
		DBUser:          "taskuser",
		DBPassword:      "taskpassword",
		DBName:          "task_management",
		SQLitePath:      "tasks.db",
		MongoURI:        "mongodb://localhost:27017/?replicaSet=rs0",
		MongoDatabase:   "task_management",
		TaskListLimit:   100,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_PATH, and environment overrides, in that order.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.GinMode = getEnv("GIN_MODE", c.GinMode)
	c.Env = getEnv("APP_ENV", c.Env)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.StoreDriver = getEnv("STORE_DRIVER", c.StoreDriver)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.MongoURI = getEnv("MONGODB_URI", c.MongoURI)
	c.MongoDatabase = getEnv("MONGODB_DATABASE", c.MongoDatabase)

	if v := os.Getenv("TASK_LIST_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.TaskListLimit = n
		}
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.ShutdownTimeout = d
		}
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("unsupported store driver %q", c.StoreDriver)
	}
	if c.TaskListLimit < 0 {
		return fmt.Errorf("task list limit must not be negative")
	}
	return nil
}

// DSN returns the connection string for the configured SQL driver.
func (c *Config) DSN() string {
	switch c.StoreDriver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
	case DriverSQLite:
		return c.SQLitePath
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser,
			c.DBPassword,
			c.DBHost,
			c.DBPort,
			c.DBName,
		)
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
