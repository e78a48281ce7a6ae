package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	Server   ServerConfig
	App      AppConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Port        int
	FrontendURL string
}

type AppConfig struct {
	Name        string
	Environment string
	LogLevel    string
	Version     string
}

type StorageConfig struct {
	Driver         string
	DataDir        string
	ProjectsFile   string
	MasterDataFile string
	ExportDir      string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dataDir := getEnv("DATA_DIR", "data")

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("PORT", 3001),
			FrontendURL: getEnv("FRONTEND_URL", "*"),
		},
		App: AppConfig{
			Name:        getEnv("APP_NAME", "dutoan-backend"),
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Storage: StorageConfig{
			Driver:         getEnv("STORE_DRIVER", DriverFile),
			DataDir:        dataDir,
			ProjectsFile:   getEnv("PROJECTS_FILE", filepath.Join(dataDir, "projects.json")),
			MasterDataFile: getEnv("MASTER_DATA_FILE", filepath.Join(dataDir, "master_data.json")),
			ExportDir:      getEnv("EXPORT_DIR", filepath.Join(dataDir, "exports")),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USERNAME", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_DATABASE", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Key:      getEnv("REDIS_KEY", "projects"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.ProjectsFile == "" {
			return fmt.Errorf("PROJECTS_FILE is required")
		}
	case DriverPostgres:
		if c.Database.User == "" {
			return fmt.Errorf("DB_USERNAME is required for the postgres store")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_DATABASE is required for the postgres store")
		}
	case DriverRedis:
		if c.Redis.Key == "" {
			return fmt.Errorf("REDIS_KEY is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Storage.Driver)
	}

	if c.Storage.ExportDir == "" {
		return fmt.Errorf("EXPORT_DIR is required")
	}

	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}
