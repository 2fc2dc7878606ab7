package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port           int      `yaml:"port" validate:"gt=0,lte=65535"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver" validate:"oneof=pgx postgres"`
	Host     string `yaml:"host" validate:"required"`
	Port     string `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Name     string `yaml:"name" validate:"required"`
	SSLMode  string `yaml:"sslmode"`
	TimeZone string `yaml:"timezone"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
}

type AuthConfig struct {
	Enabled           bool   `yaml:"enabled"`
	JWTSecret         string `yaml:"jwt_secret" validate:"required_if=Enabled true"`
	AdminUser         string `yaml:"admin_user" validate:"required_if=Enabled true"`
	AdminPasswordHash string `yaml:"admin_password_hash" validate:"required_if=Enabled true"`
}

type RankingConfig struct {
	// StrictCriteria rejects criteria other than price and speed instead of
	// returning an empty filter result or an unsorted list.
	StrictCriteria bool `yaml:"strict_criteria"`
}

type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Store    string         `yaml:"store" validate:"oneof=postgres memory"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Auth     AuthConfig     `yaml:"auth"`
	Ranking  RankingConfig  `yaml:"ranking"`
}

// Default returns the configuration used when nothing else is set.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{Port: 8080},
		Store:  "postgres",
		Database: DatabaseConfig{
			Driver:   "pgx",
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "password",
			Name:     "bus_service",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Log: LogConfig{File: "./logs/app.log", Level: "info"},
	}
}

// Load builds the configuration from defaults, the YAML file named by
// CONFIG_FILE (if any) and environment variables, in that order. A .env file
// in the working directory is loaded into the environment first.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found – relying on env vars")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	var err error
	if cfg.Server.Port, err = getEnvInt("PORT", cfg.Server.Port); err != nil {
		return err
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}
	cfg.Store = getEnv("STORE", cfg.Store)

	db := &cfg.Database
	db.Driver = getEnv("DB_DRIVER", db.Driver)
	db.Host = getEnv("DB_HOST", db.Host)
	db.Port = getEnv("DB_PORT", db.Port)
	db.User = getEnv("DB_USER", db.User)
	db.Password = getEnv("DB_PASSWORD", db.Password)
	db.Name = getEnv("DB_NAME", db.Name)
	db.SSLMode = getEnv("DB_SSLMODE", db.SSLMode)
	db.TimeZone = getEnv("DB_TIMEZONE", db.TimeZone)

	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)

	if cfg.Auth.Enabled, err = getEnvBool("AUTH_ENABLED", cfg.Auth.Enabled); err != nil {
		return err
	}
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.AdminUser = getEnv("ADMIN_USER", cfg.Auth.AdminUser)
	cfg.Auth.AdminPasswordHash = getEnv("ADMIN_PASSWORD_HASH", cfg.Auth.AdminPasswordHash)

	if cfg.Ranking.StrictCriteria, err = getEnvBool("RANKING_STRICT_CRITERIA", cfg.Ranking.StrictCriteria); err != nil {
		return err
	}
	return nil
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
