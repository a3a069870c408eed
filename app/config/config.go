package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Images   ImagesConfig
}

type ServerConfig struct {
	AppEnv          string
	Addr            string
	FrontURL        string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type ImagesConfig struct {
	Dir         string
	Placeholder string
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "dev" || c.Server.AppEnv == "development"
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:          getEnv("APP_ENV", "dev"),
			Addr:            getEnv("HTTP_ADDR", ":9000"),
			FrontURL:        getEnv("FRONT_URL", "http://localhost:3000"),
			MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_BYTES", 32<<20)),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "debug"),
			Encoding: getEnv("LOG_ENCODING", "console"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", "db/mercari.sqlite3"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Images: ImagesConfig{
			Dir:         getEnv("IMAGES_DIR", "images"),
			Placeholder: getEnv("PLACEHOLDER_IMAGE", "default.jpg"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
