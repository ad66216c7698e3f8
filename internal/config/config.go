// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"os"
	"time"
	_ "time/tzdata"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultDBPath         = "./honorarios.db"
	defaultPort           = "8080"
	defaultEnv            = "development"
	defaultLogLevel       = "info"
	defaultTimezone       = "America/Sao_Paulo"
	defaultMaxUploadBytes = 10 << 20
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	DBPath         string
	Port           string
	Env            string
	LogLevel       string
	OfficeName     string
	Timezone       string
	MaxUploadBytes int64

	Location *time.Location
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == "development" || c.Env == "dev"
}

// Load reads ".env" from the working directory, if present, and then the environment.
func Load() (Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path. Values already present in the
// environment are never overwritten by the file.
func LoadFrom(dotenvPath string) (Config, error) {
	if err := godotenv.Load(dotenvPath); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrapf(err, "load %s", dotenvPath)
	}

	v := viper.New()
	v.SetDefault("db_path", defaultDBPath)
	v.SetDefault("port", defaultPort)
	v.SetDefault("app_env", defaultEnv)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("office_name", "")
	v.SetDefault("timezone", defaultTimezone)
	v.SetDefault("max_upload_bytes", defaultMaxUploadBytes)
	v.AutomaticEnv()

	cfg := Config{
		DBPath:         v.GetString("db_path"),
		Port:           v.GetString("port"),
		Env:            v.GetString("app_env"),
		LogLevel:       v.GetString("log_level"),
		OfficeName:     v.GetString("office_name"),
		Timezone:       v.GetString("timezone"),
		MaxUploadBytes: v.GetInt64("max_upload_bytes"),
	}

	if cfg.MaxUploadBytes <= 0 {
		return Config{}, errors.Newf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Config{}, errors.Wrapf(err, "load timezone %q", cfg.Timezone)
	}
	cfg.Location = loc

	return cfg, nil
}
