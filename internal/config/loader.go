package config

import (
	"github.com/spf13/viper"

	"github.com/rfmelo/corretora/internal/db"
)

// Config aggregates everything the server needs at startup.
type Config struct {
	Database   db.Config
	ServerAddr string
	LogLevel   string
}

// Load reads config.yaml from configPath, with environment overrides
// (APP_ prefix, e.g. APP_DATABASE_HOST).
func Load(configPath string) (Config, error) {
	cfg := Config{
		Database:   db.DefaultConfig(),
		ServerAddr: ":8080",
		LogLevel:   "info",
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.addr")
	v.BindEnv("logging.level")

	// Config file is optional; defaults + env vars are enough to boot.
	_ = v.ReadInConfig()

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("server.addr") {
		cfg.ServerAddr = v.GetString("server.addr")
	}
	if v.IsSet("logging.level") {
		cfg.LogLevel = v.GetString("logging.level")
	}

	return cfg, nil
}
