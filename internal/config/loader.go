package config

import (
	"github.com/spf13/viper"

	"github.com/uwdash/uwextract/internal/db"
)

// ExtractionConfig controls the batch pipeline.
type ExtractionConfig struct {
	ReferenceFile string
	Workers       int
	BatchSize     int
	OutputDir     string
}

// ReportConfig controls the optional read-only report API.
type ReportConfig struct {
	Addr           string
	AllowedOrigins []string
}

// Config is the full service configuration.
type Config struct {
	Database   db.Config
	Extraction ExtractionConfig
	Report     ReportConfig
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Database: db.DefaultConfig(),
		Extraction: ExtractionConfig{
			Workers:   4,
			BatchSize: 10,
			OutputDir: "./extraction_output",
		},
		Report: ReportConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
}

// Load reads config.yaml from configPath, with environment overrides mapped
// through the UW prefix (e.g. UW_DATABASE_HOST). A missing config file is not
// an error; defaults and env vars apply.
func Load(configPath string) (Config, error) {
	cfg := Defaults()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("UW")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("extraction.reference_file")
	v.BindEnv("extraction.workers")
	v.BindEnv("extraction.batch_size")
	v.BindEnv("extraction.output_dir")
	v.BindEnv("report.addr")

	// Config file is optional; defaults plus env are enough to run.
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
	if v.IsSet("extraction.reference_file") {
		cfg.Extraction.ReferenceFile = v.GetString("extraction.reference_file")
	}
	if v.IsSet("extraction.workers") {
		cfg.Extraction.Workers = v.GetInt("extraction.workers")
	}
	if v.IsSet("extraction.batch_size") {
		cfg.Extraction.BatchSize = v.GetInt("extraction.batch_size")
	}
	if v.IsSet("extraction.output_dir") {
		cfg.Extraction.OutputDir = v.GetString("extraction.output_dir")
	}
	if v.IsSet("report.addr") {
		cfg.Report.Addr = v.GetString("report.addr")
	}
	if v.IsSet("report.allowed_origins") {
		cfg.Report.AllowedOrigins = v.GetStringSlice("report.allowed_origins")
	}

	return cfg, nil
}
