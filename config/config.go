package config

import (
	"errors"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
	Address  string `yaml:"address" env:"ADDRESS" env-default:":8000"`
	DBDSN    string `yaml:"db_dsn" env:"DB_DSN" env-default:"admin:12345678@tcp(127.0.0.1:3306)/onboarding?charset=utf8mb4&parseTime=True&loc=Local"`

	// UploadDir is where the local file-storage adapter keeps attachment
	// blobs.
	UploadDir string `yaml:"upload_dir" env:"UPLOAD_DIR" env-default:"./uploads"`

	// OverdueSweep is a cron expression for the optional sweep that
	// persists deadline_status. Empty disables the sweep; the read-time
	// overdue check runs regardless.
	OverdueSweep string `yaml:"overdue_sweep" env:"OVERDUE_SWEEP" env-default:""`
}

func MustLoad(configPath string) Config {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read env: %s", err)
		}
		return cfg
	}

	// Fall back to env-only when the file does not exist.
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if errors.As(err, &pe) {
			if err := cleanenv.ReadEnv(&cfg); err != nil {
				log.Fatalf("cannot read env: %s", err)
			}
			return cfg
		}
		log.Fatalf("cannot read config %q: %s", configPath, err)
	}

	return cfg
}
