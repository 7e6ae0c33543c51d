package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr                  string         `yaml:"addr"`
	JWTSecret             string         `yaml:"jwt_secret"`
	APITimeout            time.Duration  `yaml:"timeout"`
	DatabasePath          string         `yaml:"database_path"`
	TokenDuration         time.Duration  `yaml:"token_duration"`
	UploadDir             string         `yaml:"upload_dir"`
	DeliverySLA           time.Duration  `yaml:"delivery_sla"`
	WeeklySubmissionLimit int            `yaml:"weekly_submission_limit"`
	NotifyWorkers         int            `yaml:"notify_workers"`
	Telegram              TelegramConfig `yaml:"telegram"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:                  getEnv("PATTERNSCOPE_ADDR", ":8080"),
		JWTSecret:             getEnv("PATTERNSCOPE_JWT_SECRET", "supersecretkey"),
		APITimeout:            15 * time.Second,
		DatabasePath:          getEnv("PATTERNSCOPE_DATABASE_PATH", "patternscope.db"),
		TokenDuration:         24 * time.Hour,
		UploadDir:             getEnv("PATTERNSCOPE_UPLOAD_DIR", "uploads"),
		DeliverySLA:           8 * time.Hour,
		WeeklySubmissionLimit: 10,
		NotifyWorkers:         2,
		Telegram: TelegramConfig{
			Token:  getEnv("PATTERNSCOPE_TELEGRAM_TOKEN", ""),
			ChatID: getEnvInt64("PATTERNSCOPE_TELEGRAM_CHAT_ID", 0),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}

	return def
}
