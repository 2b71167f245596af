package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
	PageSize      int           `yaml:"page_size"`
	AdminPageSize int           `yaml:"admin_page_size"`
}

func LoadConfig(path string) (*Config, error) {
	// .env is optional; ignore when absent
	_ = godotenv.Load()

	cfg := &Config{
		Addr:          getEnv("NAEBAK_ADDR", ":8080"),
		JWTSecret:     getEnv("NAEBAK_JWT_SECRET", "supersecretkey"),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("NAEBAK_DATABASE_PATH", "naebak.db"),
		TokenDuration: 24 * time.Hour,
		PageSize:      12,
		AdminPageSize: 20,
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
