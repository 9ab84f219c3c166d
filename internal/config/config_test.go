package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_TYPE", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Storage.Type != StorageTypeMemory {
		t.Fatalf("unexpected server/storage %+v %+v", cfg.Server, cfg.Storage)
	}
	m := cfg.Matching
	if m.Strategy != "random" || m.Scorer != "random" {
		t.Fatalf("unexpected matching defaults %+v", m)
	}
	if m.ScoreMin != 60 || m.ScoreMax != 99 || m.OnDemandScoreMin != 75 || m.OnDemandScoreMax != 98 {
		t.Fatalf("unexpected score ranges %+v", m)
	}
	if m.LockTTL != 30*time.Second || m.AutoFillInterval != 0 || m.ExplanationTTL != 24*time.Hour {
		t.Fatalf("unexpected durations %+v", m)
	}
	if cfg.RedisEnabled() {
		t.Fatalf("redis must be off without REDIS_HOST")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_TYPE", "POSTGRES")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_NAME", "matrix")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("MATCH_STRATEGY", "greedy")
	t.Setenv("MATCH_SCORER", "similarity")
	t.Setenv("MATCH_AUTO_FILL_INTERVAL", "2m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Storage.Type != StorageTypePostgres || cfg.Database.GetDSN() != "host=db port=5432 user=app password= dbname=matrix sslmode=disable" {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
	if !cfg.RedisEnabled() || cfg.Redis.GetAddr() != "cache:6379" {
		t.Fatalf("unexpected redis config %+v", cfg.Redis)
	}
	if cfg.Matching.Strategy != "greedy" || cfg.Matching.Scorer != "similarity" || cfg.Matching.AutoFillInterval != 2*time.Minute {
		t.Fatalf("unexpected matching config %+v", cfg.Matching)
	}
	if cfg.Logging.SlogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage: StorageConfig{Type: StorageTypeMemory},
			Matching: MatchingConfig{
				Strategy: "random", Scorer: "random",
				ScoreMin: 60, ScoreMax: 99, OnDemandScoreMin: 75, OnDemandScoreMax: 98,
				LockTTL: time.Second,
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing db host", func(c *Config) { c.Storage.Type = StorageTypePostgres }},
		{"unknown storage", func(c *Config) { c.Storage.Type = "sqlite" }},
		{"unknown strategy", func(c *Config) { c.Matching.Strategy = "stable" }},
		{"unknown scorer", func(c *Config) { c.Matching.Scorer = "ml" }},
		{"inverted range", func(c *Config) { c.Matching.ScoreMin, c.Matching.ScoreMax = 90, 10 }},
		{"range above 100", func(c *Config) { c.Matching.OnDemandScoreMax = 101 }},
		{"zero lock ttl", func(c *Config) { c.Matching.LockTTL = 0 }},
		{"negative interval", func(c *Config) { c.Matching.AutoFillInterval = -time.Second }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("baseline config invalid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestSlogLevel_Fallback(t *testing.T) {
	l := LoggingConfig{Level: "loud"}
	if l.SlogLevel() != slog.LevelInfo {
		t.Fatalf("expected info fallback")
	}
}
