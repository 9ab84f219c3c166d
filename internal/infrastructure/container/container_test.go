package container

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gdugdh24/match-matrix-backend/internal/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Storage: config.StorageConfig{Type: config.StorageTypeMemory},
		Matching: config.MatchingConfig{
			Strategy:         "greedy",
			Scorer:           "similarity",
			ScoreMin:         60,
			ScoreMax:         99,
			OnDemandScoreMin: 75,
			OnDemandScoreMax: 98,
			LockTTL:          time.Second,
			LockWait:         time.Second,
			ExplanationTTL:   time.Hour,
		},
	}
}

func TestNewContainer_Memory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := memoryConfig()
	cfg.Matching.AutoFillInterval = time.Hour

	c, err := NewContainer(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.Server == nil || c.Engine == nil {
		t.Fatalf("expected server and engine to be wired")
	}
	if c.Scheduler == nil {
		t.Fatalf("expected scheduler when auto fill interval is set")
	}
	if c.DB != nil || c.Redis != nil || c.Gemini != nil {
		t.Fatalf("expected no external clients")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewContainer_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	host, portStr, err := net.SplitHostPort(mr.Addr())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	cfg := memoryConfig()
	cfg.Redis = config.RedisConfig{Host: host, Port: port}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := NewContainer(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer c.Close()

	if c.Redis == nil {
		t.Fatalf("expected redis client")
	}

	// generate goes through the distributed lock
	if _, err := c.Engine.GenerateMatches(context.Background()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if mr.Exists("lock:matching:write") {
		t.Fatalf("lock was not released")
	}
}

func TestNewContainer_RedisUnavailable(t *testing.T) {
	cfg := memoryConfig()
	cfg.Redis = config.RedisConfig{Host: "127.0.0.1", Port: 1}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := NewContainer(context.Background(), cfg, logger); err == nil {
		t.Fatalf("expected error when redis is unreachable")
	}
}
