// Package config holds the server settings.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr                string
	AllowOrigins        string
	AllowCredentials    bool
	ReadBufferSize      int
	WriteBufferSize     int
	MatchmakingInterval time.Duration
}

func Default() Config {
	return Config{
		Addr:                ":3000",
		AllowOrigins:        "http://localhost:5173",
		AllowCredentials:    true,
		ReadBufferSize:      1024,
		WriteBufferSize:     1024,
		MatchmakingInterval: time.Second,
	}
}

// Load applies CHESS_* environment overrides on top of Default.
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if v, ok := lookup("CHESS_ADDR"); ok {
		cfg.Addr = v
	}
	if v, ok := lookup("CHESS_ALLOW_ORIGINS"); ok {
		cfg.AllowOrigins = v
	}
	if v, ok := lookup("CHESS_ALLOW_CREDENTIALS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("CHESS_ALLOW_CREDENTIALS: %w", err)
		}
		cfg.AllowCredentials = b
	}
	for name, dst := range map[string]*int{
		"CHESS_WS_READ_BUFFER":  &cfg.ReadBufferSize,
		"CHESS_WS_WRITE_BUFFER": &cfg.WriteBufferSize,
	} {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", name, err)
		}
		*dst = n
	}
	if v, ok := lookup("CHESS_MATCHMAKING_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("CHESS_MATCHMAKING_INTERVAL: %w", err)
		}
		cfg.MatchmakingInterval = d
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address is empty")
	}
	if c.ReadBufferSize <= 0 || c.WriteBufferSize <= 0 {
		return fmt.Errorf("websocket buffer sizes must be positive")
	}
	if c.AllowCredentials && slices.Contains(c.Origins(), "*") {
		return fmt.Errorf("wildcard origin cannot be combined with credentials")
	}
	if c.MatchmakingInterval <= 0 {
		return fmt.Errorf("matchmaking interval must be positive")
	}
	return nil
}

// Origins splits AllowOrigins for the websocket origin check.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
