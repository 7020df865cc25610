package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// fileConfig is the netchan-demo config.toml key mapping.
type fileConfig struct {
	Addr           string `toml:"addr"`
	PollIntervalMS int    `toml:"poll_interval_ms"`
	QueueSize      int    `toml:"queue_size"`
}

func defaultConfig() fileConfig {
	return fileConfig{Addr: "127.0.0.1:9100"}
}

func (c fileConfig) pollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// loadConfig reads the TOML config at path, overlaying its values on the
// defaults. An empty path keeps the defaults. A non-empty addr flag wins over
// both.
func loadConfig(path, addr string) (fileConfig, error) {
	cfg := defaultConfig()
	if path != "" {
		var raw fileConfig
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return fileConfig{}, fmt.Errorf("load config: %w", err)
		}
		if meta.IsDefined("addr") {
			cfg.Addr = strings.TrimSpace(raw.Addr)
		}
		if meta.IsDefined("poll_interval_ms") {
			cfg.PollIntervalMS = raw.PollIntervalMS
		}
		if meta.IsDefined("queue_size") {
			cfg.QueueSize = raw.QueueSize
		}
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if cfg.Addr == "" {
		return fileConfig{}, fmt.Errorf("no service address configured")
	}
	return cfg, nil
}
