package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/moffa90/go-nxt/protocol"
	"github.com/moffa90/go-nxt/usbdev"
)

// config is the effective CLI configuration: defaults, then the optional
// TOML file, then command line flags.
type config struct {
	Verbosity      int
	ReadChunkSize  int
	WriteChunkSize int
	USB            usbdev.Config
	MetricsFile    string
	LogLevel       string
}

type fileConfig struct {
	Verbosity      int    `toml:"verbosity"`
	ReadChunkSize  int    `toml:"read_chunk_size"`
	WriteChunkSize int    `toml:"write_chunk_size"`
	ReadTimeout    string `toml:"read_timeout"`
	WriteTimeout   string `toml:"write_timeout"`
	VendorID       int64  `toml:"vendor_id"`
	ProductID      int64  `toml:"product_id"`
	MetricsFile    string `toml:"metrics_file"`
	LogLevel       string `toml:"log_level"`
}

func defaultConfig() config {
	return config{
		ReadChunkSize:  protocol.MaxReadChunk,
		WriteChunkSize: protocol.MaxWriteChunk,
		USB:            usbdev.DefaultConfig(),
		LogLevel:       "info",
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("verbosity") {
		if raw.Verbosity < 0 {
			return config{}, fmt.Errorf("verbosity must not be negative, got %d", raw.Verbosity)
		}
		cfg.Verbosity = raw.Verbosity
	}

	if meta.IsDefined("read_chunk_size") {
		if raw.ReadChunkSize < 1 || raw.ReadChunkSize > protocol.MaxReadChunk {
			return config{}, fmt.Errorf("read_chunk_size must be 1..%d, got %d", protocol.MaxReadChunk, raw.ReadChunkSize)
		}
		cfg.ReadChunkSize = raw.ReadChunkSize
	}

	if meta.IsDefined("write_chunk_size") {
		if raw.WriteChunkSize < 1 || raw.WriteChunkSize > protocol.MaxWriteChunk {
			return config{}, fmt.Errorf("write_chunk_size must be 1..%d, got %d", protocol.MaxWriteChunk, raw.WriteChunkSize)
		}
		cfg.WriteChunkSize = raw.WriteChunkSize
	}

	if meta.IsDefined("read_timeout") {
		d, err := parseTimeout(raw.ReadTimeout)
		if err != nil {
			return config{}, fmt.Errorf("parse read_timeout: %w", err)
		}
		cfg.USB.ReadTimeout = d
	}

	if meta.IsDefined("write_timeout") {
		d, err := parseTimeout(raw.WriteTimeout)
		if err != nil {
			return config{}, fmt.Errorf("parse write_timeout: %w", err)
		}
		cfg.USB.WriteTimeout = d
	}

	if meta.IsDefined("vendor_id") {
		id, err := usbID("vendor_id", raw.VendorID)
		if err != nil {
			return config{}, err
		}
		cfg.USB.VendorID = id
	}

	if meta.IsDefined("product_id") {
		id, err := usbID("product_id", raw.ProductID)
		if err != nil {
			return config{}, err
		}
		cfg.USB.ProductID = id
	}

	if meta.IsDefined("metrics_file") {
		cfg.MetricsFile = strings.TrimSpace(raw.MetricsFile)
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}

	return cfg, nil
}

func parseTimeout(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

func usbID(key string, v int64) (uint16, error) {
	if v <= 0 || v > 0xFFFF {
		return 0, fmt.Errorf("%s must be 0x0001..0xFFFF, got %d", key, v)
	}
	return uint16(v), nil
}
