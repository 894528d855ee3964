// Package config provides JSON-backed configuration with environment
// overrides, ported from the teacher's
// _examples/TheEntropyCollective-noisefs/pkg/infrastructure/config/config.go:
// a struct of named sub-configs,
// OFF_*-prefixed environment overrides, and validation before use.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all OFF storage core configuration.
type Config struct {
	Store   StoreConfig   `json:"store"`
	Tuple   TupleConfig   `json:"tuple"`
	Logging LoggingConfig `json:"logging"`
}

// StoreConfig selects and configures the backing store.Backend.
type StoreConfig struct {
	Backend string `json:"backend"` // "memdisk", "diskfs", "ipfs"
	Root    string `json:"root"`    // diskfs root directory
	IPFSAPI string `json:"ipfs_api"`
}

// TupleConfig sets the system-wide tuple width and default block size
// label (spec §3 "Tuple": "T >= 2, system-wide constant, typically 3").
type TupleConfig struct {
	Size      int    `json:"size"`
	BlockSize string `json:"block_size"` // one of blocks.BlockSize's String() values
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Default returns sensible defaults: an in-memory store, tuple size 3,
// Small blocks, info-level text logging.
func Default() *Config {
	return &Config{
		Store:   StoreConfig{Backend: "memdisk"},
		Tuple:   TupleConfig{Size: 3, BlockSize: "Small"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads configPath (if non-empty and present), applies OFF_*
// environment overrides, validates, and returns the result.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, c)
}

func (c *Config) applyEnvironmentOverrides() {
	if v := os.Getenv("OFF_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("OFF_STORE_ROOT"); v != "" {
		c.Store.Root = v
	}
	if v := os.Getenv("OFF_IPFS_API"); v != "" {
		c.Store.IPFSAPI = v
	}
	if v := os.Getenv("OFF_TUPLE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Tuple.Size = n
		}
	}
	if v := os.Getenv("OFF_BLOCK_SIZE"); v != "" {
		c.Tuple.BlockSize = v
	}
	if v := os.Getenv("OFF_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("OFF_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// Validate rejects a Config whose values could never produce a working
// store/tuple configuration.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Store.Backend) {
	case "memdisk", "diskfs", "ipfs":
	default:
		return fmt.Errorf("unknown store backend: %s", c.Store.Backend)
	}
	if c.Store.Backend == "diskfs" && c.Store.Root == "" {
		return fmt.Errorf("diskfs backend requires store.root")
	}
	if c.Store.Backend == "ipfs" && c.Store.IPFSAPI == "" {
		return fmt.Errorf("ipfs backend requires store.ipfs_api")
	}
	if c.Tuple.Size < 2 {
		return fmt.Errorf("tuple.size must be >= 2, got %d", c.Tuple.Size)
	}
	return nil
}
