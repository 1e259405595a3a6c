package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/anthanhphan/gosdk/conflux"
	"github.com/anthanhphan/gosdk/logger"
)

// Config holds Locator Service configuration
type Config struct {
	Server    ServerConfig     `json:"server" yaml:"server"`
	Node      NodeConfig       `json:"node" yaml:"node"`
	Gossip    GossipConfig     `json:"gossip" yaml:"gossip"`
	Ring      RingConfig       `json:"ring" yaml:"ring"`
	Keyspaces []KeyspaceConfig `json:"keyspaces" yaml:"keyspaces"`
	Redis     RedisConfig      `json:"redis" yaml:"redis"`
	Logger    logger.Config    `json:"logger" yaml:"logger"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// NodeConfig describes the local node. Endpoint is the address other nodes
// see in replica lists.
type NodeConfig struct {
	Name          string  `json:"name" yaml:"name"`
	Endpoint      string  `json:"endpoint" yaml:"endpoint"`
	Datacenter    string  `json:"datacenter" yaml:"datacenter"`
	Rack          string  `json:"rack" yaml:"rack"`
	NumTokens     int     `json:"num_tokens" yaml:"num_tokens"`
	InitialTokens []int64 `json:"initial_tokens" yaml:"initial_tokens"`
}

type GossipConfig struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`
	BindAddr string   `json:"bind_addr" yaml:"bind_addr"`
	Port     int      `json:"port" yaml:"port"`
	Seeds    []string `json:"seeds" yaml:"seeds"`
}

// RingConfig points at an optional static ring description loaded at startup.
type RingConfig struct {
	File string `json:"file" yaml:"file"`
}

type KeyspaceConfig struct {
	Name    string            `json:"name" yaml:"name"`
	Class   string            `json:"class" yaml:"class"`
	Options map[string]string `json:"options" yaml:"options"`
}

type RedisConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8090",
		},
		Node: NodeConfig{
			Endpoint:   "127.0.0.1:9042",
			Datacenter: "datacenter1",
			Rack:       "rack1",
			NumTokens:  16,
		},
		Gossip: GossipConfig{
			Enabled:  true,
			BindAddr: "127.0.0.1",
			Port:     7946,
		},
		Keyspaces: []KeyspaceConfig{
			{
				Name:    "system",
				Class:   "org.apache.cassandra.locator.SimpleStrategy",
				Options: map[string]string{"replication_factor": "1"},
			},
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Logger: logger.Config{
			LogLevel:    logger.LevelInfo,
			LogEncoding: logger.EncodingJSON,
		},
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		env := os.Getenv("ENV")
		if env == "" {
			env = "local"
		}
		configPath = filepath.Join("internal", "locator", "config", env+".yaml")
	}

	cfg := DefaultConfig()

	parsedCfg, err := conflux.ParseConfig(configPath, cfg)
	if err != nil {
		// The logger is configured from this file, so report through log.
		log.Printf("Config file not found or failed to parse, using defaults if file not specified. Path: %s, Error: %v", configPath, err)
		if path != "" {
			return nil, err
		}
		return cfg, nil
	}

	return parsedCfg, nil
}

// MustLoad loads configuration or exits on error
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
