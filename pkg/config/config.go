// Package config loads diagrammer's TOML configuration.
//
// A configuration file is optional. Values that are not set keep the defaults
// returned by [Default]; command-line flags override both.
//
//	[storage]
//	backend   = "badger"
//	namespace = "work"
//
//	[server]
//	addr = "127.0.0.1:8080"
//
//	[diagram]
//	seed_file        = "~/diagrams/starter.json"
//	sanitize_on_load = true
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/diagrammer/pkg/diagram"
	derrors "github.com/matzehuels/diagrammer/pkg/errors"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendNull   = "null"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Backends lists every supported storage backend.
var Backends = []string{
	BackendFile, BackendBadger, BackendSQLite, BackendRedis, BackendMongo, BackendMemory, BackendNull,
}

// Config is the complete application configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Server  ServerConfig  `toml:"server"`
	Diagram DiagramConfig `toml:"diagram"`
	Log     LogConfig     `toml:"log"`
}

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Backend   string `toml:"backend"`
	Namespace string `toml:"namespace"`

	// Dir holds the file, badger and sqlite backends' data. Empty means the
	// XDG data directory.
	Dir string `toml:"dir"`

	// QuotaBytes limits the memory backend. Zero is unlimited.
	QuotaBytes int `toml:"quota_bytes"`

	Redis  RedisConfig  `toml:"redis"`
	Mongo  MongoConfig  `toml:"mongo"`
	Badger BadgerConfig `toml:"badger"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// BadgerConfig configures the badger backend.
type BadgerConfig struct {
	SyncWrites bool `toml:"sync_writes"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	IdleTimeout     time.Duration `toml:"idle_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	// AllowedOrigins enables CORS for a browser surface served elsewhere.
	AllowedOrigins []string `toml:"allowed_origins"`
}

// DiagramConfig controls how the diagram is seeded and edited.
type DiagramConfig struct {
	// SeedFile replaces the bundled starter diagram.
	SeedFile string `toml:"seed_file"`

	// SanitizeOnLoad drops edges with missing endpoints from a stored diagram.
	SanitizeOnLoad bool `toml:"sanitize_on_load"`

	// IDScheme is "clock" or "uuid".
	IDScheme string `toml:"id_scheme"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "diagrammer:"},
			Mongo:   MongoConfig{URI: "mongodb://localhost:27017", Database: "diagrammer", Collection: "kv"},
			Badger:  BadgerConfig{SyncWrites: true},
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Diagram: DiagramConfig{
			SanitizeOnLoad: true,
			IDScheme:       diagram.IDSchemeClock,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path on top of Default. Unknown keys are an error so typos do
// not go unnoticed.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file yields Default.
func LoadOptional(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	if !slices.Contains(Backends, c.Storage.Backend) {
		return derrors.New(derrors.ErrCodeInvalidInput,
			"unknown storage backend %q (want one of %s)", c.Storage.Backend, strings.Join(Backends, ", "))
	}
	if err := derrors.ValidateNamespace(c.Storage.Namespace); err != nil {
		return err
	}
	if c.Storage.QuotaBytes < 0 {
		return derrors.New(derrors.ErrCodeInvalidInput, "storage.quota_bytes cannot be negative")
	}
	switch c.Storage.Backend {
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return derrors.New(derrors.ErrCodeInvalidInput, "storage.redis.addr is required for the redis backend")
		}
	case BackendMongo:
		if c.Storage.Mongo.URI == "" {
			return derrors.New(derrors.ErrCodeInvalidInput, "storage.mongo.uri is required for the mongo backend")
		}
	}
	if c.Server.Addr == "" {
		return derrors.New(derrors.ErrCodeInvalidInput, "server.addr cannot be empty")
	}
	if _, err := diagram.NewIDGenerator(c.Diagram.IDScheme); err != nil {
		return derrors.Wrap(derrors.ErrCodeInvalidInput, err, "diagram.id_scheme")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return derrors.Wrap(derrors.ErrCodeInvalidInput, err, "log.level")
	}
	return nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
