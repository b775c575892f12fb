// Package config loads and validates PlantView configuration.
//
// Configuration is a single TOML file. Every field has a working default so
// the editor and server run with no file at all; the file only overrides.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/plantview/pkg/document"
	"github.com/matzehuels/plantview/pkg/errors"
	"github.com/matzehuels/plantview/pkg/slots"
)

// Slot backend names accepted by SlotBackend.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config holds all tunables for the editor, server, and engine adapter.
type Config struct {
	// MaxContentChars caps diagram source size accepted by the validator.
	MaxContentChars int `toml:"max_content_chars"`

	// DebounceMs is the editor quiet period before a preview request fires.
	DebounceMs int `toml:"debounce_ms"`

	// RequestTimeoutS is the hard ceiling for one engine call, in seconds.
	RequestTimeoutS int `toml:"request_timeout_s"`

	// MaxStorageBytes is the total byte budget across all save slots.
	MaxStorageBytes int `toml:"max_storage_bytes"`

	// EngineBaseURL is the rendering engine endpoint, e.g. a PlantUML
	// server's base URL.
	EngineBaseURL string `toml:"engine_base_url"`

	// EngineConcurrencyLimit bounds parallel requests toward the engine.
	EngineConcurrencyLimit int `toml:"engine_concurrency_limit"`

	// AdmissionWaitMs bounds how long a request waits for an engine permit.
	AdmissionWaitMs int `toml:"admission_wait_ms"`

	// ListenAddr is the API server bind address.
	ListenAddr string `toml:"listen_addr"`

	// ServerURL is where the editor reaches the API server.
	ServerURL string `toml:"server_url"`

	// SlotBackend selects the slot store: file, redis, or mongo.
	SlotBackend string `toml:"slot_backend"`

	// SlotDir is the slot directory for the file backend.
	SlotDir string `toml:"slot_dir"`

	// RedisAddr is the host:port for the redis backend.
	RedisAddr string `toml:"redis_addr"`

	// MongoURI is the connection string for the mongo backend.
	MongoURI string `toml:"mongo_uri"`

	// CacheDir holds rendered artifacts. Empty disables the cache.
	CacheDir string `toml:"cache_dir"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		MaxContentChars:        document.DefaultMaxChars,
		DebounceMs:             500,
		RequestTimeoutS:        30,
		MaxStorageBytes:        slots.DefaultMaxBytes,
		EngineBaseURL:          "http://localhost:8080/plantuml",
		EngineConcurrencyLimit: 4,
		AdmissionWaitMs:        1000,
		ListenAddr:             ":9021",
		ServerURL:              "http://localhost:9021",
		SlotBackend:            BackendFile,
		SlotDir:                defaultSlotDir(),
		CacheDir:               defaultCacheDir(),
	}
}

func defaultSlotDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".plantview/slots"
	}
	return home + "/.plantview/slots"
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return dir + "/plantview"
}

// Load reads a TOML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "failed to load config from %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	if c.MaxContentChars <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_content_chars must be positive, got %d", c.MaxContentChars)
	}
	if c.DebounceMs < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "debounce_ms must not be negative, got %d", c.DebounceMs)
	}
	if c.RequestTimeoutS <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "request_timeout_s must be positive, got %d", c.RequestTimeoutS)
	}
	if c.MaxStorageBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_storage_bytes must be positive, got %d", c.MaxStorageBytes)
	}
	if c.EngineBaseURL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "engine_base_url must be set")
	}
	if c.EngineConcurrencyLimit <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "engine_concurrency_limit must be positive, got %d", c.EngineConcurrencyLimit)
	}
	switch c.SlotBackend {
	case BackendFile, BackendRedis, BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "slot_backend must be one of file, redis, mongo; got %q", c.SlotBackend)
	}
	if c.SlotBackend == BackendRedis && c.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "redis_addr must be set for the redis slot backend")
	}
	if c.SlotBackend == BackendMongo && c.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "mongo_uri must be set for the mongo slot backend")
	}
	return nil
}

// Debounce returns the editor debounce window as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// RequestTimeout returns the engine call ceiling as a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutS) * time.Second
}

// AdmissionWait returns the engine permit wait bound as a duration.
func (c Config) AdmissionWait() time.Duration {
	return time.Duration(c.AdmissionWaitMs) * time.Millisecond
}
