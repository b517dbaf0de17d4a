// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Storage backend names accepted in Config.Storage.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile, when set, sends log output to a rotating file instead of stdout.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Storage selects the progress store backend: memory or postgres.
	Storage string `koanf:"storage"`

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string `koanf:"postgres_dsn"`

	// ShardCount configures the number of shards in the in-memory store.
	ShardCount int `koanf:"shard_count"`

	// CatalogPath points at the YAML catalog seeding the in-memory
	// user/subject directories.
	CatalogPath string `koanf:"catalog_path"`

	// MaxPageSize caps GET /leaderboard?page_size.
	MaxPageSize int `koanf:"max_page_size"`

	// DefaultPageSize is used when page_size is omitted.
	DefaultPageSize int `koanf:"default_page_size"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		Storage:         StorageMemory,
		ShardCount:      16,
		MaxPageSize:     100,
		DefaultPageSize: 10,
	}
}
