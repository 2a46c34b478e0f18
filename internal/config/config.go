// Package config binds the storage core's tunables — page size, buffer
// pool capacity and high-water/vacuum fractions, and the on-disk root —
// through viper, the way opa/cmd/internal/env binds its server flags
// through viper rather than hand-rolled flag parsing.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Defaults match the spec's named constants: a 0.95 buffer pool high-water
// mark and a 0.05 vacuum-fraction target free.
const (
	DefaultPageSize       = 4096
	DefaultBufferPoolSize = 64 * 1024 * 1024 // bytes
	DefaultHighWater      = 0.95
	DefaultVacuumFraction = 0.05
)

// Config holds the knobs every component in this module reads at startup.
type Config struct {
	// Root is the on-disk tree root holding the Metastore.
	Root string

	// PageSize is the fixed size, in bytes, of every Page this instance
	// builds.
	PageSize uint32

	// BufferPoolSize is the byte cap enforced by the buffer pool (I6).
	BufferPoolSize int64

	// HighWater and VacuumFraction are the buffer pool's eviction
	// thresholds (§4.8).
	HighWater      float64
	VacuumFraction float64

	// WALPath is the directory wal.Build opens/creates a .wal file
	// under (defaults to Root).
	WALPath string
}

// Load reads configuration from environment variables prefixed STORECORE_
// and, if present, a config file named by path (any format viper supports:
// yaml, json, toml). Unset values fall back to the documented defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STORECORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("root", "./storecore-data")
	v.SetDefault("page_size", DefaultPageSize)
	v.SetDefault("buffer_pool_size", DefaultBufferPoolSize)
	v.SetDefault("high_water", DefaultHighWater)
	v.SetDefault("vacuum_fraction", DefaultVacuumFraction)
	v.SetDefault("wal_path", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	root := v.GetString("root")
	walPath := v.GetString("wal_path")
	if walPath == "" {
		walPath = root
	}

	return Config{
		Root:           root,
		PageSize:       uint32(v.GetInt("page_size")),
		BufferPoolSize: v.GetInt64("buffer_pool_size"),
		HighWater:      v.GetFloat64("high_water"),
		VacuumFraction: v.GetFloat64("vacuum_fraction"),
		WALPath:        walPath,
	}, nil
}
