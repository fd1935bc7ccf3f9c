// Package qpactconfig loads and hot-reloads qpact runtime configuration,
// grounded on GoCodeAlone-modular's feeders package (config/feeders):
// a Feeder interface with one method per source, TOML/YAML/env
// implementations, and a fsnotify-backed watcher that re-feeds on change.
package qpactconfig

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/golobby/cast"
	"gopkg.in/yaml.v3"
)

// Config holds the tunables an operator can set without recompiling: the
// Framework's tick interval, each active object's default queue size, and
// the default priority band new active objects are assigned from.
type Config struct {
	TickIntervalMillis int `toml:"tick_interval_millis" yaml:"tick_interval_millis"`
	DefaultQueueSize   int `toml:"default_queue_size" yaml:"default_queue_size"`
	DefaultPriority    int `toml:"default_priority" yaml:"default_priority"`
}

// DefaultConfig matches spec's stated defaults: a 10ms tick and a queue
// size generous enough for typical event bursts.
func DefaultConfig() Config {
	return Config{
		TickIntervalMillis: 10,
		DefaultQueueSize:   32,
		DefaultPriority:    1,
	}
}

// Feeder populates a *Config from one configuration source.
type Feeder interface {
	Feed(cfg *Config) error
}

// TOMLFeeder reads Config fields from a TOML file.
type TOMLFeeder struct{ Path string }

func (f TOMLFeeder) Feed(cfg *Config) error {
	_, err := toml.DecodeFile(f.Path, cfg)
	return err
}

// YAMLFeeder reads Config fields from a YAML file.
type YAMLFeeder struct{ Path string }

func (f YAMLFeeder) Feed(cfg *Config) error {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// EnvFeeder overlays environment variables (QPACT_TICK_INTERVAL_MILLIS,
// QPACT_DEFAULT_QUEUE_SIZE, QPACT_DEFAULT_PRIORITY) onto cfg, using
// golobby/cast the same way qpact.PayloadAs does for event payloads, so a
// string environment value is soft-converted to the field's int type.
type EnvFeeder struct{ Prefix string }

func (f EnvFeeder) Feed(cfg *Config) error {
	prefix := f.Prefix
	if prefix == "" {
		prefix = "QPACT_"
	}
	fields := []struct {
		key string
		dst *int
	}{
		{prefix + "TICK_INTERVAL_MILLIS", &cfg.TickIntervalMillis},
		{prefix + "DEFAULT_QUEUE_SIZE", &cfg.DefaultQueueSize},
		{prefix + "DEFAULT_PRIORITY", &cfg.DefaultPriority},
	}
	for _, field := range fields {
		raw, ok := os.LookupEnv(field.key)
		if !ok {
			continue
		}
		v, err := cast.ToInt(raw)
		if err != nil {
			return err
		}
		*field.dst = v
	}
	return nil
}

// Load starts from DefaultConfig and applies each feeder in order, later
// feeders overriding earlier ones.
func Load(feeders ...Feeder) (Config, error) {
	cfg := DefaultConfig()
	for _, f := range feeders {
		if err := f.Feed(&cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}
