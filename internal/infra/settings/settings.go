// Package settings loads config.Config from a file, the environment and
// .env files.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/whhaicheng/deal-bench/internal/domain/config"
)

// EnvPrefix prefixes every environment variable, e.g.
// DEALBENCH_SESSION_RUNS or DEALBENCH_BACKENDS_MONGODB_PASSWORD.
const EnvPrefix = "DEALBENCH"

// secretKeys are not serialized by config.Config and only come from the
// environment or a config file.
var secretKeys = []string{
	"backends.surrealdb.password",
	"backends.mongodb.password",
	"backends.arangodb.password",
	"backends.postgresql.password",
}

// Options selects the sources of a Load.
type Options struct {
	// ConfigFile is an explicit YAML, JSON or TOML file. When empty,
	// deal-bench.yaml is looked up in the working directory and is optional.
	ConfigFile string

	// EnvFiles are loaded into the process environment first. Missing
	// files are ignored. Variables already set are not overridden.
	EnvFiles []string

	// Overrides are applied last, keyed by dotted config key.
	Overrides map[string]interface{}
}

// Loader reads configuration through one viper instance.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with every default of config.DefaultConfig.
func NewLoader() (*Loader, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults, err := flatten(config.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("seed defaults: %w", err)
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range secretKeys {
		v.SetDefault(key, "")
	}

	return &Loader{v: v}, nil
}

// Load reads the configuration and validates it.
func (l *Loader) Load(opts Options) (*config.Config, error) {
	for _, f := range opts.EnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	if opts.ConfigFile != "" {
		l.v.SetConfigFile(opts.ConfigFile)
	} else {
		l.v.AddConfigPath(".")
		l.v.SetConfigName("deal-bench")
	}
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for key, value := range opts.Overrides {
		l.v.Set(key, value)
	}

	cfg := &config.Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigFileUsed returns the file read by the last Load, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Load is a convenience for NewLoader().Load(opts).
func Load(opts Options) (*config.Config, error) {
	l, err := NewLoader()
	if err != nil {
		return nil, err
	}
	return l.Load(opts)
}

// flatten returns the dotted keys of cfg's JSON form. Every key must be
// registered as a default for AutomaticEnv to reach it on Unmarshal.
func flatten(cfg *config.Config) (map[string]interface{}, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var tree map[string]interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}

	out := make(map[string]interface{})
	var walk func(prefix string, m map[string]interface{})
	walk = func(prefix string, m map[string]interface{}) {
		for k, v := range m {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if sub, ok := v.(map[string]interface{}); ok {
				walk(key, sub)
				continue
			}
			out[key] = v
		}
	}
	walk("", tree)
	return out, nil
}
