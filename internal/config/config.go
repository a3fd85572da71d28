// Package config loads process configuration from defaults, a YAML file,
// POLY_ environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultPath is the config file read when --config is not given. It may
// be absent.
const DefaultPath = "polyglot.yaml"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Profiles  ProfilesConfig  `koanf:"profiles"`
	Translate TranslateConfig `koanf:"translate"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json or text
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

// ProfilesConfig points at an optional provider-profile overlay file.
type ProfilesConfig struct {
	Path string `koanf:"path"`
}

type TranslateConfig struct {
	// DefaultProvider is applied to decoded requests when the caller names
	// no provider. Empty means no normalization.
	DefaultProvider string `koanf:"default_provider"`
}

var defaults = map[string]any{
	"server.port":             8080,
	"server.request_timeout":  "30s",
	"server.shutdown_timeout": "30s",
	"log.level":               "info",
	"log.format":              "json",
	"telemetry.enabled":       false,
	"telemetry.service_name":  "polyglot-translate",
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"port":             "server.port",
	"request-timeout":  "server.request_timeout",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"telemetry":        "telemetry.enabled",
	"profiles":         "profiles.path",
	"default-provider": "translate.default_provider",
}

// RegisterFlags defines the flags Load understands.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", DefaultPath, "path to the YAML config file")
	flags.Int("port", 8080, "HTTP listen port")
	flags.Duration("request-timeout", 30*time.Second, "per-request timeout")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json, text)")
	flags.Bool("telemetry", false, "export traces to stdout")
	flags.String("profiles", "", "provider profile overlay file")
	flags.String("default-provider", "", "provider to normalize requests for when none is given")
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load builds the configuration. flags may be nil. A missing default config
// file is tolerated; a missing file named by --config is an error.
func Load(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, err
		}
	}

	path, explicit := DefaultPath, false
	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			path, explicit = strings.TrimSpace(f.Value.String()), f.Changed
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("load config %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider("POLY_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "POLY_")), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, err
		}
	}

	for key, value := range k.All() {
		if s, ok := value.(string); ok && strings.Contains(s, "${") {
			if err := k.Set(key, substituteEnvVars(s)); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}
