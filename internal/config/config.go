// Package config loads the nodetypeobjects settings from defaults, an
// optional YAML file, environment variables and command line overrides.
// Later sources take precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/syssam/nodetypeobjects/compiler/load"
	"github.com/syssam/nodetypeobjects/internal/logger"
)

const (
	// FileName is the configuration file looked up in the working directory.
	FileName = "nodetypeobjects.yaml"
	// EnvPrefix prefixes environment variables, e.g. NODETYPEOBJECTS_LOG_LEVEL.
	EnvPrefix = "NODETYPEOBJECTS_"
)

// DefaultSchemaSet is the schema set used when none is selected.
const DefaultSchemaSet = "default"

// Config holds all settings of a run.
type Config struct {
	// Packages is the directory searched for packages.
	Packages string `koanf:"packages" validate:"required"`
	// Target selects the generated language.
	Target string `koanf:"target" validate:"oneof=php go"`
	// Workers limits concurrent node type generation.
	Workers int `koanf:"workers" validate:"min=1"`
	// SchemaSets maps a name to the globs, relative to a package, holding
	// node type declarations.
	SchemaSets map[string][]string `koanf:"schema_sets,omitempty" validate:"required,dive,min=1,dive,required"`
	// StrictSuperTypes fails the build on supertypes that are not known.
	StrictSuperTypes bool `koanf:"strict_supertypes"`

	Log   LogConfig   `koanf:"log"`
	Watch WatchConfig `koanf:"watch"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `koanf:"level" validate:"loglevel"`
	JSON  bool   `koanf:"json"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	// Debounce is the quiet period after the last change before rebuilding.
	Debounce time.Duration `koanf:"debounce" validate:"min=0"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Packages: "Packages",
		Target:   "php",
		Workers:  4,
		SchemaSets: map[string][]string{
			DefaultSchemaSet: append([]string(nil), load.DefaultSchemaFiles...),
		},
		Log: LogConfig{
			Level: "info",
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}

// SchemaSet returns the schema file globs of the named set.
func (c *Config) SchemaSet(name string) ([]string, error) {
	if name == "" {
		name = DefaultSchemaSet
	}
	patterns, ok := c.SchemaSets[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema set %q", name)
	}
	return patterns, nil
}

// Loader reads configuration through an afero filesystem.
type Loader struct {
	fs        afero.Fs
	validator *validator.Validate
}

// NewLoader creates a loader reading files from fs.
func NewLoader(fs afero.Fs) *Loader {
	v := validator.New()
	// Registration only fails on an empty tag or a nil func.
	_ = v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		return logger.LogLevel(fl.Field().String()).IsValid()
	})
	return &Loader{fs: fs, validator: v}
}

// Load merges defaults, the YAML file at path, the environment and
// overrides, in that order. A missing file is only an error when required
// is set. Override keys use dot notation, e.g. "log.level".
func (l *Loader) Load(path string, required bool, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")
	// Maps are leaves for the structs provider, so schema sets are loaded
	// as nested map to stay mergeable per set.
	def := Default()
	sets := def.SchemaSets
	def.SchemaSets = nil
	if err := k.Load(structs.Provider(def, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(schemaSetsMap(sets), nil); err != nil {
		return nil, fmt.Errorf("failed to load default schema sets: %w", err)
	}
	if path != "" {
		data, err := l.readFile(path, required)
		if err != nil {
			return nil, err
		}
		for key, value := range flattenMap("", data) {
			if err := k.Set(key, value); err != nil {
				return nil, fmt.Errorf("failed to set key %s from %s: %w", key, path, err)
			}
		}
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envTransform(k.Keys()),
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	for key, value := range overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to set override %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := l.Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func (l *Loader) Validate(cfg *Config) error {
	if err := l.validator.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func (l *Loader) readFile(path string, required bool) (map[string]any, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return m, nil
}

// envTransform maps environment variables to the known configuration keys:
// NODETYPEOBJECTS_LOG_LEVEL => log.level. Unknown variables are ignored.
func envTransform(keys []string) func(string, string) (string, any) {
	paths := make(map[string]string, len(keys))
	for _, key := range keys {
		paths[EnvVar(key)] = key
	}
	return func(name, value string) (string, any) {
		key, ok := paths[name]
		if !ok {
			return "", nil
		}
		return key, value
	}
}

// EnvVar returns the environment variable of a configuration key.
func EnvVar(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// rawMap is a koanf.Provider for map[string]any data.
type rawMap map[string]any

func (r rawMap) Read() (map[string]any, error) {
	return r, nil
}

func (r rawMap) ReadBytes() ([]byte, error) {
	return nil, errors.New("ReadBytes not implemented")
}

func schemaSetsMap(sets map[string][]string) rawMap {
	m := make(map[string]any, len(sets))
	for name, patterns := range sets {
		l := make([]any, len(patterns))
		for i, p := range patterns {
			l[i] = p
		}
		m[name] = l
	}
	return rawMap{"schema_sets": m}
}

// flattenMap flattens nested maps into dot notation keys. Nil values are
// dropped so they do not override defaults.
func flattenMap(prefix string, m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := v.(type) {
		case nil:
		case map[string]any:
			for fk, fv := range flattenMap(key, v) {
				result[fk] = fv
			}
		default:
			result[key] = v
		}
	}
	return result
}
