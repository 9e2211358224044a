// Package config loads cubegate settings from YAML, .env and CUBEGATE_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/SeamusWaldron/cubegate"
	"github.com/SeamusWaldron/cubegate/internal/storage"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CUBEGATE_"

// Config is the full application configuration.
type Config struct {
	Animation AnimationConfig   `yaml:"animation"`
	Scramble  ScrambleConfig    `yaml:"scramble"`
	Log       LogConfig         `yaml:"log"`
	Storage   StorageConfig     `yaml:"storage"`
	Server    ServerConfig      `yaml:"server"`
	Targets   map[string]Target `yaml:"targets" validate:"dive,keys,face,endkeys"`
}

// AnimationConfig controls how long moves take in renderers without their
// own timing, and how long the sequencer waits for any renderer.
type AnimationConfig struct {
	Duration time.Duration `yaml:"duration" validate:"gte=0"`
	Timeout  time.Duration `yaml:"timeout" validate:"gte=0"`
}

// ScrambleConfig holds scramble defaults.
type ScrambleConfig struct {
	Moves int `yaml:"moves" validate:"gte=1,lte=1000"`
}

// LogConfig selects the zap level and encoding.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// StorageConfig locates the move journal.
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"required_if=Enabled true"`
}

// ServerConfig configures the HTTP bridge.
type ServerConfig struct {
	Addr          string `yaml:"addr" validate:"required,hostname_port"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

// Target is the navigation link a face unlocks when solved.
type Target struct {
	Title string `yaml:"title" validate:"required"`
	URL   string `yaml:"url" validate:"required,url"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dbPath, _ := storage.DefaultDBPath()
	return &Config{
		Animation: AnimationConfig{
			Duration: 250 * time.Millisecond,
			Timeout:  cubegate.DefaultMoveTimeout,
		},
		Scramble: ScrambleConfig{Moves: 20},
		Log:      LogConfig{Level: "info", Format: "console"},
		Storage:  StorageConfig{Enabled: true, Path: dbPath},
		Server:   ServerConfig{Addr: "127.0.0.1:8080"},
		Targets:  map[string]Target{},
	}
}

// DefaultPath returns ~/.cubegate/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".cubegate", "config.yaml"), nil
}

// Load reads the configuration. With an empty path the default location is
// used and a missing file is not an error; an explicit path must exist.
// A .env file in the working directory is loaded before env overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from CUBEGATE_* variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	var errs []error
	if v, ok := get("ANIMATION_DURATION"); ok {
		d, err := time.ParseDuration(v)
		errs = append(errs, envErr("ANIMATION_DURATION", err))
		c.Animation.Duration = d
	}
	if v, ok := get("ANIMATION_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		errs = append(errs, envErr("ANIMATION_TIMEOUT", err))
		c.Animation.Timeout = d
	}
	if v, ok := get("SCRAMBLE_MOVES"); ok {
		n, err := strconv.Atoi(v)
		errs = append(errs, envErr("SCRAMBLE_MOVES", err))
		c.Scramble.Moves = n
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := get("LOG_FORMAT"); ok {
		c.Log.Format = strings.ToLower(v)
	}
	if v, ok := get("STORAGE_PATH"); ok {
		c.Storage.Path = v
	}
	if v, ok := get("STORAGE_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		errs = append(errs, envErr("STORAGE_ENABLED", err))
		c.Storage.Enabled = b
	}
	if v, ok := get("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := get("SERVER_ALLOWED_ORIGIN"); ok {
		c.Server.AllowedOrigin = v
	}
	return errors.Join(errs...)
}

func envErr(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// FaceTargets returns the targets keyed by face. Validate guarantees every
// key parses.
func (c *Config) FaceTargets() map[cubegate.Face]Target {
	out := make(map[cubegate.Face]Target, len(c.Targets))
	for name, t := range c.Targets {
		if f, ok := cubegate.ParseFace(name); ok {
			out[f] = t
		}
	}
	return out
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("face", func(fl validator.FieldLevel) bool {
		_, ok := cubegate.ParseFace(fl.Field().String())
		return ok
	})
}
