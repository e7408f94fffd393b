package config

import (
	"os"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/rmmh/blockfaces/go/render"
)

type Config struct {
	// Pack is an extracted resource pack directory or a client jar.
	Pack string `yaml:"pack"`
	// Version is the client jar to download when Pack is empty.
	Version string `yaml:"version"`
	// Cache is where downloaded jars are kept.
	Cache string `yaml:"cache"`

	Concurrency int    `yaml:"concurrency"`
	Listen      string `yaml:"listen"`

	Strict       bool `yaml:"strict"`
	Validate     bool `yaml:"validate"`
	RejectTinted bool `yaml:"reject_tinted"`

	// Faces are rendered when a request doesn't name any.
	Faces []string `yaml:"faces,omitempty"`

	LogLevel string `yaml:"log_level"`
}

func Defaults() Config {
	return Config{
		Cache:       ".",
		Concurrency: runtime.NumCPU(),
		Listen:      "127.0.0.1:9999",
		Faces:       directionNames(render.AllFaces),
		LogLevel:    "info",
	}
}

func directionNames(dirs []render.Direction) []string {
	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = string(d)
	}
	return out
}

// Load reads a YAML config on top of the defaults. An empty path gives the
// defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "%s", path)
	}
	if err := cfg.Check(); err != nil {
		return cfg, errors.Wrapf(err, "%s", path)
	}
	return cfg, nil
}

func (c Config) Check() error {
	if c.Concurrency < 0 {
		return errors.Errorf("concurrency %d is negative", c.Concurrency)
	}
	if _, err := c.DefaultFaces(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

func (c Config) DefaultFaces() ([]render.Direction, error) {
	if len(c.Faces) == 0 {
		return render.AllFaces, nil
	}
	return render.ParseFaces(strings.Join(c.Faces, ","))
}
