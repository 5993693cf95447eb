package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/ytget/ytd/internal/download"
)

const (
	envVarPrefix = "YTD"
	appName      = "ytd"
)

// Defaults for values with no natural zero
const (
	DefaultAddr        = "127.0.0.1:8000"
	DefaultLogLevel    = "info"
	DefaultNATSSubject = "ytd.downloads.completed"
)

// Config is the process configuration. Every field can come from the yaml
// file or from a YTD_ prefixed environment variable; the environment wins.
type Config struct {
	// OutputDir overrides the platform default download directory
	OutputDir string `split_words:"true" yaml:"outputDir"`
	Addr      string `split_words:"true" yaml:"addr"`

	Container        string `split_words:"true" yaml:"container"`
	AudioCodec       string `split_words:"true" yaml:"audioCodec"`
	AudioQuality     string `split_words:"true" yaml:"audioQuality"`
	FilenameTemplate string `split_words:"true" yaml:"filenameTemplate"`
	EventBuffer      int    `split_words:"true" yaml:"eventBuffer"`

	// Executable is the yt-dlp binary, found on PATH or in the go-ytdlp
	// cache when empty
	Executable string `yaml:"executable"`

	LogLevel string `split_words:"true" yaml:"logLevel"`

	// NATSURL enables result publication when set
	NATSURL     string `envconfig:"NATS_URL" yaml:"natsURL"`
	NATSSubject string `envconfig:"NATS_SUBJECT" yaml:"natsSubject"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() Config {
	p := download.DefaultPolicy()
	return Config{
		Addr:             DefaultAddr,
		Container:        p.Container,
		AudioCodec:       p.AudioCodec,
		AudioQuality:     p.AudioQuality,
		FilenameTemplate: p.FilenameTemplate,
		EventBuffer:      download.DefaultEventBuffer,
		LogLevel:         DefaultLogLevel,
		NATSSubject:      DefaultNATSSubject,
	}
}

// DefaultConfigFile returns YTD_CONFIG_FILE or ~/.config/ytd.yaml
func DefaultConfigFile() string {
	if file := os.Getenv(envVarPrefix + "_CONFIG_FILE"); file != "" {
		return file
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName+".yaml")
}

// Load reads an optional .env file, then configFile (or the default config
// file when empty), then the environment. An explicitly named config file
// must exist; the default one is optional.
func Load(configFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	explicit := configFile != ""
	if !explicit {
		configFile = DefaultConfigFile()
	}

	c := Defaults()
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		switch {
		case err == nil:
			if err := yaml.UnmarshalStrict(data, &c); err != nil {
				return nil, fmt.Errorf("unmarshaling config file %s: %w", configFile, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	return &c, nil
}

// Validate reports the first invalid field by its yaml and env names
func (c *Config) Validate() error {
	if y, e := func() (string, string) {
		if c.Addr == "" {
			return "addr", "ADDR"
		}
		if c.EventBuffer < 1 {
			return "eventBuffer", "EVENT_BUFFER"
		}
		if !validLogLevel(c.LogLevel) {
			return "logLevel", "LOG_LEVEL"
		}
		if c.NATSURL != "" && c.NATSSubject == "" {
			return "natsSubject", "NATS_SUBJECT"
		}
		return "", ""
	}(); y != "" {
		return fmt.Errorf(
			"invalid configuration: %s / %s_%s",
			y,
			envVarPrefix,
			e,
		)
	}

	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("invalid download policy: %w", err)
	}
	return nil
}

// Policy returns the download policy described by the configuration
func (c *Config) Policy() download.Policy {
	p := download.DefaultPolicy()
	p.Container = c.Container
	p.AudioCodec = c.AudioCodec
	p.AudioQuality = c.AudioQuality
	p.FilenameTemplate = c.FilenameTemplate
	return p
}

func validLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}
