// Package config loads the IG process configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/aretw0/igkernel/internal/logging"
	"github.com/aretw0/igkernel/pkg/kernel"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Endpoint is a UDP address.
type Endpoint struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.Address, fmt.Sprint(e.Port))
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Metrics configures the metrics endpoint. An empty address disables it.
type Metrics struct {
	Address string `yaml:"address"`
}

// Redis configures status publication and the instance lease.
// An empty address disables both.
type Redis struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// Database configures the database published at startup.
type Database struct {
	Default int8 `yaml:"default"`
}

// Plugin is one entry of the plugins block.
type Plugin struct {
	Enabled  *bool          `yaml:"enabled"`
	Settings map[string]any `yaml:"settings"`
}

// Config is the whole process configuration.
type Config struct {
	Host              Endpoint          `yaml:"host"`
	Listen            Endpoint          `yaml:"listen"`
	FrameRateHz       float64           `yaml:"frame_rate_hz"`
	ProcessPolicy     string            `yaml:"process_policy"`
	MaxQueuedMessages int               `yaml:"max_queued_messages"`
	RecvBufferSize    int               `yaml:"recv_buffer_size"`
	Log               Log               `yaml:"log"`
	Metrics           Metrics           `yaml:"metrics"`
	Redis             Redis             `yaml:"redis"`
	StatusDir         string            `yaml:"status_dir"`
	Database          Database          `yaml:"database"`
	Plugins           map[string]Plugin `yaml:"plugins"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Host:              Endpoint{Address: "127.0.0.1", Port: 8005},
		Listen:            Endpoint{Address: "0.0.0.0", Port: 8004},
		FrameRateHz:       kernel.DefaultFrameRate,
		ProcessPolicy:     kernel.ProcessAll.String(),
		MaxQueuedMessages: kernel.DefaultMaxQueuedMessages,
		RecvBufferSize:    kernel.MinRecvBufferSize,
		Log:               Log{Level: "info", Format: logging.FormatAuto},
		Redis:             Redis{Prefix: "igkernel:", TTL: 30 * time.Second},
		Plugins:           map[string]Plugin{},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Plugins == nil {
		cfg.Plugins = map[string]Plugin{}
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Host.Address == "" {
		errs = append(errs, errors.New("host.address is required"))
	}
	if c.Host.Port < 1 || c.Host.Port > 65535 {
		errs = append(errs, fmt.Errorf("host.port %d out of range", c.Host.Port))
	}
	if c.Listen.Port < 0 || c.Listen.Port > 65535 {
		errs = append(errs, fmt.Errorf("listen.port %d out of range", c.Listen.Port))
	}
	if c.FrameRateHz < 0 {
		errs = append(errs, fmt.Errorf("frame_rate_hz must not be negative, got %v", c.FrameRateHz))
	}
	if _, err := kernel.ParseProcessPolicy(c.ProcessPolicy); err != nil {
		errs = append(errs, fmt.Errorf("process_policy: %w", err))
	}
	if c.MaxQueuedMessages < 1 {
		errs = append(errs, fmt.Errorf("max_queued_messages must be positive, got %d", c.MaxQueuedMessages))
	}
	if c.RecvBufferSize < kernel.MinRecvBufferSize {
		errs = append(errs, fmt.Errorf("recv_buffer_size must be at least %d, got %d", kernel.MinRecvBufferSize, c.RecvBufferSize))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "", logging.FormatAuto, logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if c.Redis.TTL < 0 {
		errs = append(errs, fmt.Errorf("redis.ttl must not be negative, got %s", c.Redis.TTL))
	}
	return errors.Join(errs...)
}

// PluginEnabled reports whether the named plugin should be registered.
// Plugins without an explicit enabled flag fall back to def.
func (c *Config) PluginEnabled(name string, def bool) bool {
	p, ok := c.Plugins[name]
	if !ok || p.Enabled == nil {
		return def
	}
	return *p.Enabled
}

// DecodePluginSettings decodes the named plugin's settings into out.
// Unknown keys are an error so typos do not go unnoticed.
func (c *Config) DecodePluginSettings(name string, out any) error {
	p, ok := c.Plugins[name]
	if !ok || len(p.Settings) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(p.Settings); err != nil {
		return fmt.Errorf("plugins.%s.settings: %w", name, err)
	}
	return nil
}
