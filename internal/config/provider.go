package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/presence-sensor/internal/logic"
)

// Provider holds the live configuration. Readers take a copy via Current;
// reloads swap the whole value so a reader never sees a partial update.
type Provider struct {
	v      *viper.Viper
	logger zerolog.Logger

	mu       sync.RWMutex
	cfg      Config
	revision uint64
	onChange []func(Config)
}

// NewProvider loads configuration from path (or the default search paths)
// and returns a provider serving it.
func NewProvider(path string, logger zerolog.Logger) (*Provider, error) {
	v := newViper(path)
	if err := readConfig(v); err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	return &Provider{
		v:      v,
		logger: logger.With().Str("component", "config").Logger(),
		cfg:    *cfg,
	}, nil
}

// NewStaticProvider serves a fixed configuration. Set still applies.
func NewStaticProvider(cfg Config, logger zerolog.Logger) *Provider {
	return &Provider{
		logger: logger.With().Str("component", "config").Logger(),
		cfg:    cfg,
	}
}

// SetLogger replaces the provider's logger. Call before Watch.
func (p *Provider) SetLogger(logger zerolog.Logger) {
	p.logger = logger.With().Str("component", "config").Logger()
}

// Current returns a copy of the active configuration.
func (p *Provider) Current() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// Settings returns the pipeline settings of the active configuration.
func (p *Provider) Settings() logic.Settings {
	cfg := p.Current()
	return cfg.Settings()
}

// Revision increments on every accepted change.
func (p *Provider) Revision() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.revision
}

// FileUsed reports the config file in use, if any.
func (p *Provider) FileUsed() string {
	if p.v == nil {
		return ""
	}
	return p.v.ConfigFileUsed()
}

// OnChange registers fn to run after each accepted change.
func (p *Provider) OnChange(fn func(Config)) {
	p.mu.Lock()
	p.onChange = append(p.onChange, fn)
	p.mu.Unlock()
}

// Set validates and installs cfg. Invalid values leave the current
// configuration untouched.
func (p *Provider) Set(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	p.cfg = cfg
	p.revision++
	hooks := append([]func(Config){}, p.onChange...)
	p.mu.Unlock()

	for _, fn := range hooks {
		fn(cfg)
	}
	return nil
}

// Reload re-reads the config file and installs it if valid.
func (p *Provider) Reload() error {
	if p.v == nil {
		return fmt.Errorf("no config file to reload")
	}
	if err := p.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	cfg, err := decode(p.v)
	if err != nil {
		return err
	}
	return p.Set(*cfg)
}

// Watch starts watching the config file for changes. It does nothing when
// no file was found.
func (p *Provider) Watch() {
	if p.FileUsed() == "" {
		p.logger.Debug().Msg("no config file, not watching")
		return
	}
	p.v.OnConfigChange(func(e fsnotify.Event) {
		if err := p.Reload(); err != nil {
			p.logger.Warn().Err(err).Str("file", e.Name).Msg("config reload rejected, keeping previous values")
			return
		}
		p.logger.Info().Str("file", e.Name).Msg("config reloaded")
	})
	p.v.WatchConfig()
	p.logger.Info().Str("file", p.FileUsed()).Msg("watching config file")
}

// YAML renders the active configuration.
func (p *Provider) YAML() ([]byte, error) {
	cfg := p.Current()
	return cfg.YAML()
}

// YAML renders the configuration as a YAML document.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
