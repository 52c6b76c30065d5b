package config

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Provider returns the configuration in effect. It is called once per
// sequence, so changes apply from the next sequence on.
type Provider interface {
	Current() Config
}

// Static is a Provider that never changes.
type Static Config

// Current implements Provider.
func (s Static) Current() Config {
	return Config(s)
}

// ViperProvider serves configuration loaded from a viper instance and
// reloads it when the config file changes.
type ViperProvider struct {
	v      *viper.Viper
	logger *log.Logger

	mu       sync.RWMutex
	cfg      Config
	onChange []func(Config)
}

// NewViperProvider loads the initial configuration from v. A nil v uses the
// global viper instance.
func NewViperProvider(v *viper.Viper, logger *log.Logger) (*ViperProvider, error) {
	if v == nil {
		v = viper.GetViper()
	}
	if logger == nil {
		logger = log.Default()
	}
	cfg, err := LoadFromViper(v)
	if err != nil {
		return nil, err
	}
	return &ViperProvider{v: v, cfg: cfg, logger: logger.WithPrefix("config")}, nil
}

// Current implements Provider.
func (p *ViperProvider) Current() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// OnChange registers fn to run after every successful reload.
func (p *ViperProvider) OnChange(fn func(Config)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = append(p.onChange, fn)
}

// Reload re-reads the configuration. On error the previous configuration
// stays in effect.
func (p *ViperProvider) Reload() error {
	cfg, err := LoadFromViper(p.v)
	if err != nil {
		p.logger.Warn("Keeping previous configuration", "error", err)
		return err
	}

	p.mu.Lock()
	p.cfg = cfg
	listeners := make([]func(Config), len(p.onChange))
	copy(listeners, p.onChange)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
	return nil
}

// Watch reloads the configuration whenever the config file changes.
func (p *ViperProvider) Watch() {
	p.v.OnConfigChange(func(e fsnotify.Event) {
		p.logger.Debug("Config file changed", "file", e.Name, "op", e.Op.String())
		_ = p.Reload()
	})
	p.v.WatchConfig()
}
