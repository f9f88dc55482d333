package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type PolicyKind string

const (
	PolicyFixed       PolicyKind = "fixed"
	PolicyExponential PolicyKind = "exponential"
)

type Display struct {
	TruncateLimit int  `mapstructure:"truncate_limit"`
	Sound         bool `mapstructure:"sound"`
}

type Realtime struct {
	Policy         PolicyKind    `mapstructure:"policy"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	MaxDelay       time.Duration `mapstructure:"max_delay"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	Jitter         float64       `mapstructure:"jitter"`
}

type Outbox struct {
	Enabled bool `mapstructure:"enabled"`
}

// Prefs is the user preferences file.
type Prefs struct {
	Display  Display  `mapstructure:"display"`
	Realtime Realtime `mapstructure:"realtime"`
	Outbox   Outbox   `mapstructure:"outbox"`
}

func DefaultPrefs() Prefs {
	return Prefs{
		Display: Display{
			TruncateLimit: 40,
			Sound:         true,
		},
		Realtime: Realtime{
			Policy:         PolicyFixed,
			ReconnectDelay: 5 * time.Second,
			MaxDelay:       30 * time.Second,
		},
		Outbox: Outbox{Enabled: true},
	}
}

// LoadPrefs reads the YAML preferences at path. A missing file yields defaults.
func LoadPrefs(path string) (Prefs, error) {
	defaults := DefaultPrefs()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("display.truncate_limit", defaults.Display.TruncateLimit)
	v.SetDefault("display.sound", defaults.Display.Sound)
	v.SetDefault("realtime.policy", string(defaults.Realtime.Policy))
	v.SetDefault("realtime.reconnect_delay", defaults.Realtime.ReconnectDelay)
	v.SetDefault("realtime.max_delay", defaults.Realtime.MaxDelay)
	v.SetDefault("realtime.max_attempts", defaults.Realtime.MaxAttempts)
	v.SetDefault("realtime.jitter", defaults.Realtime.Jitter)
	v.SetDefault("outbox.enabled", defaults.Outbox.Enabled)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Prefs{}, fmt.Errorf("read prefs %s: %w", path, err)
		}
	}

	var p Prefs
	if err := v.Unmarshal(&p); err != nil {
		return Prefs{}, fmt.Errorf("parse prefs %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return Prefs{}, fmt.Errorf("invalid prefs %s: %w", path, err)
	}
	return p, nil
}

func (p Prefs) validate() error {
	switch p.Realtime.Policy {
	case PolicyFixed, PolicyExponential:
	default:
		return fmt.Errorf("unknown realtime.policy %q", p.Realtime.Policy)
	}
	if p.Realtime.ReconnectDelay <= 0 {
		return errors.New("realtime.reconnect_delay must be positive")
	}
	if p.Realtime.Jitter < 0 || p.Realtime.Jitter > 1 {
		return errors.New("realtime.jitter must be within [0, 1]")
	}
	if p.Realtime.MaxAttempts < 0 {
		return errors.New("realtime.max_attempts must not be negative")
	}
	return nil
}
