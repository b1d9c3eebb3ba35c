package command

import (
	"fmt"
	"os"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	Listeners      []ListenerConfig `json:"listeners"`
	MaxConnections int              `json:"max_connections"`
	Nats           NatsConfig       `json:"nats"`
	Persistence    PersistConfig    `json:"persistence"`
	Snapshots      SnapshotConfig   `json:"snapshots"`
	Assets         AssetsConfig     `json:"assets"`
	MapPath        string           `json:"map_path"`
	TuningPath     string           `json:"tuning_path"`
	Ticks          TickConfig       `json:"ticks"`
	Sessions       SessionConfig    `json:"sessions"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if len(c.Listeners) == 0 {
		el.Add(fmt.Errorf("at least one listener is required"))
	}
	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}
	if c.MaxConnections < 0 {
		el.Add(fmt.Errorf("max_connections must not be negative"))
	}

	if c.MapPath == "" {
		el.Add(fmt.Errorf("map_path is required"))
	} else if _, err := os.Stat(c.MapPath); err != nil {
		el.Add(fmt.Errorf("invalid map_path %q: %w", c.MapPath, err))
	}
	if c.TuningPath != "" {
		if _, err := os.Stat(c.TuningPath); err != nil {
			el.Add(fmt.Errorf("invalid tuning_path %q: %w", c.TuningPath, err))
		}
	}

	el.Add(c.Nats.validate())
	el.Add(c.Persistence.validate())
	el.Add(c.Snapshots.validate())
	el.Add(c.Assets.validate())
	el.Add(c.Ticks.validate())
	el.Add(c.Sessions.validate())

	return el.Err()
}

// TickConfig sets how often each driver runs.
type TickConfig struct {
	Growth  string `json:"growth"`
	Scan    string `json:"scan"`
	Session string `json:"session"`
}

func (c *TickConfig) validate() error {
	el := errors.NewErrorList()
	for name, v := range map[string]string{"growth": c.Growth, "scan": c.Scan, "session": c.Session} {
		if _, err := optionalDuration(v, time.Second); err != nil {
			el.Add(fmt.Errorf("ticks.%s: %w", name, err))
		}
	}
	return el.Err()
}

type SessionConfig struct {
	IdleTimeout  string  `json:"idle_timeout"`
	SaveInterval string  `json:"save_interval"`
	InputRate    float64 `json:"input_rate"`
	InputBurst   int     `json:"input_burst"`
	BcryptCost   int     `json:"bcrypt_cost"`
}

func (c *SessionConfig) validate() error {
	el := errors.NewErrorList()

	if _, err := optionalDuration(c.IdleTimeout, 0); err != nil {
		el.Add(fmt.Errorf("sessions.idle_timeout: %w", err))
	}
	if _, err := optionalDuration(c.SaveInterval, 0); err != nil {
		el.Add(fmt.Errorf("sessions.save_interval: %w", err))
	}
	if c.InputRate < 0 || c.InputBurst < 0 {
		el.Add(fmt.Errorf("sessions.input_rate and input_burst must not be negative"))
	}
	if c.BcryptCost != 0 && (c.BcryptCost < 4 || c.BcryptCost > 31) {
		el.Add(fmt.Errorf("sessions.bcrypt_cost must be between 4 and 31"))
	}

	return el.Err()
}

// optionalDuration parses s, returning def when s is empty.
func optionalDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return d, nil
}
