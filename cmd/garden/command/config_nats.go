package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-garden/internal/messaging"
)

// NatsConfig controls the embedded bus that carries chat and UI events.
// Port -1 picks a random free port; 0 uses the default.
type NatsConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	StartTimeout string `json:"start_timeout"`
}

func (n *NatsConfig) validate() error {
	el := errors.NewErrorList()

	if _, err := optionalDuration(n.StartTimeout, 0); err != nil {
		el.Add(fmt.Errorf("nats.start_timeout: %w", err))
	}
	if n.Port < -1 || n.Port > 65535 {
		el.Add(fmt.Errorf("nats.port must be -1 or a valid port"))
	}

	return el.Err()
}

func (n *NatsConfig) buildNatsServer() (*messaging.NatsServer, error) {
	var opts []messaging.NatsServerOpt
	if n.StartTimeout != "" {
		d, err := optionalDuration(n.StartTimeout, 0)
		if err != nil {
			return nil, fmt.Errorf("parsing start_timeout: %w", err)
		}
		opts = append(opts, messaging.WithStartTimeout(d))
	}
	if n.Host != "" {
		opts = append(opts, messaging.WithHost(n.Host))
	}
	if n.Port != 0 {
		opts = append(opts, messaging.WithPort(n.Port))
	}

	return messaging.NewNatsServer(opts...)
}
