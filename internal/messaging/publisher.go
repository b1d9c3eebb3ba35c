package messaging

import (
	"github.com/pixil98/go-garden/internal/game"
)

// NatsPublisher routes game output onto per-player and world subjects.
type NatsPublisher struct {
	server *NatsServer
}

// NewNatsPublisher wraps a NatsServer for per-player message delivery.
func NewNatsPublisher(server *NatsServer) *NatsPublisher {
	return &NatsPublisher{server: server}
}

func (p *NatsPublisher) PublishToPlayer(charId string, data []byte) error {
	return p.server.Publish(game.PlayerSubject(charId), data)
}

func (p *NatsPublisher) PublishUI(charId string, data []byte) error {
	return p.server.Publish(game.UISubject(charId), data)
}

func (p *NatsPublisher) PublishToWorld(data []byte) error {
	return p.server.Publish(game.WorldSubject, data)
}
