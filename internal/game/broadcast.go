package game

import (
	"log/slog"

	"github.com/pixil98/go-garden/internal/entity"
)

// EntityBroadcaster relays entity lifecycle events on the world subject.
type EntityBroadcaster struct {
	publisher Publisher
}

func NewEntityBroadcaster(pub Publisher) *EntityBroadcaster {
	return &EntityBroadcaster{publisher: pub}
}

func (b *EntityBroadcaster) EntitySpawned(e entity.Entity) {
	b.publish(TypeEntitySpawn, e)
}

func (b *EntityBroadcaster) EntityUpdated(e entity.Entity) {
	b.publish(TypeEntityUpdate, e)
}

func (b *EntityBroadcaster) EntityDespawned(e entity.Entity) {
	b.publish(TypeEntityDespawn, e)
}

func (b *EntityBroadcaster) publish(typ string, e entity.Entity) {
	if b.publisher == nil {
		return
	}
	if err := b.publisher.PublishToWorld(encode(EntityMessage{Type: typ, Entity: e})); err != nil {
		slog.Warn("publishing entity event", "type", typ, "entityId", e.Id, "error", err)
	}
}
