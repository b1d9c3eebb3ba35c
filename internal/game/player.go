package game

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// HeldItem is the item entity parented to a player's hand.
type HeldItem struct {
	EntityId string
	Name     string
	Index    int
}

// PlayerState holds all mutable state for an active player.
type PlayerState struct {
	subscriber Subscriber
	msgs       chan []byte
	ui         chan []byte

	CharId   string
	Username string
	EntityId string
	Position mgl64.Vec3

	Inventory Inventory
	Cash      int
	Held      *HeldItem
	Scan      ScanResult

	// Subscriptions
	subs map[string]func()

	// Session state, guarded by WorldState.mu
	quit         bool
	LastActivity time.Time

	// Closed to signal the session goroutine to exit.
	done chan struct{}
}

// HeldIndex returns the held slot, or -1.
func (p *PlayerState) HeldIndex() int {
	if p.Held == nil {
		return -1
	}
	return p.Held.Index
}

// HeldName returns the held item name, or "".
func (p *PlayerState) HeldName() string {
	if p.Held == nil {
		return ""
	}
	return p.Held.Name
}

// Done returns the channel that is closed when this session is kicked.
func (p *PlayerState) Done() <-chan struct{} {
	return p.done
}

// Subscribe routes a subject to the chat channel.
func (p *PlayerState) Subscribe(subject string) error {
	return p.subscribe(subject, p.msgs)
}

// SubscribeUI routes a subject to the UI channel.
func (p *PlayerState) SubscribeUI(subject string) error {
	return p.subscribe(subject, p.ui)
}

func (p *PlayerState) subscribe(subject string, ch chan []byte) error {
	if p.subscriber == nil {
		return fmt.Errorf("subscriber is nil")
	}
	if ch == nil {
		return fmt.Errorf("no channel for subject %q", subject)
	}

	done := p.done
	unsub, err := p.subscriber.Subscribe(subject, func(data []byte) {
		select {
		case ch <- data:
		case <-done:
		}
	})
	if err != nil {
		return fmt.Errorf("subscribing to channel '%s': %w", subject, err)
	}

	// If we some how are subscribing to a channel we already think we have
	// unsubscribe from the existing one.
	if old, ok := p.subs[subject]; ok {
		old()
	}
	p.subs[subject] = unsub
	return nil
}

// Unsubscribe removes a subscription by name
func (p *PlayerState) Unsubscribe(subject string) {
	if unsub, ok := p.subs[subject]; ok {
		unsub()
		delete(p.subs, subject)
	}
}

// UnsubscribeAll removes all subscriptions
func (p *PlayerState) UnsubscribeAll() {
	for name, unsub := range p.subs {
		unsub()
		delete(p.subs, name)
	}
}

// Kick closes the done channel, signaling the session goroutine to exit.
// It is safe to call multiple times; subsequent calls are no-ops.
func (p *PlayerState) Kick() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}
