package game

import "fmt"

// Publisher delivers encoded messages to player sessions.
type Publisher interface {
	PublishToPlayer(charId string, data []byte) error
	PublishUI(charId string, data []byte) error
	PublishToWorld(data []byte) error
}

// Subscriber provides the ability to subscribe to message subjects.
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (unsubscribe func(), err error)
}

func PlayerSubject(charId string) string {
	return fmt.Sprintf("player-%s", charId)
}

func UISubject(charId string) string {
	return fmt.Sprintf("ui-%s", charId)
}

const WorldSubject = "world"
