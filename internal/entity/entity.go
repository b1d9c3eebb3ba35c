package entity

import (
	"github.com/go-gl/mathgl/mgl64"
)

type RigidBodyType string

const (
	RigidBodyNone    RigidBodyType = ""
	RigidBodyFixed   RigidBodyType = "fixed"
	RigidBodyDynamic RigidBodyType = "dynamic"
)

// Quat is an x,y,z,w rotation as sent to clients.
type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

var Identity = Quat{W: 1}

// YawQuat returns a rotation of angle radians around the Y axis.
func YawQuat(angle float64) Quat {
	q := mgl64.QuatRotate(angle, mgl64.Vec3{0, 1, 0})
	return Quat{X: q.V.X(), Y: q.V.Y(), Z: q.V.Z(), W: q.W}
}

// Options describes an entity to spawn.
type Options struct {
	Name             string
	ModelURI         string
	ModelScale       float64
	LoopedAnimations []string
	RigidBody        RigidBodyType
	ParentId         string
	Rotation         Quat
	// Owner is the player the entity belongs to, if any.
	Owner string
}

// Entity is a positioned model in the world. Values handed out by the
// Manager are copies.
type Entity struct {
	Id               string        `json:"id"`
	Name             string        `json:"name,omitempty"`
	ModelURI         string        `json:"modelUri,omitempty"`
	ModelScale       float64       `json:"modelScale"`
	Position         mgl64.Vec3    `json:"position"`
	Rotation         Quat          `json:"rotation"`
	ParentId         string        `json:"parentId,omitempty"`
	LoopedAnimations []string      `json:"loopedAnimations,omitempty"`
	RigidBody        RigidBodyType `json:"rigidBody,omitempty"`
	Owner            string        `json:"owner,omitempty"`
}

// WorldPosition resolves a child position relative to its parent.
func (e Entity) WorldPosition(parent *Entity) mgl64.Vec3 {
	if parent == nil {
		return e.Position
	}
	return parent.Position.Add(e.Position)
}
