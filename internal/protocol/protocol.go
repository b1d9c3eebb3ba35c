package protocol

import (
	"encoding/json"
)

// Message types.
const (
	TypeJoin         = "join"
	TypeWelcome      = "welcome"
	TypeError        = "error"
	TypeChat         = "chat"
	TypePosition     = "position"
	TypeInput        = "input"
	TypeHold         = "hold"
	TypeClaimGarden  = "claim_garden"
	TypePlantSeed    = "plant_seed"
	TypeHarvestPlant = "harvest_plant"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type string `json:"type"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// JoinMsg (client -> server) must be the first frame.
type JoinMsg struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// WelcomeMsg (server -> client) answers a successful join.
type WelcomeMsg struct {
	Type     string `json:"type"`
	PlayerId string `json:"playerId"`
}

// ErrorMsg (server -> client) reports a rejected frame or login.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type ChatMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type PositionMsg struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

// InputMsg carries mouse state. ML is the left button.
type InputMsg struct {
	Type string `json:"type"`
	ML   bool   `json:"ml"`
}

type HoldMsg struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

type ClaimGardenMsg struct {
	Type string `json:"type"`
}

type PlantSeedMsg struct {
	Type string `json:"type"`
}

type HarvestPlantMsg struct {
	Type string `json:"type"`
}
