package game

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl64"
)

// UI payload types sent on a player's UI subject.
const (
	TypeChat                      = "chat"
	TypeInventoryUpdate           = "inventory_update"
	TypeCashUpdate                = "cash_update"
	TypeRaycastUpdate             = "raycast_update"
	TypeGardenClaimedNotification = "garden_claimed_notification"
	TypeSellNotification          = "sell_notification"
	TypeEntitySpawn               = "entity_spawn"
	TypeEntityUpdate              = "entity_update"
	TypeEntityDespawn             = "entity_despawn"
)

// Position is the {x,y,z} form clients expect.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func PositionOf(v mgl64.Vec3) Position {
	return Position{X: v.X(), Y: v.Y(), Z: v.Z()}
}

func (p Position) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

type ChatMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Color   string `json:"color,omitempty"`
}

type InventoryUpdate struct {
	Type          string    `json:"type"`
	Inventory     []*string `json:"inventory"`
	HeldItemIndex int       `json:"heldItemIndex"`
}

type CashUpdate struct {
	Type string `json:"type"`
	Cash int    `json:"cash"`
}

type GardenClaimedNotification struct {
	Type        string `json:"type"`
	GardenIndex int    `json:"gardenIndex"`
}

type SellNotification struct {
	Type          string `json:"type"`
	PlantsSold    int    `json:"plantsSold"`
	TotalEarnings int    `json:"totalEarnings"`
}

type NearbyPlant struct {
	Name     string   `json:"name"`
	Position Position `json:"position"`
}

type NearbyDiamond struct {
	Position           Position `json:"position"`
	IsOwned            bool     `json:"isOwned"`
	OwnerId            *string  `json:"ownerId"`
	GardenOwnerDisplay *string  `json:"gardenOwnerDisplay"`
	GardenIndex        int      `json:"gardenIndex"`
}

// ScanResult is what the proximity scan found around a player.
type ScanResult struct {
	LookingAtDirt     bool           `json:"lookingAtDirt"`
	HeldItem          *string        `json:"heldItem"`
	ClosestDirtPos    *Position      `json:"closestDirtPos"`
	NearbyPlant       *NearbyPlant   `json:"nearbyPlant"`
	PlantProgress     float64        `json:"plantProgress"`
	IsPlantFullyGrown bool           `json:"isPlantFullyGrown"`
	CanHarvestPlant   bool           `json:"canHarvestPlant"`
	NearbyDiamond     *NearbyDiamond `json:"nearbyDiamond"`
}

type RaycastUpdate struct {
	Type string `json:"type"`
	ScanResult
}

type EntityMessage struct {
	Type   string `json:"type"`
	Entity any    `json:"entity"`
}

func encode(v any) []byte {
	// Payloads are plain structs; marshalling cannot fail.
	data, _ := json.Marshal(v)
	return data
}

func strPtr(s string) *string {
	return &s
}
