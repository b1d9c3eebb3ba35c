package protocol

import (
	"errors"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestDecoder_Decode(t *testing.T) {
	d, err := NewDecoder()
	if err != nil {
		t.Fatalf("creating decoder: %v", err)
	}

	tests := map[string]struct {
		frame  string
		exp    any
		expErr string
	}{
		"join": {
			frame: `{"type":"join","username":"alice","password":"hunter2"}`,
			exp:   &JoinMsg{Type: TypeJoin, Username: "alice", Password: "hunter2"},
		},
		"join bad username": {
			frame:  `{"type":"join","username":"a b","password":"x"}`,
			expErr: "invalid join message",
		},
		"join missing password": {
			frame:  `{"type":"join","username":"alice"}`,
			expErr: "invalid join message",
		},
		"chat": {
			frame: `{"type":"chat","message":"/buy carrot"}`,
			exp:   &ChatMsg{Type: TypeChat, Message: "/buy carrot"},
		},
		"empty chat": {
			frame:  `{"type":"chat","message":""}`,
			expErr: "invalid chat message",
		},
		"position": {
			frame: `{"type":"position","x":1.5,"y":10,"z":-3}`,
			exp:   &PositionMsg{Type: TypePosition, X: 1.5, Y: 10, Z: -3},
		},
		"position wrong type": {
			frame:  `{"type":"position","x":"1","y":10,"z":-3}`,
			expErr: "invalid position message",
		},
		"input": {
			frame: `{"type":"input","ml":true}`,
			exp:   &InputMsg{Type: TypeInput, ML: true},
		},
		"hold": {
			frame: `{"type":"hold","index":8}`,
			exp:   &HoldMsg{Type: TypeHold, Index: 8},
		},
		"hold out of range": {
			frame:  `{"type":"hold","index":9}`,
			expErr: "invalid hold message",
		},
		"hold fractional": {
			frame:  `{"type":"hold","index":1.5}`,
			expErr: "invalid hold message",
		},
		"claim garden": {
			frame: `{"type":"claim_garden"}`,
			exp:   &ClaimGardenMsg{Type: TypeClaimGarden},
		},
		"plant seed": {
			frame: `{"type":"plant_seed"}`,
			exp:   &PlantSeedMsg{Type: TypePlantSeed},
		},
		"harvest plant": {
			frame: `{"type":"harvest_plant"}`,
			exp:   &HarvestPlantMsg{Type: TypeHarvestPlant},
		},
		"unknown type": {
			frame:  `{"type":"dance"}`,
			expErr: `unknown message type "dance"`,
		},
		"not json": {
			frame:  `hello`,
			expErr: "decoding message",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := d.Decode([]byte(tt.frame))
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "message", got, tt.exp)
		})
	}
}

func TestDecoder_UnknownTypeIsSentinel(t *testing.T) {
	d, err := NewDecoder()
	if err != nil {
		t.Fatalf("creating decoder: %v", err)
	}

	_, err = d.Decode([]byte(`{"type":"welcome","playerId":"x"}`))
	testutil.AssertEqual(t, "unknown type", errors.Is(err, ErrUnknownType), true)
}

func TestDecoder_InventorySlots(t *testing.T) {
	tests := map[string]struct {
		slots  int
		frame  string
		exp    any
		expErr string
	}{
		"last slot of small inventory": {
			slots: 4,
			frame: `{"type":"hold","index":3}`,
			exp:   &HoldMsg{Type: TypeHold, Index: 3},
		},
		"past small inventory": {
			slots:  4,
			frame:  `{"type":"hold","index":4}`,
			expErr: "invalid hold message",
		},
		"large inventory": {
			slots: 20,
			frame: `{"type":"hold","index":19}`,
			exp:   &HoldMsg{Type: TypeHold, Index: 19},
		},
		"huge integer": {
			slots:  20,
			frame:  `{"type":"hold","index":9007199254740993}`,
			expErr: "invalid hold message",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d, err := NewDecoder(WithInventorySlots(tt.slots))
			if err != nil {
				t.Fatalf("creating decoder: %v", err)
			}

			got, err := d.Decode([]byte(tt.frame))
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "message", got, tt.exp)
		})
	}
}

func TestDecoder_NoSlots(t *testing.T) {
	_, err := NewDecoder(WithInventorySlots(0))
	testutil.AssertErrorContains(t, err, "inventory slots must be positive")
}
