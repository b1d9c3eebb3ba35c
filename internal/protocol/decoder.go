package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var ErrUnknownType = errors.New("unknown message type")

// clientMessages maps each client frame type to a constructor for its struct.
var clientMessages = map[string]func() any{
	TypeJoin:         func() any { return &JoinMsg{} },
	TypeChat:         func() any { return &ChatMsg{} },
	TypePosition:     func() any { return &PositionMsg{} },
	TypeInput:        func() any { return &InputMsg{} },
	TypeHold:         func() any { return &HoldMsg{} },
	TypeClaimGarden:  func() any { return &ClaimGardenMsg{} },
	TypePlantSeed:    func() any { return &PlantSeedMsg{} },
	TypeHarvestPlant: func() any { return &HarvestPlantMsg{} },
}

// DefaultInventorySlots bounds hold indices when no slot count is configured.
const DefaultInventorySlots = 9

// Decoder validates client frames against their JSON schema before decoding.
type Decoder struct {
	schemas        map[string]*jsonschema.Schema
	inventorySlots int
}

type DecoderOpt func(*Decoder)

// WithInventorySlots sets the number of slots a hold frame may index.
func WithInventorySlots(n int) DecoderOpt {
	return func(d *Decoder) {
		d.inventorySlots = n
	}
}

func NewDecoder(opts ...DecoderOpt) (*Decoder, error) {
	c := jsonschema.NewCompiler()
	d := &Decoder{
		schemas:        make(map[string]*jsonschema.Schema, len(clientMessages)),
		inventorySlots: DefaultInventorySlots,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.inventorySlots <= 0 {
		return nil, fmt.Errorf("inventory slots must be positive, got %d", d.inventorySlots)
	}

	for typ := range clientMessages {
		name := typ + ".schema.json"
		raw, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("reading schema %s: %w", name, err)
		}
		if typ == TypeHold {
			raw, err = setIndexMaximum(raw, d.inventorySlots-1)
			if err != nil {
				return nil, fmt.Errorf("patching schema %s: %w", name, err)
			}
		}
		url := "https://schemas.garden.local/" + name
		if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("adding schema %s: %w", name, err)
		}
		s, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compiling schema %s: %w", name, err)
		}
		d.schemas[typ] = s
	}

	return d, nil
}

// Decode returns a pointer to the message struct matching the frame's type.
func (d *Decoder) Decode(b []byte) (any, error) {
	base, err := DecodeBase(b)
	if err != nil {
		return nil, fmt.Errorf("decoding message: %w", err)
	}

	schema, ok := d.schemas[base.Type]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, base.Type)
	}

	// json.Number keeps integer checks exact.
	var doc any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding message: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid %s message: %w", base.Type, err)
	}

	msg := clientMessages[base.Type]()
	if err := json.Unmarshal(b, msg); err != nil {
		return nil, fmt.Errorf("decoding %s message: %w", base.Type, err)
	}
	return msg, nil
}

// setIndexMaximum rewrites properties.index.maximum in a schema document.
func setIndexMaximum(raw []byte, max int) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	props, _ := doc["properties"].(map[string]any)
	index, _ := props["index"].(map[string]any)
	if index == nil {
		return nil, errors.New("schema has no index property")
	}
	index["maximum"] = max
	return json.Marshal(doc)
}
