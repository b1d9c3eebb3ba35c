package game

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pixil98/go-errors"
)

var colorPattern = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// PlantType describes a purchasable seed and the crop it grows into.
type PlantType struct {
	Name         string  `json:"name"`
	SeedModel    string  `json:"seed_model"`
	PlantModel   string  `json:"plant_model"`
	SeedScale    float64 `json:"seed_scale"`
	PlantScale   float64 `json:"plant_scale"`
	GrowthTimeMs int64   `json:"growth_time_ms"`
	FinalHeight  float64 `json:"final_height"`
	Color        string  `json:"color"`
	Emoji        string  `json:"emoji"`
	Cost         int     `json:"cost"`
	SellPrice    int     `json:"sell_price"`
}

func (p *PlantType) Validate() error {
	el := errors.NewErrorList()

	if p.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	} else if !strings.HasSuffix(p.Name, " Seed") {
		el.Add(fmt.Errorf("name must end with \" Seed\""))
	}
	if p.SeedModel == "" || p.PlantModel == "" {
		el.Add(fmt.Errorf("seed_model and plant_model are required"))
	}
	if p.SeedScale <= 0 || p.PlantScale <= 0 {
		el.Add(fmt.Errorf("scales must be positive"))
	}
	if p.GrowthTimeMs <= 0 {
		el.Add(fmt.Errorf("growth_time_ms must be positive"))
	}
	if p.Cost < 0 || p.SellPrice < 0 {
		el.Add(fmt.Errorf("cost and sell_price must not be negative"))
	}
	if !colorPattern.MatchString(p.Color) {
		el.Add(fmt.Errorf("color must be six hex digits"))
	}

	return el.Err()
}

func (p *PlantType) GrowthTime() time.Duration {
	return time.Duration(p.GrowthTimeMs) * time.Millisecond
}

// CropName is the harvested item name, "Carrot Seed" → "Carrot".
func (p *PlantType) CropName() string {
	return strings.TrimSuffix(p.Name, " Seed")
}

// Catalog is the set of plant types keyed by seed type ("carrot-seed").
type Catalog struct {
	types map[string]*PlantType
	order []string
}

func NewCatalog(types map[string]*PlantType) *Catalog {
	c := &Catalog{types: map[string]*PlantType{}}
	for k, v := range types {
		c.types[k] = v
		c.order = append(c.order, k)
	}
	sort.Slice(c.order, func(i, j int) bool {
		a, b := c.types[c.order[i]], c.types[c.order[j]]
		if a.Cost != b.Cost {
			return a.Cost < b.Cost
		}
		if a.GrowthTimeMs != b.GrowthTimeMs {
			return a.GrowthTimeMs < b.GrowthTimeMs
		}
		return c.order[i] < c.order[j]
	})
	return c
}

// Keys returns seed types in shop order.
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.order...)
}

func (c *Catalog) Get(seedType string) *PlantType {
	return c.types[seedType]
}

// Resolve maps user input such as "Carrot" or "carrot-seed" to a seed type.
func (c *Catalog) Resolve(arg string) (string, *PlantType) {
	key := strings.ToLower(strings.TrimSpace(arg))
	if !strings.HasSuffix(key, "-seed") {
		key += "-seed"
	}
	pt, ok := c.types[key]
	if !ok {
		return "", nil
	}
	return key, pt
}

// ByName finds the plant type whose seed name is name.
func (c *Catalog) ByName(name string) *PlantType {
	for _, k := range c.order {
		if c.types[k].Name == name {
			return c.types[k]
		}
	}
	return nil
}

// ByCrop finds the plant type that harvests into crop.
func (c *Catalog) ByCrop(crop string) *PlantType {
	for _, k := range c.order {
		if c.types[k].CropName() == crop {
			return c.types[k]
		}
	}
	return nil
}

// ByItem resolves an inventory item, seed or crop.
func (c *Catalog) ByItem(item string) *PlantType {
	if pt := c.ByName(item); pt != nil {
		return pt
	}
	return c.ByCrop(item)
}

func (c *Catalog) ByPlantModel(model string) *PlantType {
	for _, k := range c.order {
		if c.types[k].PlantModel == model {
			return c.types[k]
		}
	}
	return nil
}

// Summary lists the shop: "carrot (10 cash, 8s), melon (25 cash, 60s)".
func (c *Catalog) Summary() string {
	parts := make([]string, 0, len(c.order))
	for _, k := range c.order {
		pt := c.types[k]
		parts = append(parts, fmt.Sprintf("%s (%d cash, %ss)", strings.TrimSuffix(k, "-seed"), pt.Cost, seconds(pt.GrowthTime())))
	}
	return strings.Join(parts, ", ")
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// DefaultPlantTypes is the built-in shop.
func DefaultPlantTypes() map[string]*PlantType {
	return map[string]*PlantType{
		"carrot-seed": {
			Name: "Carrot Seed", SeedModel: "models/items/stick.gltf", PlantModel: "models/items/carrot.gltf",
			SeedScale: 0.3, PlantScale: 1.2, GrowthTimeMs: 8000, FinalHeight: 1.2,
			Color: "FFA500", Emoji: "🥕", Cost: 10, SellPrice: 15,
		},
		"melon-seed": {
			Name: "Melon Seed", SeedModel: "models/items/stick.gltf", PlantModel: "models/items/melon.gltf",
			SeedScale: 0.3, PlantScale: 1.5, GrowthTimeMs: 60000, FinalHeight: 0.8,
			Color: "00FF00", Emoji: "🍈", Cost: 25, SellPrice: 60,
		},
		"potato-seed": {
			Name: "Potato Seed", SeedModel: "models/items/stick.gltf", PlantModel: "models/items/potato.gltf",
			SeedScale: 0.3, PlantScale: 0.8, GrowthTimeMs: 360000, FinalHeight: 1.0,
			Color: "8B4513", Emoji: "🥔", Cost: 75, SellPrice: 250,
		},
		"mushroom-seed": {
			Name: "Mushroom Seed", SeedModel: "models/items/stick.gltf", PlantModel: "models/items/stew-mushroom.gltf",
			SeedScale: 0.3, PlantScale: 2.0, GrowthTimeMs: 10000, FinalHeight: 1.5,
			Color: "8B4513", Emoji: "🍄", Cost: 1000, SellPrice: 1750,
		},
		"cookie-seed": {
			Name: "Cookie Seed", SeedModel: "models/items/stick.gltf", PlantModel: "models/items/cookie.gltf",
			SeedScale: 0.3, PlantScale: 2.0, GrowthTimeMs: 25000, FinalHeight: 1.5,
			Color: "8B4513", Emoji: "🍪", Cost: 1000, SellPrice: 1750,
		},
	}
}
