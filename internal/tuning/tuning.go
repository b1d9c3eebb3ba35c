package tuning

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

// Tuning holds the gameplay constants. Zero values in a loaded file keep the defaults.
type Tuning struct {
	MarkerBlockID uint16 `yaml:"marker_block_id"`
	DirtBlockID   uint16 `yaml:"dirt_block_id"`

	GardenRadius     float64 `yaml:"garden_radius"`
	GardenScanRadius int     `yaml:"garden_scan_radius"`
	GardenScanHeight int     `yaml:"garden_scan_height"`
	DirtCheckRadius  int     `yaml:"dirt_check_radius"`
	DirtReach        float64 `yaml:"dirt_reach"`
	PlantReach       float64 `yaml:"plant_reach"`
	HarvestMatch     float64 `yaml:"harvest_match_distance"`

	StartingCash    int     `yaml:"starting_cash"`
	AddCashAmount   int     `yaml:"addcash_amount"`
	InventorySlots  int     `yaml:"inventory_slots"`
	HeldScaleFactor float64 `yaml:"held_scale_factor"`

	SpawnPoint  Vec `yaml:"spawn_point"`
	PlantOffset Vec `yaml:"plant_offset"`
	HeldOffset  Vec `yaml:"held_offset"`
	RocketForce Vec `yaml:"rocket_impulse"`

	GardenSearch GardenSearch `yaml:"garden_search"`

	BuyEffect     Duration `yaml:"buy_effect"`
	HarvestEffect Duration `yaml:"harvest_effect"`
	SettleDelay   Duration `yaml:"settle_delay"`
}

type GardenSearch struct {
	Center Vec `yaml:"center"`
	Radius int `yaml:"radius"`
	Step   int `yaml:"step"`
	Height int `yaml:"height"`
}

// Vec is a three element yaml sequence.
type Vec [3]float64

func (v Vec) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}

// Duration reads a yaml string such as "2s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func Default() Tuning {
	return Tuning{
		MarkerBlockID:    11,
		DirtBlockID:      13,
		GardenRadius:     15,
		GardenScanRadius: 10,
		GardenScanHeight: 2,
		DirtCheckRadius:  2,
		DirtReach:        3,
		PlantReach:       3,
		HarvestMatch:     0.1,
		StartingCash:     10,
		AddCashAmount:    100,
		InventorySlots:   9,
		HeldScaleFactor:  0.75,
		SpawnPoint:       Vec{-65, 10, 10},
		PlantOffset:      Vec{0.5, 0.3, 0.5},
		HeldOffset:       Vec{0, -0.5, -0.5},
		RocketForce:      Vec{0, 0, -20},
		GardenSearch: GardenSearch{
			Center: Vec{0, 10, 0},
			Radius: 50,
			Step:   5,
			Height: 5,
		},
		BuyEffect:     Duration(2 * time.Second),
		HarvestEffect: Duration(time.Second),
		SettleDelay:   Duration(200 * time.Millisecond),
	}
}

// Load reads a yaml file over the defaults. An empty path returns the defaults.
func Load(path string) (Tuning, error) {
	t := Default()
	if path == "" {
		return t, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}

	return t, t.Validate()
}

func (t Tuning) Validate() error {
	el := errors.NewErrorList()

	if t.MarkerBlockID == 0 || t.DirtBlockID == 0 {
		el.Add(fmt.Errorf("marker and dirt block ids must be non-zero"))
	}
	if t.MarkerBlockID == t.DirtBlockID {
		el.Add(fmt.Errorf("marker and dirt block ids must differ"))
	}
	if t.InventorySlots <= 0 {
		el.Add(fmt.Errorf("inventory_slots must be positive"))
	}
	if t.GardenRadius <= 0 {
		el.Add(fmt.Errorf("garden_radius must be positive"))
	}
	if t.GardenSearch.Step <= 0 {
		el.Add(fmt.Errorf("garden_search.step must be positive"))
	}

	return el.Err()
}
