package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-garden/internal/commands"
	"github.com/pixil98/go-garden/internal/game"
	"github.com/pixil98/go-garden/internal/persistence"
	"github.com/pixil98/go-garden/internal/player"
	"github.com/pixil98/go-garden/internal/storage"
)

// AssetsConfig points at the static definitions loaded at startup.
type AssetsConfig struct {
	Commands AssetConfig[*commands.Command] `json:"commands"`
	Plants   AssetConfig[*game.PlantType]   `json:"plants"`
}

func (c *AssetsConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Commands.Validate("commands"))
	el.Add(c.Plants.Validate("plants"))
	return el.Err()
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildAssetStore() (*storage.AssetStore[T], error) {
	return storage.NewAssetStore[T](c.Path)
}

// PersistConfig selects the backend for player, account and garden data.
type PersistConfig struct {
	persistence.Config
}

func (c *PersistConfig) validate() error {
	if err := c.Config.Validate(); err != nil {
		return fmt.Errorf("persistence: %w", err)
	}
	return nil
}

type SnapshotConfig struct {
	Dir      string `json:"dir"`
	Interval string `json:"interval"`
	Keep     int    `json:"keep"`
}

func (c *SnapshotConfig) validate() error {
	el := errors.NewErrorList()
	if _, err := optionalDuration(c.Interval, 0); err != nil {
		el.Add(fmt.Errorf("snapshots.interval: %w", err))
	}
	if c.Keep < 0 {
		el.Add(fmt.Errorf("snapshots.keep must not be negative"))
	}
	return el.Err()
}

// Enabled reports whether periodic snapshots were configured.
func (c *SnapshotConfig) Enabled() bool {
	return c.Dir != ""
}

// SnapshotNamespaces are the store namespaces exported in a snapshot.
var SnapshotNamespaces = []string{game.NamespacePlayers, game.NamespaceGlobal, player.NamespaceAccounts}

func (c *SnapshotConfig) buildSnapshotter(store persistence.Store) *persistence.Snapshotter {
	var opts []persistence.SnapshotterOpt
	if d, err := optionalDuration(c.Interval, 0); err == nil && d > 0 {
		opts = append(opts, persistence.WithInterval(d))
	}
	if c.Keep > 0 {
		opts = append(opts, persistence.WithKeep(c.Keep))
	}
	return persistence.NewSnapshotter(store, c.Dir, SnapshotNamespaces, opts...)
}
