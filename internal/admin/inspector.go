package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/pixil98/go-garden/internal/game"
	"github.com/pixil98/go-garden/internal/persistence"
)

// Inspector reads and summarises the persisted game data.
type Inspector struct {
	store      persistence.Store
	namespaces []string
}

func NewInspector(store persistence.Store, namespaces []string) *Inspector {
	return &Inspector{store: store, namespaces: namespaces}
}

func (i *Inspector) Namespaces() []string {
	return append([]string(nil), i.namespaces...)
}

// Keys lists the documents in ns in sorted order.
func (i *Inspector) Keys(ns string) ([]string, error) {
	keys, err := i.store.Keys(ns)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", ns, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Document returns the document at ns/key as indented JSON.
func (i *Inspector) Document(ns, key string) (string, error) {
	var raw json.RawMessage
	found, err := i.store.Load(ns, key, &raw)
	if err != nil {
		return "", fmt.Errorf("loading %s/%s: %w", ns, key, err)
	}
	if !found {
		return "", fmt.Errorf("%s/%s not found", ns, key)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return "", fmt.Errorf("formatting %s/%s: %w", ns, key, err)
	}
	return out.String(), nil
}

// Summary is a one line description of a document for list views.
func (i *Inspector) Summary(ns, key string) string {
	switch ns {
	case game.NamespacePlayers:
		var data game.PlayerData
		if ok, err := i.store.Load(ns, key, &data); err != nil || !ok {
			return ""
		}
		return fmt.Sprintf("$%d, %d items, %d plants, saved %s",
			data.Cash, len(data.Inventory), len(data.GrowingPlants), formatMillis(data.LastSavedAt))
	case game.NamespaceGlobal:
		var data game.GlobalGameData
		if ok, err := i.store.Load(ns, key, &data); err != nil || !ok {
			return ""
		}
		return fmt.Sprintf("%d gardens claimed, next #%d", len(data.GardenOwnership), data.NextGardenIndex)
	}
	return ""
}

func (i *Inspector) Delete(ns, key string) error {
	return i.store.Delete(ns, key)
}

// Export writes a snapshot of every namespace to path.
func (i *Inspector) Export(path string, now time.Time) (int, error) {
	return persistence.WriteSnapshot(path, i.store, i.namespaces, now)
}

// Restore imports the snapshot at path. The store must be empty.
func (i *Inspector) Restore(path string) (int, error) {
	for _, ns := range i.namespaces {
		keys, err := i.store.Keys(ns)
		if err != nil {
			return 0, fmt.Errorf("listing %s: %w", ns, err)
		}
		if len(keys) > 0 {
			return 0, fmt.Errorf("refusing to restore into non-empty namespace %q", ns)
		}
	}

	_, n, err := persistence.ReadSnapshot(path, i.store)
	return n, err
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "never"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
