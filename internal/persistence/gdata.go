package persistence

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/quasilyte/gdata/v2"
)

// GdataStore maps namespaces to gdata objects and keys to their properties.
// Data lives in the platform's per-user application data directory.
type GdataStore struct {
	m *gdata.Manager
}

func OpenGdata(appName string) (*GdataStore, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("opening gdata: %w", err)
	}
	return &GdataStore{m: m}, nil
}

func (s *GdataStore) Load(ns, key string, out any) (bool, error) {
	if err := validateKey(ns, key); err != nil {
		return false, err
	}

	data, err := s.m.LoadObjectProp(ns, key)
	if err != nil {
		return false, fmt.Errorf("loading %s/%s: %w", ns, key, err)
	}
	if data == nil {
		return false, nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return true, fmt.Errorf("unmarshalling %s/%s: %w", ns, key, err)
	}
	return true, nil
}

func (s *GdataStore) Save(ns, key string, v any) error {
	if err := validateKey(ns, key); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}
	if err := s.m.SaveObjectProp(ns, key, data); err != nil {
		return fmt.Errorf("saving %s/%s: %w", ns, key, err)
	}
	return nil
}

func (s *GdataStore) Delete(ns, key string) error {
	if err := validateKey(ns, key); err != nil {
		return err
	}
	return s.m.DeleteObjectProp(ns, key)
}

func (s *GdataStore) Keys(ns string) ([]string, error) {
	keys, err := s.m.ListObjectProps(ns)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", ns, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *GdataStore) Close() error {
	return nil
}
