package persistence

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pixil98/go-errors"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendGdata  = "gdata"
)

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Store is a namespaced key/value store of JSON documents.
type Store interface {
	// Load decodes the document at ns/key into out. It reports false when
	// there is no such document.
	Load(ns, key string, out any) (bool, error)
	Save(ns, key string, v any) error
	Delete(ns, key string) error
	Keys(ns string) ([]string, error)
	Close() error
}

type Config struct {
	Backend string `json:"backend"`
	// Path is the directory for the file backend, the database file for
	// sqlite and the application name for gdata.
	Path string `json:"path"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	switch c.Backend {
	case BackendFile, BackendSQLite, BackendGdata:
	default:
		el.Add(fmt.Errorf("backend must be one of %s", strings.Join([]string{BackendFile, BackendSQLite, BackendGdata}, ", ")))
	}
	if c.Path == "" {
		el.Add(fmt.Errorf("path is required"))
	}

	return el.Err()
}

// Open creates the configured backend.
func (c *Config) Open() (Store, error) {
	switch c.Backend {
	case BackendFile:
		return NewFileStore(c.Path)
	case BackendSQLite:
		return OpenSQLite(c.Path)
	case BackendGdata:
		return OpenGdata(c.Path)
	}
	return nil, fmt.Errorf("unknown persistence backend %q", c.Backend)
}

func validateKey(ns, key string) error {
	if !keyPattern.MatchString(ns) {
		return fmt.Errorf("invalid namespace %q", ns)
	}
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}
