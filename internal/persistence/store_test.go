package persistence

import (
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

type doc struct {
	Name  string   `json:"name"`
	Cash  int      `json:"cash"`
	Items []string `json:"items"`
}

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(t.TempDir())
			testutil.AssertErrorContains(t, err, "")
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "garden.db"))
			testutil.AssertErrorContains(t, err, "")
			return s
		},
		"gdata": func(t *testing.T) Store {
			t.Setenv("HOME", t.TempDir())
			s, err := OpenGdata("garden-test")
			testutil.AssertErrorContains(t, err, "")
			return s
		},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer func() { _ = s.Close() }()

			var got doc
			found, err := s.Load("players", "p1", &got)
			testutil.AssertErrorContains(t, err, "")
			testutil.AssertEqual(t, "found before save", found, false)

			exp := doc{Name: "alice", Cash: 25, Items: []string{"Carrot Seed"}}
			testutil.AssertErrorContains(t, s.Save("players", "p1", exp), "")
			testutil.AssertErrorContains(t, s.Save("players", "p2", doc{Name: "bob"}), "")
			testutil.AssertErrorContains(t, s.Save("global", "global_game_data", doc{Name: "global"}), "")

			found, err = s.Load("players", "p1", &got)
			testutil.AssertErrorContains(t, err, "")
			testutil.AssertEqual(t, "found", found, true)
			testutil.AssertEqual(t, "doc", got, exp)

			// Overwrite.
			exp.Cash = 40
			testutil.AssertErrorContains(t, s.Save("players", "p1", exp), "")
			_, err = s.Load("players", "p1", &got)
			testutil.AssertErrorContains(t, err, "")
			testutil.AssertEqual(t, "overwritten", got.Cash, 40)

			keys, err := s.Keys("players")
			testutil.AssertErrorContains(t, err, "")
			testutil.AssertEqual(t, "keys", keys, []string{"p1", "p2"})

			testutil.AssertErrorContains(t, s.Delete("players", "p2"), "")
			testutil.AssertErrorContains(t, s.Delete("players", "p2"), "")
			keys, err = s.Keys("players")
			testutil.AssertErrorContains(t, err, "")
			testutil.AssertEqual(t, "keys after delete", keys, []string{"p1"})

			keys, err = s.Keys("accounts")
			testutil.AssertErrorContains(t, err, "")
			testutil.AssertEqual(t, "empty namespace", len(keys), 0)
		})
	}
}

func TestStore_InvalidKey(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer func() { _ = s.Close() }()

			testutil.AssertErrorContains(t, s.Save("players", "../escape", doc{}), "invalid key")
			_, err := s.Load("bad/ns", "p1", &doc{})
			testutil.AssertErrorContains(t, err, "invalid namespace")
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		cfg    Config
		expErr string
	}{
		"file":            {cfg: Config{Backend: BackendFile, Path: "data"}},
		"sqlite":          {cfg: Config{Backend: BackendSQLite, Path: "data/garden.db"}},
		"gdata":           {cfg: Config{Backend: BackendGdata, Path: "grow-a-garden"}},
		"unknown backend": {cfg: Config{Backend: "redis", Path: "x"}, expErr: "backend must be one of"},
		"missing path":    {cfg: Config{Backend: BackendFile}, expErr: "path is required"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.cfg.Validate()
			testutil.AssertErrorContains(t, err, tt.expErr)
			if tt.expErr == "" && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
