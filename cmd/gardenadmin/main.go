package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pixil98/go-garden/cmd/garden/command"
	"github.com/pixil98/go-garden/internal/admin"
	"github.com/pixil98/go-garden/internal/persistence"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "export":
			exportCmd(os.Args[2:])
			return
		case "restore":
			restoreCmd(os.Args[2:])
			return
		case "snapshots":
			snapshotsCmd(os.Args[2:])
			return
		case "browse":
			browseCmd(os.Args[2:])
			return
		}
	}
	browseCmd(os.Args[1:])
}

// storeFlags registers the flags that select a persistence backend.
func storeFlags(fs *flag.FlagSet) *persistence.Config {
	cfg := &persistence.Config{}
	fs.StringVar(&cfg.Backend, "backend", persistence.BackendSQLite, "persistence backend (file, sqlite, gdata)")
	fs.StringVar(&cfg.Path, "path", "data/garden.db", "store directory, database file or gdata app name")
	return cfg
}

func openInspector(cfg *persistence.Config) (*admin.Inspector, persistence.Store) {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "bad store flags:", err)
		os.Exit(2)
	}
	store, err := cfg.Open()
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		os.Exit(1)
	}
	return admin.NewInspector(store, command.SnapshotNamespaces), store
}

func browseCmd(args []string) {
	fs := flag.NewFlagSet("browse", flag.ExitOnError)
	cfg := storeFlags(fs)
	_ = fs.Parse(args)

	insp, store := openInspector(cfg)
	defer store.Close()

	if err := admin.NewConsole(insp).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "console:", err)
		os.Exit(1)
	}
}

func exportCmd(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	cfg := storeFlags(fs)
	out := fs.String("out", "", "snapshot file to write (required)")
	_ = fs.Parse(args)

	if *out == "" {
		fmt.Fprintln(os.Stderr, "missing -out")
		os.Exit(2)
	}

	insp, store := openInspector(cfg)
	defer store.Close()

	n, err := insp.Export(*out, time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, "export:", err)
		os.Exit(1)
	}
	fmt.Printf("exported %d records to %s\n", n, *out)
}

func restoreCmd(args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	cfg := storeFlags(fs)
	snapshotDir := fs.String("dir", "data/snapshots", "snapshot directory used when -snapshot is empty")
	snapPath := fs.String("snapshot", "", "snapshot file to restore (optional; defaults to latest)")
	_ = fs.Parse(args)

	path := *snapPath
	if path == "" {
		snaps, err := persistence.ListSnapshots(*snapshotDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "list snapshots:", err)
			os.Exit(1)
		}
		if len(snaps) == 0 {
			fmt.Fprintln(os.Stderr, "no snapshot found; provide -snapshot or run the server until it writes one")
			os.Exit(2)
		}
		path = snaps[len(snaps)-1]
	}

	insp, store := openInspector(cfg)
	defer store.Close()

	n, err := insp.Restore(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "restore:", err)
		os.Exit(1)
	}
	fmt.Printf("restored %d records from %s\n", n, path)
}

func snapshotsCmd(args []string) {
	fs := flag.NewFlagSet("snapshots", flag.ExitOnError)
	dir := fs.String("dir", "data/snapshots", "snapshot directory")
	_ = fs.Parse(args)

	snaps, err := persistence.ListSnapshots(*dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list snapshots:", err)
		os.Exit(1)
	}
	for _, s := range snaps {
		fmt.Println(s)
	}
}
