package persistence

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestExportImport(t *testing.T) {
	src, err := NewFileStore(t.TempDir())
	testutil.AssertErrorContains(t, err, "")
	testutil.AssertErrorContains(t, src.Save("players", "p1", doc{Name: "alice", Cash: 10}), "")
	testutil.AssertErrorContains(t, src.Save("players", "p2", doc{Name: "bob", Items: []string{"Melon"}}), "")
	testutil.AssertErrorContains(t, src.Save("global", "global_game_data", doc{Name: "global"}), "")

	var buf bytes.Buffer
	now := time.UnixMilli(1700000000000)
	n, err := Export(&buf, src, []string{"players", "global", "accounts"}, now)
	testutil.AssertErrorContains(t, err, "")
	testutil.AssertEqual(t, "exported", n, 3)

	dst, err := OpenSQLite(filepath.Join(t.TempDir(), "restore.db"))
	testutil.AssertErrorContains(t, err, "")
	defer func() { _ = dst.Close() }()

	hdr, n, err := Import(&buf, dst)
	testutil.AssertErrorContains(t, err, "")
	testutil.AssertEqual(t, "imported", n, 3)
	testutil.AssertEqual(t, "header", hdr, SnapshotHeader{Version: 1, CreatedAt: 1700000000000, Namespaces: []string{"players", "global", "accounts"}})

	var got doc
	found, err := dst.Load("players", "p2", &got)
	testutil.AssertErrorContains(t, err, "")
	testutil.AssertEqual(t, "found", found, true)
	testutil.AssertEqual(t, "doc", got, doc{Name: "bob", Items: []string{"Melon"}})
}

func TestImport_Corrupt(t *testing.T) {
	dst, err := NewFileStore(t.TempDir())
	testutil.AssertErrorContains(t, err, "")

	_, _, err = Import(bytes.NewReader([]byte("not zstd")), dst)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestSnapshotter_Tick(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	testutil.AssertErrorContains(t, err, "")
	testutil.AssertErrorContains(t, store.Save("players", "p1", doc{Name: "alice"}), "")

	dir := t.TempDir()
	now := time.UnixMilli(1700000000000)
	clock := func() time.Time { return now }
	s := NewSnapshotter(store, dir, []string{"players"}, WithInterval(time.Minute), WithKeep(2), WithClock(clock))
	ctx := context.Background()

	testutil.AssertErrorContains(t, s.Tick(ctx), "")
	snaps, err := ListSnapshots(dir)
	testutil.AssertErrorContains(t, err, "")
	testutil.AssertEqual(t, "first", len(snaps), 1)

	// Inside the interval nothing is written.
	now = now.Add(30 * time.Second)
	testutil.AssertErrorContains(t, s.Tick(ctx), "")
	snaps, _ = ListSnapshots(dir)
	testutil.AssertEqual(t, "within interval", len(snaps), 1)

	for i := 0; i < 3; i++ {
		now = now.Add(time.Minute)
		testutil.AssertErrorContains(t, s.Tick(ctx), "")
	}
	snaps, _ = ListSnapshots(dir)
	testutil.AssertEqual(t, "pruned", len(snaps), 2)
	testutil.AssertEqual(t, "newest kept", filepath.Base(snaps[1]), "snapshot-1700000210000.jsonl.zst")

	restored, err := NewFileStore(t.TempDir())
	testutil.AssertErrorContains(t, err, "")
	_, n, err := ReadSnapshot(snaps[1], restored)
	testutil.AssertErrorContains(t, err, "")
	testutil.AssertEqual(t, "records", n, 1)

	_, err = os.Stat(snaps[1] + ".tmp")
	testutil.AssertEqual(t, "temp removed", os.IsNotExist(err), true)
}
