package persistence

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

const snapshotVersion = 1

// SnapshotHeader is the first line of a snapshot.
type SnapshotHeader struct {
	Version    int      `json:"version"`
	CreatedAt  int64    `json:"created_at"`
	Namespaces []string `json:"namespaces"`
}

// Record is one stored document.
type Record struct {
	Namespace string          `json:"ns"`
	Key       string          `json:"key"`
	Doc       json.RawMessage `json:"doc"`
}

// Export writes every document in namespaces to w as zstd compressed
// JSON lines. It returns the number of records written.
func Export(w io.Writer, s Store, namespaces []string, now time.Time) (int, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriterSize(enc, 64*1024)
	je := json.NewEncoder(bw)

	if err := je.Encode(SnapshotHeader{Version: snapshotVersion, CreatedAt: now.UnixMilli(), Namespaces: namespaces}); err != nil {
		_ = enc.Close()
		return 0, fmt.Errorf("writing header: %w", err)
	}

	count := 0
	for _, ns := range namespaces {
		keys, err := s.Keys(ns)
		if err != nil {
			_ = enc.Close()
			return count, err
		}
		for _, key := range keys {
			var doc json.RawMessage
			found, err := s.Load(ns, key, &doc)
			if err != nil {
				_ = enc.Close()
				return count, err
			}
			if !found {
				continue
			}
			if err := je.Encode(Record{Namespace: ns, Key: key, Doc: doc}); err != nil {
				_ = enc.Close()
				return count, fmt.Errorf("writing %s/%s: %w", ns, key, err)
			}
			count++
		}
	}

	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return count, err
	}
	return count, enc.Close()
}

// Import reads a snapshot written by Export and saves every record into s.
func Import(r io.Reader, s Store) (SnapshotHeader, int, error) {
	var hdr SnapshotHeader

	dec, err := zstd.NewReader(r)
	if err != nil {
		return hdr, 0, err
	}
	defer dec.Close()

	jd := json.NewDecoder(bufio.NewReaderSize(dec, 64*1024))
	if err := jd.Decode(&hdr); err != nil {
		return hdr, 0, fmt.Errorf("reading header: %w", err)
	}
	if hdr.Version != snapshotVersion {
		return hdr, 0, fmt.Errorf("unsupported snapshot version %d", hdr.Version)
	}

	count := 0
	for {
		var rec Record
		err := jd.Decode(&rec)
		if err == io.EOF {
			break
		}
		if err != nil {
			return hdr, count, fmt.Errorf("reading record %d: %w", count+1, err)
		}
		if err := s.Save(rec.Namespace, rec.Key, rec.Doc); err != nil {
			return hdr, count, err
		}
		count++
	}
	return hdr, count, nil
}

// WriteSnapshot exports to path through a temp file.
func WriteSnapshot(path string, s Store, namespaces []string, now time.Time) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}

	n, err := Export(f, s, namespaces, now)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return n, err
	}
	return n, os.Rename(tmp, path)
}

// ReadSnapshot imports the snapshot at path into s.
func ReadSnapshot(path string, s Store) (SnapshotHeader, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return SnapshotHeader{}, 0, err
	}
	defer func() { _ = f.Close() }()
	return Import(f, s)
}

const snapshotExt = ".jsonl.zst"

// Snapshotter periodically writes snapshots into a directory, keeping the
// newest few.
type Snapshotter struct {
	store      Store
	dir        string
	namespaces []string
	interval   time.Duration
	keep       int
	now        func() time.Time
	last       time.Time
}

type SnapshotterOpt func(*Snapshotter)

func WithInterval(d time.Duration) SnapshotterOpt {
	return func(s *Snapshotter) {
		s.interval = d
	}
}

func WithKeep(n int) SnapshotterOpt {
	return func(s *Snapshotter) {
		s.keep = n
	}
}

func WithClock(now func() time.Time) SnapshotterOpt {
	return func(s *Snapshotter) {
		s.now = now
	}
}

func NewSnapshotter(store Store, dir string, namespaces []string, opts ...SnapshotterOpt) *Snapshotter {
	s := &Snapshotter{
		store:      store,
		dir:        dir,
		namespaces: namespaces,
		interval:   10 * time.Minute,
		keep:       5,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tick writes a snapshot once the interval has passed since the last one.
func (s *Snapshotter) Tick(ctx context.Context) error {
	now := s.now()
	if !s.last.IsZero() && now.Sub(s.last) < s.interval {
		return nil
	}
	s.last = now

	path := filepath.Join(s.dir, fmt.Sprintf("snapshot-%d%s", now.UnixMilli(), snapshotExt))
	n, err := WriteSnapshot(path, s.store, s.namespaces, now)
	if err != nil {
		// A failed snapshot should not stop the server.
		slog.ErrorContext(ctx, "writing snapshot", "path", path, "error", err)
		return nil
	}
	slog.InfoContext(ctx, "wrote snapshot", "path", path, "records", n)

	if err := s.prune(); err != nil {
		slog.WarnContext(ctx, "pruning snapshots", "dir", s.dir, "error", err)
	}
	return nil
}

func (s *Snapshotter) prune() error {
	snaps, err := ListSnapshots(s.dir)
	if err != nil {
		return err
	}
	if s.keep <= 0 || len(snaps) <= s.keep {
		return nil
	}
	for _, p := range snaps[:len(snaps)-s.keep] {
		if err := os.Remove(p); err != nil {
			return err
		}
	}
	return nil
}

// ListSnapshots returns snapshot paths in dir, oldest first.
func ListSnapshots(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotExt) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	// Names embed a millisecond timestamp of fixed width for current dates.
	sort.Strings(out)
	return out, nil
}
