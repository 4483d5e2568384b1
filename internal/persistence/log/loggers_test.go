package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/session"
)

func TestTickLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)

	want := []session.TickLogEntry{
		{Tick: 0, OperatingCost: 0.1, Effects: 0, Digest: "d0"},
		{Tick: 1, OperatingCost: 0.2, Effects: 2, Commands: []string{"BUY:"}, Digest: "d1"},
		{Tick: 2, OperatingCost: 0.3, Effects: 1, Digest: "d2"},
	}
	for _, e := range want {
		if err := l.WriteTick(e); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	ents, err := os.ReadDir(filepath.Join(dir, "ticks"))
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) != 1 {
		t.Fatalf("files = %d, want 1", len(ents))
	}
	name := ents[0].Name()
	if !strings.HasPrefix(name, "ticks-") || !strings.HasSuffix(name, ".jsonl.zst") {
		t.Fatalf("unexpected file name %q", name)
	}

	f, err := os.Open(filepath.Join(dir, "ticks", name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	var got []session.TickLogEntry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e session.TickLogEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatal(err)
		}
		got = append(got, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}

	if len(got) != len(want) {
		t.Fatalf("entries = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Tick != want[i].Tick || got[i].Digest != want[i].Digest {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTickLogger_CloseIdempotent(t *testing.T) {
	l := NewTickLogger(t.TempDir())
	if err := l.WriteTick(session.TickLogEntry{Tick: 0, Digest: "d"}); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
}
