// replay verifies a session's persisted artifacts offline: it summarizes a
// snapshot and checks the tick log for gaps, missing digests and cost
// anomalies over the requested range.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/brentyates/greenkeeper-simulator-sub005/internal/persistence/snapshot"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/session"
)

func main() {
	var (
		snapPath = flag.String("snapshot", "", "path to .snap.zst (optional)")
		ticksDir = flag.String("ticks", "", "dir containing ticks-*.jsonl.zst")
		fromTick = flag.Uint64("from_tick", 0, "start verifying from tick (inclusive, optional)")
		toTick   = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	if *snapPath == "" && *ticksDir == "" {
		fmt.Fprintln(os.Stderr, "missing -snapshot or -ticks")
		os.Exit(2)
	}

	if *snapPath != "" {
		snap, err := snapshot.Read(*snapPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read snapshot:", err)
			os.Exit(1)
		}
		fmt.Printf("snapshot v%d session=%s tick=%d seed=%d course=%dx%d units=%d budget=%.2f research=%.1f\n",
			snap.Header.Version, snap.Header.SessionID, snap.Header.Tick, snap.Seed,
			snap.CourseWidth, snap.CourseHeight, len(snap.Units), snap.Budget, snap.ResearchPoints)
	}

	if *ticksDir == "" {
		return
	}

	files, err := listTickFiles(*ticksDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list ticks:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no tick files found in", *ticksDir)
		os.Exit(1)
	}

	var (
		checked   uint64
		prev      uint64
		havePrev  bool
		totalCost float64
		effects   int
		commands  int
	)
	for _, path := range files {
		if err := scanFile(path, *fromTick, *toTick, func(e session.TickLogEntry) error {
			if havePrev && e.Tick != prev+1 {
				return fmt.Errorf("tick gap: %d follows %d (file=%s)", e.Tick, prev, filepath.Base(path))
			}
			if e.Digest == "" {
				return fmt.Errorf("tick %d missing digest (file=%s)", e.Tick, filepath.Base(path))
			}
			if e.OperatingCost < 0 {
				return fmt.Errorf("tick %d negative operating cost %v (file=%s)", e.Tick, e.OperatingCost, filepath.Base(path))
			}
			prev, havePrev = e.Tick, true
			checked++
			totalCost += e.OperatingCost
			effects += e.Effects
			commands += len(e.Commands)
			return nil
		}); err != nil {
			fmt.Fprintln(os.Stderr, "verify:", err)
			os.Exit(1)
		}
		if *toTick != 0 && havePrev && prev >= *toTick {
			break
		}
	}
	fmt.Printf("log ok: checked=%d ticks, operating_cost=%.2f, effects=%d, commands=%d\n",
		checked, totalCost, effects, commands)
}

func listTickFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "ticks-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

func scanFile(path string, fromTick, toTick uint64, fn func(session.TickLogEntry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	for sc.Scan() {
		var entry session.TickLogEntry
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			return fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		if entry.Tick < fromTick {
			continue
		}
		if toTick != 0 && entry.Tick > toTick {
			return nil
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return sc.Err()
}
