// Package snapshot defines the durable session state format. A snapshot is
// a zstd stream holding a JSON header line (for quick inspection with
// standard tools) followed by a gob-encoded SnapshotV1 payload.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version   int    `json:"version"`
	SessionID string `json:"session_id"`
	Tick      uint64 `json:"tick"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed           int64   `json:"seed"`
	MinutesPerTick float64 `json:"minutes_per_tick"`

	// Operational parameters, captured so a resumed session replays the
	// same schedule.
	SnapshotEveryTicks    int     `json:"snapshot_every_ticks,omitempty"`
	ResearchPointsPerHour float64 `json:"research_points_per_hour,omitempty"`

	Budget float64 `json:"budget"`

	ResearchPoints   float64  `json:"research_points"`
	ResearchUnlocked []string `json:"research_unlocked"`

	CourseWidth  int      `json:"course_width"`
	CourseHeight int      `json:"course_height"`
	BucketSize   int      `json:"bucket_size"`
	Cells        []CellV1 `json:"cells"`

	StationX float64 `json:"station_x"`
	StationZ float64 `json:"station_z"`

	Units    []UnitV1       `json:"units"`
	Ordinals map[string]int `json:"ordinals,omitempty"`
}

type CellV1 struct {
	Terrain     string  `json:"terrain"`
	Moisture    float64 `json:"moisture"`
	Nutrients   float64 `json:"nutrients"`
	GrassHeight float64 `json:"grass_height"`
	Health      float64 `json:"health"`
}

// UnitV1 flattens the unit phase. Status selects the variant; the target
// and repair fields are only meaningful for the statuses that carry them.
type UnitV1 struct {
	ID          string `json:"id"`
	EquipmentID string `json:"equipment_id"`

	X        float64 `json:"x"`
	Z        float64 `json:"z"`
	Resource float64 `json:"resource"`

	Status          string  `json:"status"`
	TargetX         float64 `json:"target_x,omitempty"`
	TargetZ         float64 `json:"target_z,omitempty"`
	ToStation       bool    `json:"to_station,omitempty"`
	RepairRemaining float64 `json:"repair_remaining,omitempty"`
}

func Write(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func Read(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Skip the header line; the gob payload carries the header too.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
