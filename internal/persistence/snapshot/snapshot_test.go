package snapshot

import (
	"path/filepath"
	"testing"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	snap := SnapshotV1{
		Header:         Header{Version: 1, SessionID: "S1", Tick: 3000},
		Seed:           1337,
		MinutesPerTick: 1,
		Budget:         42000.5,
		ResearchPoints: 12.5,
		ResearchUnlocked: []string{
			"fleet_ai", "mower_riding",
		},
		CourseWidth:  96,
		CourseHeight: 96,
		BucketSize:   8,
		StationX:     48,
		StationZ:     48,
		Cells: []CellV1{
			{Terrain: "fairway", Moisture: 0.5, Nutrients: 0.6, GrassHeight: 0.3, Health: 0.8},
			{Terrain: "water", Moisture: 1},
		},
		Units: []UnitV1{
			{ID: "mower_riding_1", EquipmentID: "mower_riding", X: 10, Z: 20, Resource: 44,
				Status: "moving", TargetX: 36, TargetZ: 12},
			{ID: "sprayer_tow_1", EquipmentID: "sprayer_tow", X: 48, Z: 48, Resource: 12,
				Status: "broken", RepairRemaining: 35.5},
		},
		Ordinals: map[string]int{"mower_riding": 1, "sprayer_tow": 1},
	}

	path := filepath.Join(t.TempDir(), "3000.snap.zst")
	if err := Write(path, snap); err != nil {
		t.Fatal(err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}

	if got.Header != snap.Header {
		t.Fatalf("header = %+v, want %+v", got.Header, snap.Header)
	}
	if got.Budget != snap.Budget || got.Seed != snap.Seed {
		t.Fatalf("scalars lost: %+v", got)
	}
	if len(got.Cells) != 2 || got.Cells[0].Terrain != "fairway" {
		t.Fatalf("cells = %+v", got.Cells)
	}
	if len(got.Units) != 2 {
		t.Fatalf("units = %d", len(got.Units))
	}
	if got.Units[1].RepairRemaining != 35.5 {
		t.Fatalf("repair remaining = %v", got.Units[1].RepairRemaining)
	}
	if got.Ordinals["mower_riding"] != 1 {
		t.Fatalf("ordinals = %v", got.Ordinals)
	}
}

func TestRead_MissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.snap.zst")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
