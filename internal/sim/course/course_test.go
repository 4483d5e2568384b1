package course

import (
	"testing"

	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/fleet"
)

func testConfig() Config {
	return Config{Width: 96, Height: 96, Seed: 42, BucketSize: 8, StationX: 48, StationZ: 48}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(testConfig())
	b := Generate(testConfig())
	for i := range a.cells {
		if a.cells[i] != b.cells[i] {
			t.Fatalf("cell %d differs between identical seeds", i)
		}
	}
}

func TestGenerate_HasExpectedFeatures(t *testing.T) {
	c := Generate(testConfig())
	counts := map[fleet.Terrain]int{}
	for i := range c.cells {
		counts[c.cells[i].Terrain]++
	}
	for _, want := range []fleet.Terrain{
		fleet.TerrainGreen, fleet.TerrainFairway, fleet.TerrainRough,
		fleet.TerrainBunker, fleet.TerrainWater, fleet.TerrainTee,
	} {
		if counts[want] == 0 {
			t.Fatalf("no %s cells generated: %v", want, counts)
		}
	}
}

func TestCanTraverse_WaterAndBoundsBlocked(t *testing.T) {
	c := Generate(testConfig())
	if c.CanTraverse(nil, -1, 5) || c.CanTraverse(nil, 5, 1000) {
		t.Fatalf("out of bounds must be blocked")
	}
	// The pond center is water by construction.
	if c.CanTraverse(nil, float64(96/4), float64(96/2)) {
		t.Fatalf("pond must be blocked")
	}
	if !c.CanTraverse(nil, 48.5, 48.5) {
		t.Fatalf("station surroundings must be walkable")
	}
}

func TestCandidates_AggregatesExtremes(t *testing.T) {
	c := Generate(testConfig())
	// Plant a grass hotspot inside one bucket.
	cell := c.At(3, 3)
	cell.GrassHeight = 1.0
	cell.Moisture = 0.01

	cands := c.Candidates()
	if len(cands) == 0 {
		t.Fatalf("no candidates produced")
	}
	var bucket *fleet.WorkCandidate
	for i := range cands {
		if cands[i].WorldX < 8 && cands[i].WorldZ < 8 {
			bucket = &cands[i]
			break
		}
	}
	if bucket == nil {
		t.Fatalf("no bucket anchored in the first 8x8 area")
	}
	if bucket.GrassHeightMax < 1.0 {
		t.Fatalf("height max %v did not capture the hotspot", bucket.GrassHeightMax)
	}
	if bucket.MoistureMin > 0.01 {
		t.Fatalf("moisture min %v did not capture the dry spot", bucket.MoistureMin)
	}
	if bucket.GrassHeight >= 1.0 {
		t.Fatalf("average should stay below the hotspot value")
	}
	if bucket.Faces != 64 {
		t.Fatalf("faces=%d want 64", bucket.Faces)
	}
}

func TestCandidates_AnchorNeverOnWater(t *testing.T) {
	c := Generate(testConfig())
	for _, cand := range c.Candidates() {
		if cand.Dominant == fleet.TerrainWater {
			continue // rejected by the scorer anyway
		}
		cell := c.At(int(cand.WorldX), int(cand.WorldZ))
		if cell == nil {
			t.Fatalf("anchor (%v,%v) out of bounds", cand.WorldX, cand.WorldZ)
		}
		if cell.Terrain != cand.Dominant {
			t.Fatalf("anchor terrain %s != dominant %s", cell.Terrain, cand.Dominant)
		}
	}
}

func TestApply_MowerCutsAndSprayerWaters(t *testing.T) {
	c := Generate(testConfig())
	cell := c.At(50, 50)
	cell.Terrain = fleet.TerrainFairway
	cell.GrassHeight = 0.9
	cell.Moisture = 0.2

	c.Apply([]fleet.WorkEffect{{Type: fleet.Mower, WorldX: 50.5, WorldZ: 50.5, Efficiency: 1}})
	if cell.GrassHeight >= 0.9 {
		t.Fatalf("mowing did not cut: %v", cell.GrassHeight)
	}

	c.Apply([]fleet.WorkEffect{{Type: fleet.Sprayer, WorldX: 50.5, WorldZ: 50.5, Efficiency: 1}})
	if cell.Moisture <= 0.2 {
		t.Fatalf("spraying did not water: %v", cell.Moisture)
	}
}

func TestApply_RakerOnlyTouchesBunkers(t *testing.T) {
	c := Generate(testConfig())
	bunker := c.At(60, 60)
	bunker.Terrain = fleet.TerrainBunker
	bunker.Health = 0.3
	grass := c.At(61, 60)
	grass.Terrain = fleet.TerrainFairway
	grass.Health = 0.3

	c.Apply([]fleet.WorkEffect{{Type: fleet.Raker, WorldX: 60.5, WorldZ: 60.5, Efficiency: 1}})
	if bunker.Health <= 0.3 {
		t.Fatalf("raking did not restore the bunker")
	}
	if grass.Health != 0.3 {
		t.Fatalf("raking touched grass health: %v", grass.Health)
	}
}

func TestAdvance_GrassGrowsMoistureEvaporates(t *testing.T) {
	c := Generate(testConfig())
	cell := c.At(50, 50)
	cell.Terrain = fleet.TerrainFairway
	cell.GrassHeight = 0.2
	cell.Moisture = 0.5

	c.Advance(60)
	if cell.GrassHeight <= 0.2 {
		t.Fatalf("grass did not grow")
	}
	if cell.Moisture >= 0.5 {
		t.Fatalf("moisture did not evaporate")
	}
	if cell.GrassHeight > 1 || cell.Moisture < 0 {
		t.Fatalf("metrics out of range")
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	c := Generate(testConfig())
	c.Advance(120)

	cells := c.ExportCells()
	r, err := Restore(c.Config(), cells)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	for i := range c.cells {
		if c.cells[i] != r.cells[i] {
			t.Fatalf("cell %d differs after restore", i)
		}
	}

	if _, err := Restore(Config{Width: 2, Height: 2}, cells); err == nil {
		t.Fatalf("size mismatch must fail")
	}
}
