package course

import (
	"math"

	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/fleet"
)

type Config struct {
	Width      int
	Height     int
	Seed       int64
	BucketSize int
	StationX   float64
	StationZ   float64
}

// Cell is one square of the course grid. Metrics are normalized to [0,1];
// GrassHeight 1 means fully overgrown.
type Cell struct {
	Terrain     fleet.Terrain
	Moisture    float64
	Nutrients   float64
	GrassHeight float64
	Health      float64
}

// Course is the 2D terrain the fleet works on. It produces the bucketed
// work-candidate snapshot, owns the traversal predicate, applies work
// effects and drifts environmental conditions between ticks.
type Course struct {
	cfg   Config
	cells []Cell // row-major, z*Width+x
}

func Generate(cfg Config) *Course {
	if cfg.BucketSize <= 0 {
		cfg.BucketSize = 8
	}
	c := &Course{
		cfg:   cfg,
		cells: make([]Cell, cfg.Width*cfg.Height),
	}
	for z := 0; z < cfg.Height; z++ {
		for x := 0; x < cfg.Width; x++ {
			c.cells[z*cfg.Width+x] = generateCell(cfg, x, z)
		}
	}
	return c
}

// generateCell lays out a single stylized hole: tee boxes at the near end,
// a fairway spine up the middle, two greens with flanking bunkers, a pond,
// rough everywhere else. Deterministic per (seed, x, z).
func generateCell(cfg Config, x, z int) Cell {
	w, h := cfg.Width, cfg.Height
	t := fleet.TerrainRough

	inCircle := func(cx, cz, r int) bool {
		dx, dz := x-cx, z-cz
		return dx*dx+dz*dz <= r*r
	}

	fairwayHalf := w / 8
	jitter := int(hash2(cfg.Seed+11, x, z) % 3)
	switch {
	case inCircle(w/4, h/2, w/12): // pond
		t = fleet.TerrainWater
	case inCircle(w/2, h/6, 4), inCircle(w/2, 5*h/6, 4):
		t = fleet.TerrainGreen
	case inCircle(w/2-6, h/6, 2), inCircle(w/2+6, 5*h/6, 2):
		t = fleet.TerrainBunker
	case z >= h/12 && z <= h/12+2 && absInt(x-w/2) <= 2:
		t = fleet.TerrainTee
	case absInt(x-w/2) <= fairwayHalf+jitter-1:
		t = fleet.TerrainFairway
	}
	if int(cfg.StationX) == x && int(cfg.StationZ) == z {
		t = fleet.TerrainPath
	}

	cell := Cell{Terrain: t}
	cell.Moisture = 0.35 + frac(cfg.Seed+21, x, z)*0.4
	cell.Nutrients = 0.3 + frac(cfg.Seed+22, x, z)*0.5
	cell.Health = 0.7 + frac(cfg.Seed+23, x, z)*0.3
	switch t {
	case fleet.TerrainGreen:
		cell.GrassHeight = 0.05 + frac(cfg.Seed+24, x, z)*0.1
	case fleet.TerrainFairway, fleet.TerrainTee:
		cell.GrassHeight = 0.2 + frac(cfg.Seed+24, x, z)*0.2
	case fleet.TerrainRough:
		cell.GrassHeight = 0.4 + frac(cfg.Seed+24, x, z)*0.3
	default:
		cell.GrassHeight = 0
	}
	return cell
}

func (c *Course) Config() Config { return c.cfg }

// At returns the cell containing the given integer coordinates, or nil
// when out of bounds.
func (c *Course) At(x, z int) *Cell {
	if x < 0 || z < 0 || x >= c.cfg.Width || z >= c.cfg.Height {
		return nil
	}
	return &c.cells[z*c.cfg.Width+x]
}

// CanTraverse is the predicate injected into fleet.Tick. Water and
// out-of-bounds positions block every unit type.
func (c *Course) CanTraverse(_ *fleet.RobotUnit, worldX, worldZ float64) bool {
	cell := c.At(int(math.Floor(worldX)), int(math.Floor(worldZ)))
	return cell != nil && cell.Terrain != fleet.TerrainWater
}

// Advance drifts the environment: grass grows (faster on fertile ground),
// moisture evaporates, nutrients deplete, turf health follows both, and
// bunkers get scuffed up over time.
func (c *Course) Advance(elapsedMinutes float64) {
	for i := range c.cells {
		cell := &c.cells[i]
		switch cell.Terrain {
		case fleet.TerrainGreen, fleet.TerrainTee, fleet.TerrainFairway, fleet.TerrainRough:
			growth := 0.0008 * (0.5 + cell.Nutrients) * elapsedMinutes
			cell.GrassHeight = clamp01(cell.GrassHeight + growth)
			cell.Moisture = clamp01(cell.Moisture - 0.0005*elapsedMinutes)
			cell.Nutrients = clamp01(cell.Nutrients - 0.0002*elapsedMinutes)
			target := clamp01(0.3 + 0.4*cell.Moisture + 0.3*cell.Nutrients)
			cell.Health = clamp01(cell.Health + (target-cell.Health)*0.01*elapsedMinutes)
		case fleet.TerrainBunker:
			cell.Health = clamp01(cell.Health - 0.0004*elapsedMinutes)
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	return mix64(uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9))
}

// frac maps a cell hash into [0,1).
func frac(seed int64, x, z int) float64 {
	return float64(hash2(seed, x, z)%10000) / 10000
}
