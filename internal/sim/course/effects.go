package course

import (
	"math"

	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/fleet"
)

// effectRadius is how far around the unit a completed job reaches, in
// cells.
const effectRadius = 2

// Apply mutates the course with the tick's work effects: mowing cuts
// grass, spraying restores moisture, spreading restores nutrients, raking
// restores bunker health. Effect efficiency scales the strength.
func (c *Course) Apply(effects []fleet.WorkEffect) {
	for _, eff := range effects {
		c.applyOne(eff)
	}
}

func (c *Course) applyOne(eff fleet.WorkEffect) {
	cx := int(math.Floor(eff.WorldX))
	cz := int(math.Floor(eff.WorldZ))
	for z := cz - effectRadius; z <= cz+effectRadius; z++ {
		for x := cx - effectRadius; x <= cx+effectRadius; x++ {
			cell := c.At(x, z)
			if cell == nil {
				continue
			}
			switch eff.Type {
			case fleet.Mower:
				if isGrass(cell.Terrain) {
					cell.GrassHeight = clamp01(cell.GrassHeight - 0.6*eff.Efficiency)
					cell.Health = clamp01(cell.Health + 0.05*eff.Efficiency)
				}
			case fleet.Sprayer:
				if isGrass(cell.Terrain) {
					cell.Moisture = clamp01(cell.Moisture + 0.4*eff.Efficiency)
				}
			case fleet.Spreader:
				if isGrass(cell.Terrain) {
					cell.Nutrients = clamp01(cell.Nutrients + 0.4*eff.Efficiency)
				}
			case fleet.Raker:
				if cell.Terrain == fleet.TerrainBunker {
					cell.Health = clamp01(cell.Health + 0.5*eff.Efficiency)
				}
			}
		}
	}
}

func isGrass(t fleet.Terrain) bool {
	switch t {
	case fleet.TerrainGreen, fleet.TerrainTee, fleet.TerrainFairway, fleet.TerrainRough:
		return true
	}
	return false
}
