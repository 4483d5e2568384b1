package course

import "github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/fleet"

// Candidates aggregates the grid into BucketSize² buckets so the fleet can
// score small areas without per-cell iteration. Each bucket carries the
// metric averages plus the extremes the scorer keys on, and is anchored at
// the dominant-terrain cell nearest the bucket center so the resulting
// target is somewhere a unit can actually work.
func (c *Course) Candidates() []fleet.WorkCandidate {
	b := c.cfg.BucketSize
	var out []fleet.WorkCandidate
	for bz := 0; bz < c.cfg.Height; bz += b {
		for bx := 0; bx < c.cfg.Width; bx += b {
			if cand, ok := c.bucketAt(bx, bz, b); ok {
				out = append(out, cand)
			}
		}
	}
	return out
}

func (c *Course) bucketAt(bx, bz, b int) (fleet.WorkCandidate, bool) {
	var (
		faces                                int
		moisture, nutrients, height, health  float64
		moistureMin, heightMax               float64
		counts                               = map[fleet.Terrain]int{}
	)
	moistureMin = 1

	cx := float64(bx) + float64(b)/2
	cz := float64(bz) + float64(b)/2

	for z := bz; z < bz+b && z < c.cfg.Height; z++ {
		for x := bx; x < bx+b && x < c.cfg.Width; x++ {
			cell := &c.cells[z*c.cfg.Width+x]
			faces++
			counts[cell.Terrain]++
			moisture += cell.Moisture
			nutrients += cell.Nutrients
			height += cell.GrassHeight
			health += cell.Health
			if cell.Moisture < moistureMin {
				moistureMin = cell.Moisture
			}
			if cell.GrassHeight > heightMax {
				heightMax = cell.GrassHeight
			}
		}
	}
	if faces == 0 {
		return fleet.WorkCandidate{}, false
	}

	dominant := fleet.TerrainRough
	best := 0
	terrains := make([]fleet.Terrain, 0, len(counts))
	for t, n := range counts {
		terrains = append(terrains, t)
		if n > best || (n == best && t < dominant) {
			dominant = t
			best = n
		}
	}

	// Anchor the candidate on the dominant-terrain cell closest to the
	// bucket center.
	ax, az := cx, cz
	bestD := -1.0
	for z := bz; z < bz+b && z < c.cfg.Height; z++ {
		for x := bx; x < bx+b && x < c.cfg.Width; x++ {
			if c.cells[z*c.cfg.Width+x].Terrain != dominant {
				continue
			}
			px, pz := float64(x)+0.5, float64(z)+0.5
			d := (px-cx)*(px-cx) + (pz-cz)*(pz-cz)
			if bestD < 0 || d < bestD {
				bestD = d
				ax, az = px, pz
			}
		}
	}

	n := float64(faces)
	return fleet.WorkCandidate{
		WorldX:         ax,
		WorldZ:         az,
		Moisture:       moisture / n,
		Nutrients:      nutrients / n,
		GrassHeight:    height / n,
		Health:         health / n,
		MoistureMin:    moistureMin,
		GrassHeightMax: heightMax,
		Dominant:       dominant,
		Terrains:       terrains,
		Faces:          faces,
	}, true
}
