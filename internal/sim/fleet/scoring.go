package fleet

import (
	"math"
	"strings"
)

// TraverseFunc reports whether a unit may stand at the given world position.
// It is injected by the course collaborator; a nil predicate means the
// whole course is traversable.
type TraverseFunc func(u *RobotUnit, worldX, worldZ float64) bool

// CellKey is a floor-rounded world cell, used for target de-duplication.
type CellKey struct{ X, Z int }

func CellOf(x, z float64) CellKey {
	return CellKey{X: int(math.Floor(x)), Z: int(math.Floor(z))}
}

const (
	// needFloor is the minimum need worth dispatching a unit for.
	needFloor = 0.12
	// distHalf controls how fast distance erodes a score. The penalty is
	// sub-linear so an extreme need stays on top even far away, while
	// moderate needs are decided by proximity.
	distHalf = 24.0
	// pathSampleStep is the spacing of traversability samples along the
	// straight line from unit to candidate.
	pathSampleStep = 2.0
)

func allowedTerrains(u *RobotUnit) []Terrain {
	id := strings.ToLower(u.EquipmentID)
	switch u.Type {
	case Mower:
		switch {
		case strings.Contains(id, "green"):
			return []Terrain{TerrainGreen}
		case strings.Contains(id, "fairway"):
			return []Terrain{TerrainFairway, TerrainTee}
		default:
			return []Terrain{TerrainGreen, TerrainTee, TerrainFairway, TerrainRough}
		}
	case Sprayer, Spreader:
		return []Terrain{TerrainGreen, TerrainTee, TerrainFairway, TerrainRough}
	case Raker:
		return []Terrain{TerrainBunker}
	}
	return nil
}

func terrainCompatible(u *RobotUnit, c WorkCandidate) bool {
	if c.Dominant == TerrainWater {
		return false
	}
	for _, t := range allowedTerrains(u) {
		if c.hasTerrain(t) {
			return true
		}
	}
	return false
}

// needScore rates how badly the bucket wants this unit's labor, in [0,1].
// Mowers look at the tallest grass present rather than the average so a
// small overgrown hotspot is not masked; sprayers look at the driest spot.
func needScore(u *RobotUnit, c WorkCandidate) float64 {
	var need float64
	switch u.Type {
	case Mower:
		need = 0.7*c.heightPeak() + 0.3*(1-c.Health)
	case Sprayer:
		need = 1 - c.moistureLow()
	case Spreader:
		need = 1 - c.Nutrients
	case Raker:
		need = 1 - c.Health
	}
	return clamp01(need)
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

// scoreCandidate combines need with proximity. The distance penalty grows
// with the square root of distance, so need dominates at the extremes and
// distance breaks ties in the middle range.
func scoreCandidate(need, dist float64) float64 {
	return need / math.Sqrt(1+dist/distHalf)
}

// pathClear samples the straight line between two points at fixed
// intervals, endpoint included. A walkable endpoint behind a blocked band
// is rejected.
func pathClear(u *RobotUnit, fromX, fromZ, toX, toZ float64, canTraverse TraverseFunc) bool {
	if canTraverse == nil {
		return true
	}
	dx, dz := toX-fromX, toZ-fromZ
	dist := math.Hypot(dx, dz)
	if dist == 0 {
		return canTraverse(u, toX, toZ)
	}
	steps := int(math.Ceil(dist / pathSampleStep))
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		if !canTraverse(u, fromX+dx*f, fromZ+dz*f) {
			return false
		}
	}
	return true
}

// selectTarget picks the best surviving work candidate for an idle unit.
// Buckets in the exclude set (already claimed by another unit) are skipped.
func selectTarget(u *RobotUnit, candidates []WorkCandidate, canTraverse TraverseFunc, exclude map[CellKey]bool) (WorkCandidate, bool) {
	var best WorkCandidate
	bestScore := 0.0
	found := false
	for _, c := range candidates {
		if exclude != nil && exclude[CellOf(c.WorldX, c.WorldZ)] {
			continue
		}
		if !terrainCompatible(u, c) {
			continue
		}
		need := needScore(u, c)
		if need < needFloor {
			continue
		}
		dist := math.Hypot(c.WorldX-u.WorldX, c.WorldZ-u.WorldZ)
		score := scoreCandidate(need, dist)
		if found && score <= bestScore {
			continue
		}
		if !pathClear(u, u.WorldX, u.WorldZ, c.WorldX, c.WorldZ, canTraverse) {
			continue
		}
		best = c
		bestScore = score
		found = true
	}
	return best, found
}
