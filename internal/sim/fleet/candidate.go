package fleet

// Terrain codes as produced by the course collaborator. The fleet only
// needs them for compatibility filtering; their geometry stays external.
type Terrain string

const (
	TerrainGreen   Terrain = "green"
	TerrainTee     Terrain = "tee"
	TerrainFairway Terrain = "fairway"
	TerrainRough   Terrain = "rough"
	TerrainBunker  Terrain = "bunker"
	TerrainWater   Terrain = "water"
	TerrainPath    Terrain = "path"
)

// WorkCandidate is one spatial bucket of the course snapshot: aggregate
// condition metrics for a small area so scoring never iterates cells.
// All metrics are normalized to [0,1]. GrassHeight 1 means fully overgrown.
type WorkCandidate struct {
	WorldX float64
	WorldZ float64

	Moisture    float64
	Nutrients   float64
	GrassHeight float64
	Health      float64

	// Extremes across the bucket. A small hotspot must not be masked by
	// the bucket average, so mowers score on the max height and sprayers
	// on the min moisture. Producers that do not track extremes may leave
	// them zero; the accessors fall back to the aggregates.
	MoistureMin    float64
	GrassHeightMax float64

	Dominant Terrain
	Terrains []Terrain
	Faces    int
}

func (c WorkCandidate) moistureLow() float64 {
	if c.MoistureMin > 0 && c.MoistureMin <= c.Moisture {
		return c.MoistureMin
	}
	return c.Moisture
}

func (c WorkCandidate) heightPeak() float64 {
	if c.GrassHeightMax > c.GrassHeight {
		return c.GrassHeightMax
	}
	return c.GrassHeight
}

func (c WorkCandidate) hasTerrain(t Terrain) bool {
	if c.Dominant == t {
		return true
	}
	for _, p := range c.Terrains {
		if p == t {
			return true
		}
	}
	return false
}

// WorkEffect is an environment mutation emitted when a unit completes an
// arrival. The course collaborator applies it as a mow/water/fertilize/rake
// operation at the given coordinates.
type WorkEffect struct {
	Type        UnitType `json:"type"`
	EquipmentID string   `json:"equipment_id"`
	WorldX      float64  `json:"world_x"`
	WorldZ      float64  `json:"world_z"`
	Efficiency  float64  `json:"efficiency"`
}
