package fleet

import "strings"

// UnitType groups equipment templates by the kind of work they perform.
type UnitType string

const (
	Mower    UnitType = "mower"
	Sprayer  UnitType = "sprayer"
	Spreader UnitType = "spreader"
	Raker    UnitType = "raker"
)

// TypeForEquipment derives the unit type from a template identifier. It is
// computed once at purchase time and never recomputed.
func TypeForEquipment(equipmentID string) (UnitType, bool) {
	id := strings.ToLower(equipmentID)
	switch {
	case strings.Contains(id, "mower"):
		return Mower, true
	case strings.Contains(id, "sprayer"), strings.Contains(id, "sprinkler"):
		return Sprayer, true
	case strings.Contains(id, "spreader"):
		return Spreader, true
	case strings.Contains(id, "rake"):
		return Raker, true
	}
	return "", false
}

// Status is the coarse state name used for queries, wire messages and
// snapshots. The full per-state payload lives in Phase.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusMoving   Status = "moving"
	StatusWorking  Status = "working"
	StatusCharging Status = "charging"
	StatusBroken   Status = "broken"
)

// Phase is a closed tagged variant over the unit states. Each variant
// carries exactly the fields meaningful to it, so combinations such as a
// broken unit with a live target are unrepresentable. Phase values are
// immutable; transitions always install a fresh value.
type Phase interface {
	Status() Status
	sealedPhase()
}

type Idle struct{}

func (Idle) Status() Status { return StatusIdle }
func (Idle) sealedPhase()   {}

// Moving carries the destination. ToStation marks a charging-station run,
// which charges on arrival instead of emitting a work effect and is exempt
// from target de-duplication (the station is a shared resource).
type Moving struct {
	TargetX   float64
	TargetZ   float64
	ToStation bool
}

func (Moving) Status() Status { return StatusMoving }
func (Moving) sealedPhase()   {}

type Working struct{}

func (Working) Status() Status { return StatusWorking }
func (Working) sealedPhase()   {}

type Charging struct{}

func (Charging) Status() Status { return StatusCharging }
func (Charging) sealedPhase()   {}

// Broken carries the repair countdown in simulated minutes.
type Broken struct {
	RepairRemaining float64
}

func (Broken) Status() Status { return StatusBroken }
func (Broken) sealedPhase()   {}

// RobotUnit is one autonomous machine in the fleet.
type RobotUnit struct {
	ID          string
	EquipmentID string
	Type        UnitType
	Stats       EquipmentStats

	WorldX float64
	WorldZ float64

	ResourceCurrent float64
	ResourceMax     float64

	Phase Phase
}

// Target reports the current destination, if the unit has one.
func (u *RobotUnit) Target() (x, z float64, ok bool) {
	mv, ok := u.Phase.(Moving)
	if !ok {
		return 0, 0, false
	}
	return mv.TargetX, mv.TargetZ, true
}

func (u *RobotUnit) Status() Status {
	if u.Phase == nil {
		return StatusIdle
	}
	return u.Phase.Status()
}
