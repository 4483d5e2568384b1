package fleet

import (
	"math"
	"math/rand"
	"time"
)

const (
	// lowResourceFrac is the gauge fraction below which a unit abandons
	// its work and heads for the charging station.
	lowResourceFrac = 0.2
	// chargeMinutes is the time a full recharge takes at the station.
	chargeMinutes = 30.0
	// fleetAIBreakdownScale is applied to the breakdown rate while the
	// fleet-AI research capability is active.
	fleetAIBreakdownScale = 0.6
	// nearStationDist is how close counts as "parked at the station" when
	// an idle unit decides whether to head back.
	nearStationDist = 3.0
)

// TickInput carries the per-tick snapshot from the external collaborators.
// Candidates and CanTraverse are read-only for the duration of the call and
// never retained across ticks.
type TickInput struct {
	Candidates     []WorkCandidate
	ElapsedMinutes float64
	FleetAIActive  bool
	CanTraverse    TraverseFunc

	// Rand drives the breakdown trials. Tests inject a seeded source;
	// a nil Rand falls back to a time-seeded one.
	Rand *rand.Rand
}

type TickResult struct {
	State         State
	Effects       []WorkEffect
	OperatingCost float64
}

// Tick advances the whole fleet by one simulated interval. It is pure with
// respect to its inputs apart from the injected breakdown randomness: the
// returned state is a fresh value and the input state is left untouched.
func Tick(st State, in TickInput) TickResult {
	rng := in.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	next := st.clone()
	var effects []WorkEffect
	var cost float64
	for i := range next.Units {
		eff, c := tickUnit(&next.Units[i], &next, in, rng)
		cost += c
		if eff != nil {
			effects = append(effects, *eff)
		}
	}
	dedupTargets(&next, in)
	return TickResult{State: next, Effects: effects, OperatingCost: cost}
}

// tickUnit runs the per-unit order of operations: breakdown/repair, then
// resource drain or charge, then the low-resource redirect, then the
// state-specific behavior.
func tickUnit(u *RobotUnit, st *State, in TickInput, rng *rand.Rand) (*WorkEffect, float64) {
	hours := in.ElapsedMinutes / 60

	// Repair countdown. A broken unit drains nothing, costs nothing and
	// emits nothing; position and gauge are untouched.
	if br, ok := u.Phase.(Broken); ok {
		rem := br.RepairRemaining - in.ElapsedMinutes
		if rem <= 0 {
			u.Phase = Idle{}
		} else {
			u.Phase = Broken{RepairRemaining: rem}
		}
		return nil, 0
	}

	// Stochastic breakdown, one Bernoulli trial per tick. The target is
	// abandoned by construction: Broken carries no target.
	if rate := u.Stats.BreakdownPerHour(); rate > 0 {
		if in.FleetAIActive {
			rate *= fleetAIBreakdownScale
		}
		p := 1 - math.Pow(1-rate, hours)
		if rng.Float64() < p {
			u.Phase = Broken{RepairRemaining: u.Stats.RepairMinutes()}
			return nil, 0
		}
	}

	// Drain while in motion or at work, charge at the station.
	switch u.Phase.(type) {
	case Moving, Working:
		u.ResourceCurrent -= u.Stats.DrainPerHour() * hours
		if u.ResourceCurrent < 0 {
			u.ResourceCurrent = 0
		}
	case Charging:
		u.ResourceCurrent += u.ResourceMax / chargeMinutes * in.ElapsedMinutes
		if u.ResourceCurrent > u.ResourceMax {
			u.ResourceCurrent = u.ResourceMax
		}
	}
	cost := u.Stats.CostPerHour() * hours

	// Low gauge overrides whatever the unit was doing.
	if u.ResourceCurrent < lowResourceFrac*u.ResourceMax {
		switch ph := u.Phase.(type) {
		case Charging:
		case Moving:
			if !ph.ToStation {
				u.Phase = Moving{TargetX: st.StationX, TargetZ: st.StationZ, ToStation: true}
			}
		default:
			u.Phase = Moving{TargetX: st.StationX, TargetZ: st.StationZ, ToStation: true}
		}
	}

	// A unit that worked last tick is released back into scoring.
	if _, ok := u.Phase.(Working); ok {
		u.Phase = Idle{}
	}

	if _, ok := u.Phase.(Idle); ok && u.ResourceCurrent >= lowResourceFrac*u.ResourceMax {
		if c, found := selectTarget(u, in.Candidates, in.CanTraverse, nil); found {
			u.Phase = Moving{TargetX: c.WorldX, TargetZ: c.WorldZ}
		} else if math.Hypot(u.WorldX-st.StationX, u.WorldZ-st.StationZ) > nearStationDist {
			// Nothing worth doing: drift home and top off.
			u.Phase = Moving{TargetX: st.StationX, TargetZ: st.StationZ, ToStation: true}
		}
	}

	if mv, ok := u.Phase.(Moving); ok {
		if stepMoving(u, mv, in.ElapsedMinutes, in.CanTraverse) {
			if mv.ToStation {
				u.Phase = Charging{}
				return nil, cost
			}
			u.Phase = Working{}
			eff := WorkEffect{
				Type:        u.Type,
				EquipmentID: u.EquipmentID,
				WorldX:      u.WorldX,
				WorldZ:      u.WorldZ,
				Efficiency:  u.Stats.WorkEfficiency(),
			}
			return &eff, cost
		}
		return nil, cost
	}

	if _, ok := u.Phase.(Charging); ok && u.ResourceCurrent >= u.ResourceMax {
		u.ResourceCurrent = u.ResourceMax
		u.Phase = Idle{}
	}
	return nil, cost
}

// dedupTargets is the fleet-wide second pass: no two units may hold the
// same floor-rounded target cell, whether freshly assigned or already in
// flight. Later units in fleet order lose the contest and re-enter scoring
// with every claimed cell excluded. Station runs are exempt; the station is
// a shared resource.
func dedupTargets(st *State, in TickInput) {
	claimed := map[CellKey]bool{}
	for i := range st.Units {
		u := &st.Units[i]
		mv, ok := u.Phase.(Moving)
		if !ok || mv.ToStation {
			continue
		}
		key := CellOf(mv.TargetX, mv.TargetZ)
		if !claimed[key] {
			claimed[key] = true
			continue
		}
		if c, found := selectTarget(u, in.Candidates, in.CanTraverse, claimed); found {
			u.Phase = Moving{TargetX: c.WorldX, TargetZ: c.WorldZ}
			claimed[CellOf(c.WorldX, c.WorldZ)] = true
		} else if math.Hypot(u.WorldX-st.StationX, u.WorldZ-st.StationZ) > nearStationDist {
			u.Phase = Moving{TargetX: st.StationX, TargetZ: st.StationZ, ToStation: true}
		} else {
			u.Phase = Idle{}
		}
	}
}
