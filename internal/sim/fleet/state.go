package fleet

import (
	"fmt"
	"sort"
)

// State is the whole fleet: an ordered unit collection plus the shared
// charging-station location. Purchase, sell and tick each return a new
// State value; a caller-held previous snapshot is never mutated.
type State struct {
	Units []RobotUnit

	StationX float64
	StationZ float64

	// Ordinals tracks how many units of each template were ever purchased,
	// so IDs stay unique across sell/re-buy cycles.
	Ordinals map[string]int
}

// NewState creates an empty fleet with the shared charging station at the
// given world location.
func NewState(stationX, stationZ float64) State {
	return State{
		StationX: stationX,
		StationZ: stationZ,
		Ordinals: map[string]int{},
	}
}

func (s State) clone() State {
	next := s
	next.Units = make([]RobotUnit, len(s.Units))
	copy(next.Units, s.Units)
	next.Ordinals = make(map[string]int, len(s.Ordinals))
	for k, v := range s.Ordinals {
		next.Ordinals[k] = v
	}
	return next
}

// Purchase adds a unit of the given template. The request is rejected
// (ok=false, state unchanged) when the template is not autonomous, carries
// no purchase cost, or its type cannot be derived from the identifier.
// The new unit spawns at the charging station with a full gauge.
func (s State) Purchase(equipmentID string, stats EquipmentStats) (next State, cost float64, ok bool) {
	if !stats.Autonomous {
		return s, 0, false
	}
	cost, priced := stats.PurchaseCost()
	if !priced {
		return s, 0, false
	}
	typ, known := TypeForEquipment(equipmentID)
	if !known {
		return s, 0, false
	}

	next = s.clone()
	next.Ordinals[equipmentID]++
	u := RobotUnit{
		ID:              fmt.Sprintf("%s_%d", equipmentID, next.Ordinals[equipmentID]),
		EquipmentID:     equipmentID,
		Type:            typ,
		Stats:           stats,
		WorldX:          s.StationX,
		WorldZ:          s.StationZ,
		ResourceCurrent: stats.Capacity(),
		ResourceMax:     stats.Capacity(),
		Phase:           Idle{},
	}
	next.Units = append(next.Units, u)
	return next, cost, true
}

// Sell removes the unit with the given ID. Refund is 50% of the template's
// purchase cost, or 0 when the cost is unknown. Selling a unit that does
// not exist returns ok=false with the state unchanged.
func (s State) Sell(unitID string) (next State, refund float64, ok bool) {
	idx := -1
	for i := range s.Units {
		if s.Units[i].ID == unitID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, 0, false
	}
	if cost, priced := s.Units[idx].Stats.PurchaseCost(); priced {
		refund = cost * 0.5
	}
	next = s.clone()
	next.Units = append(next.Units[:idx], next.Units[idx+1:]...)
	return next, refund, true
}

// Unit returns the unit with the given ID, if present.
func (s State) Unit(unitID string) (RobotUnit, bool) {
	for i := range s.Units {
		if s.Units[i].ID == unitID {
			return s.Units[i], true
		}
	}
	return RobotUnit{}, false
}

func (s State) CountByType(t UnitType) int {
	n := 0
	for i := range s.Units {
		if s.Units[i].Type == t {
			n++
		}
	}
	return n
}

func (s State) CountByEquipment(equipmentID string) int {
	n := 0
	for i := range s.Units {
		if s.Units[i].EquipmentID == equipmentID {
			n++
		}
	}
	return n
}

// ActiveCount counts units currently doing or traveling to work.
func (s State) ActiveCount() int {
	n := 0
	for i := range s.Units {
		switch s.Units[i].Status() {
		case StatusWorking, StatusMoving:
			n++
		}
	}
	return n
}

func (s State) BrokenCount() int {
	n := 0
	for i := range s.Units {
		if s.Units[i].Status() == StatusBroken {
			n++
		}
	}
	return n
}

// StatusBreakdown is the full fleet census. Working folds in moving units:
// a unit in transit to a job counts as working for reporting purposes.
type StatusBreakdown struct {
	Total    int
	Working  int
	Idle     int
	Charging int
	Broken   int
}

func (s State) Breakdown() StatusBreakdown {
	b := StatusBreakdown{Total: len(s.Units)}
	for i := range s.Units {
		switch s.Units[i].Status() {
		case StatusWorking, StatusMoving:
			b.Working++
		case StatusIdle:
			b.Idle++
		case StatusCharging:
			b.Charging++
		case StatusBroken:
			b.Broken++
		}
	}
	return b
}

// TemplateInfo pairs a template identifier with its stats, as supplied by
// the research collaborator.
type TemplateInfo struct {
	EquipmentID string
	Stats       EquipmentStats
}

// PurchaseOption describes one autonomous template the player could buy.
type PurchaseOption struct {
	EquipmentID string
	Cost        float64
	Owned       int
	Unlocked    bool
	Affordable  bool
}

// PurchaseOptions reports, for every priced autonomous template, whether it
// is unlocked by research and affordable with the given funds, plus the
// current ownership count. Results are sorted by template ID.
func (s State) PurchaseOptions(templates []TemplateInfo, unlocked map[string]bool, funds float64) []PurchaseOption {
	opts := make([]PurchaseOption, 0, len(templates))
	for _, t := range templates {
		if !t.Stats.Autonomous {
			continue
		}
		cost, priced := t.Stats.PurchaseCost()
		if !priced {
			continue
		}
		opts = append(opts, PurchaseOption{
			EquipmentID: t.EquipmentID,
			Cost:        cost,
			Owned:       s.CountByEquipment(t.EquipmentID),
			Unlocked:    unlocked[t.EquipmentID],
			Affordable:  cost <= funds,
		})
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].EquipmentID < opts[j].EquipmentID })
	return opts
}
