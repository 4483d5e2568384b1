package fleet

// EquipmentStats is the immutable performance profile of an equipment
// template. Catalog authors may omit most fields; a zero value means
// "unspecified" and resolves through the accessor methods below so the
// simulation never has to branch on presence.
type EquipmentStats struct {
	Efficiency      float64 `json:"efficiency,omitempty"`
	Speed           float64 `json:"speed,omitempty"` // world units per second
	FuelCapacity    float64 `json:"fuel_capacity,omitempty"`
	FuelConsumption float64 `json:"fuel_consumption,omitempty"` // units per hour
	FuelEfficiency  float64 `json:"fuel_efficiency,omitempty"`
	Durability      float64 `json:"durability,omitempty"`
	Autonomous      bool    `json:"autonomous,omitempty"`
	Cost            float64 `json:"cost,omitempty"`
	OperatingCost   float64 `json:"operating_cost,omitempty"` // currency per hour
	BreakdownRate   float64 `json:"breakdown_rate,omitempty"` // probability per hour
	RepairTime      float64 `json:"repair_time,omitempty"`    // minutes
}

const (
	defaultCapacity   = 100.0
	defaultRepairTime = 60.0 // minutes
)

// WorkEfficiency is the strength applied to the terrain per completed job.
func (s EquipmentStats) WorkEfficiency() float64 {
	if s.Efficiency <= 0 {
		return 1.0
	}
	return s.Efficiency
}

// MoveSpeed is world units per second. Zero means the unit does not move,
// which tests use to freeze a unit in place.
func (s EquipmentStats) MoveSpeed() float64 {
	if s.Speed < 0 {
		return 0
	}
	return s.Speed
}

func (s EquipmentStats) Capacity() float64 {
	if s.FuelCapacity <= 0 {
		return defaultCapacity
	}
	return s.FuelCapacity
}

// DrainPerHour is resource units consumed per simulated hour while the unit
// is moving or working. Unspecified templates consume nothing.
func (s EquipmentStats) DrainPerHour() float64 {
	if s.FuelConsumption <= 0 {
		return 0
	}
	return s.FuelConsumption * s.fuelEfficiency()
}

func (s EquipmentStats) fuelEfficiency() float64 {
	if s.FuelEfficiency <= 0 {
		return 1.0
	}
	return s.FuelEfficiency
}

func (s EquipmentStats) CostPerHour() float64 {
	if s.OperatingCost <= 0 {
		return 0
	}
	return s.OperatingCost
}

func (s EquipmentStats) BreakdownPerHour() float64 {
	if s.BreakdownRate <= 0 {
		return 0
	}
	if s.BreakdownRate > 1 {
		return 1
	}
	return s.BreakdownRate
}

func (s EquipmentStats) RepairMinutes() float64 {
	if s.RepairTime <= 0 {
		return defaultRepairTime
	}
	return s.RepairTime
}

// PurchaseCost returns (cost, true) when the template carries a price.
func (s EquipmentStats) PurchaseCost() (float64, bool) {
	if s.Cost <= 0 {
		return 0, false
	}
	return s.Cost, true
}
