package session

// SessionMetrics is a read-model copy published once per tick. Handlers on
// other goroutines read it through Metrics without touching live state.
type SessionMetrics struct {
	Tick           uint64  `json:"tick"`
	Budget         float64 `json:"budget"`
	ResearchPoints float64 `json:"research_points"`
	FleetAI        bool    `json:"fleet_ai"`
	OperatingCost  float64 `json:"operating_cost"`
	Effects        int     `json:"effects"`

	UnitsTotal    int `json:"units_total"`
	UnitsWorking  int `json:"units_working"`
	UnitsIdle     int `json:"units_idle"`
	UnitsCharging int `json:"units_charging"`
	UnitsBroken   int `json:"units_broken"`

	QueueDepths QueueDepths `json:"queue_depths"`
}

type QueueDepths struct {
	Inbox int `json:"inbox"`
	Join  int `json:"join"`
	Leave int `json:"leave"`
}

func (s *Session) Metrics() SessionMetrics {
	if s == nil {
		return SessionMetrics{}
	}
	v := s.metrics.Load()
	if v == nil {
		return SessionMetrics{}
	}
	m, ok := v.(SessionMetrics)
	if !ok {
		return SessionMetrics{}
	}
	return m
}

func (s *Session) publishMetrics(operatingCost float64, effects int) {
	bd := s.fleetState.Breakdown()
	s.metrics.Store(SessionMetrics{
		Tick:           s.tick,
		Budget:         s.budget,
		ResearchPoints: s.tree.Points,
		FleetAI:        s.tree.FleetAIActive(),
		OperatingCost:  operatingCost,
		Effects:        effects,
		UnitsTotal:     len(s.fleetState.Units),
		UnitsWorking:   bd.Working,
		UnitsIdle:      bd.Idle,
		UnitsCharging:  bd.Charging,
		UnitsBroken:    bd.Broken,
		QueueDepths: QueueDepths{
			Inbox: len(s.inbox),
			Join:  len(s.join),
			Leave: len(s.leave),
		},
	})
}
