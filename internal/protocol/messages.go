package protocol

// HelloMsg opens an observer connection.
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ObserverName    string `json:"observer_name,omitempty"`
}

type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	ObserverID      string         `json:"observer_id"`
	SessionID       string         `json:"session_id"`
	Params          SessionParams  `json:"session_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type SessionParams struct {
	MinutesPerTick float64 `json:"minutes_per_tick"`
	CourseWidth    int     `json:"course_width"`
	CourseHeight   int     `json:"course_height"`
	Seed           int64   `json:"seed"`
	StationX       float64 `json:"station_x"`
	StationZ       float64 `json:"station_z"`
}

type CatalogDigests struct {
	Equipment string `json:"equipment_digest"`
	Research  string `json:"research_digest"`
}

// StateMsg is the per-tick observer frame.
type StateMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Tick            uint64  `json:"tick"`
	Budget          float64 `json:"budget"`
	ResearchPoints  float64 `json:"research_points"`
	FleetAI         bool    `json:"fleet_ai"`
	OperatingCost   float64 `json:"operating_cost"`
	Effects         int     `json:"effects"`

	Fleet FleetView  `json:"fleet"`
	Units []UnitView `json:"units"`

	Digest string `json:"digest"`
}

type FleetView struct {
	Total    int `json:"total"`
	Working  int `json:"working"`
	Idle     int `json:"idle"`
	Charging int `json:"charging"`
	Broken   int `json:"broken"`
}

type UnitView struct {
	ID          string  `json:"id"`
	EquipmentID string  `json:"equipment_id"`
	Kind        string  `json:"kind"`
	Status      string  `json:"status"`
	X           float64 `json:"x"`
	Z           float64 `json:"z"`
	Resource    float64 `json:"resource"`
	ResourceMax float64 `json:"resource_max"`

	TargetX         *float64 `json:"target_x,omitempty"`
	TargetZ         *float64 `json:"target_z,omitempty"`
	RepairRemaining float64  `json:"repair_remaining,omitempty"`
}

const (
	OpBuy  = "BUY"
	OpSell = "SELL"
)

// ActMsg carries an observer-issued fleet command.
type ActMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Ref             string `json:"ref"`
	Op              string `json:"op"`
	EquipmentID     string `json:"equipment_id,omitempty"`
	UnitID          string `json:"unit_id,omitempty"`
}

type ResultMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Ref             string  `json:"ref"`
	OK              bool    `json:"ok"`
	UnitID          string  `json:"unit_id,omitempty"`
	Code            string  `json:"code,omitempty"`
	Message         string  `json:"message,omitempty"`
	Amount          float64 `json:"amount,omitempty"`
}
