package session

import (
	"fmt"
	"math/rand"

	"github.com/brentyates/greenkeeper-simulator-sub005/internal/persistence/snapshot"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/catalogs"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/course"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/fleet"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/research"
)

// ExportSnapshot captures the full session state for durable storage.
func (s *Session) ExportSnapshot() snapshot.SnapshotV1 {
	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version:   1,
			SessionID: s.cfg.ID,
			Tick:      s.tick,
		},
		Seed:                  s.cfg.Seed,
		MinutesPerTick:        s.cfg.MinutesPerTick,
		SnapshotEveryTicks:    s.cfg.SnapshotEveryTicks,
		ResearchPointsPerHour: s.cfg.ResearchPointsPerHour,
		Budget:                s.budget,
		ResearchPoints:        s.tree.Points,
		ResearchUnlocked:      s.tree.UnlockedIDs(),
		CourseWidth:           s.cfg.CourseWidth,
		CourseHeight:          s.cfg.CourseHeight,
		BucketSize:            s.cfg.BucketSize,
		StationX:              s.fleetState.StationX,
		StationZ:              s.fleetState.StationZ,
		Ordinals:              map[string]int{},
	}
	for id, n := range s.fleetState.Ordinals {
		snap.Ordinals[id] = n
	}
	for _, c := range s.course.ExportCells() {
		snap.Cells = append(snap.Cells, snapshot.CellV1{
			Terrain:     string(c.Terrain),
			Moisture:    c.Moisture,
			Nutrients:   c.Nutrients,
			GrassHeight: c.GrassHeight,
			Health:      c.Health,
		})
	}
	for i := range s.fleetState.Units {
		u := &s.fleetState.Units[i]
		uv := snapshot.UnitV1{
			ID:          u.ID,
			EquipmentID: u.EquipmentID,
			X:           u.WorldX,
			Z:           u.WorldZ,
			Resource:    u.ResourceCurrent,
			Status:      string(u.Status()),
		}
		switch p := u.Phase.(type) {
		case fleet.Moving:
			uv.TargetX, uv.TargetZ = p.TargetX, p.TargetZ
			uv.ToStation = p.ToStation
		case fleet.Broken:
			uv.RepairRemaining = p.RepairRemaining
		}
		snap.Units = append(snap.Units, uv)
	}
	return snap
}

// FromSnapshot rebuilds a session from a snapshot. Equipment stats come
// from the live catalog, so a unit whose equipment no longer exists fails
// the restore rather than running with zeroed stats.
func FromSnapshot(snap snapshot.SnapshotV1, cfg Config, cats *catalogs.Catalogs) (*Session, error) {
	cfg.ID = snap.Header.SessionID
	cfg.Seed = snap.Seed
	cfg.MinutesPerTick = snap.MinutesPerTick
	if snap.SnapshotEveryTicks > 0 {
		cfg.SnapshotEveryTicks = snap.SnapshotEveryTicks
	}
	if snap.ResearchPointsPerHour > 0 {
		cfg.ResearchPointsPerHour = snap.ResearchPointsPerHour
	}
	cfg.CourseWidth = snap.CourseWidth
	cfg.CourseHeight = snap.CourseHeight
	cfg.BucketSize = snap.BucketSize
	cfg.StationX = snap.StationX
	cfg.StationZ = snap.StationZ

	cells := make([]course.Cell, 0, len(snap.Cells))
	for _, c := range snap.Cells {
		cells = append(cells, course.Cell{
			Terrain:     fleet.Terrain(c.Terrain),
			Moisture:    c.Moisture,
			Nutrients:   c.Nutrients,
			GrassHeight: c.GrassHeight,
			Health:      c.Health,
		})
	}
	crs, err := course.Restore(course.Config{
		Width:      cfg.CourseWidth,
		Height:     cfg.CourseHeight,
		Seed:       cfg.Seed,
		BucketSize: cfg.BucketSize,
		StationX:   cfg.StationX,
		StationZ:   cfg.StationZ,
	}, cells)
	if err != nil {
		return nil, err
	}

	st := fleet.NewState(snap.StationX, snap.StationZ)
	for id, n := range snap.Ordinals {
		st.Ordinals[id] = n
	}
	for _, uv := range snap.Units {
		def, ok := cats.Equipment.Defs[uv.EquipmentID]
		if !ok {
			return nil, fmt.Errorf("restore unit %s: unknown equipment %s", uv.ID, uv.EquipmentID)
		}
		kind, ok := fleet.TypeForEquipment(uv.EquipmentID)
		if !ok {
			return nil, fmt.Errorf("restore unit %s: cannot derive kind from %s", uv.ID, uv.EquipmentID)
		}
		u := fleet.RobotUnit{
			ID:              uv.ID,
			EquipmentID:     uv.EquipmentID,
			Type:            kind,
			Stats:           def.Stats,
			WorldX:          uv.X,
			WorldZ:          uv.Z,
			ResourceCurrent: uv.Resource,
			ResourceMax:     def.Stats.Capacity(),
			Phase:           phaseFromV1(uv),
		}
		st.Units = append(st.Units, u)
	}

	sess := &Session{
		cfg:        cfg,
		cats:       cats,
		course:     crs,
		fleetState: st,
		tree:       research.Restore(snap.ResearchPoints, snap.ResearchUnlocked),
		budget:     snap.Budget,
		tick:       snap.Header.Tick,
		rng:        rand.New(rand.NewSource(cfg.Seed ^ int64(snap.Header.Tick))),
		inbox:      make(chan Command, 64),
		join:       make(chan JoinRequest, 8),
		leave:      make(chan string, 8),
		stop:       make(chan struct{}),
		observers:  map[string]chan []byte{},
	}
	return sess, nil
}

func phaseFromV1(uv snapshot.UnitV1) fleet.Phase {
	switch fleet.Status(uv.Status) {
	case fleet.StatusMoving:
		return fleet.Moving{TargetX: uv.TargetX, TargetZ: uv.TargetZ, ToStation: uv.ToStation}
	case fleet.StatusWorking:
		return fleet.Working{}
	case fleet.StatusCharging:
		return fleet.Charging{}
	case fleet.StatusBroken:
		return fleet.Broken{RepairRemaining: uv.RepairRemaining}
	default:
		return fleet.Idle{}
	}
}
