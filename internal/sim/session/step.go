package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/brentyates/greenkeeper-simulator-sub005/internal/protocol"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/fleet"
)

type StepReport struct {
	Tick          uint64
	OperatingCost float64
	Effects       int
	Digest        string
}

// StepOnce applies the queued commands, advances the simulation by a single
// tick and broadcasts the resulting state frame.
func (s *Session) StepOnce(cmds []Command) StepReport {
	var applied []string
	for _, cmd := range cmds {
		res := s.applyCommand(cmd)
		if cmd.Resp != nil {
			cmd.Resp <- res
		}
		applied = append(applied, fmt.Sprintf("%s:%s", cmd.Op, res.Code))
	}

	candidates := s.course.Candidates()
	out := fleet.Tick(s.fleetState, fleet.TickInput{
		Candidates:     candidates,
		ElapsedMinutes: s.cfg.MinutesPerTick,
		FleetAIActive:  s.tree.FleetAIActive(),
		CanTraverse:    s.course.CanTraverse,
		Rand:           s.rng,
	})
	s.fleetState = out.State
	s.course.Apply(out.Effects)
	s.course.Advance(s.cfg.MinutesPerTick)
	s.tree.Advance(s.cfg.MinutesPerTick, s.cfg.ResearchPointsPerHour, s.cats)
	s.budget -= out.OperatingCost

	digest := s.stateDigest()
	report := StepReport{
		Tick:          s.tick,
		OperatingCost: out.OperatingCost,
		Effects:       len(out.Effects),
		Digest:        digest,
	}
	s.lastCost = out.OperatingCost

	s.lastEffects = len(out.Effects)
	if s.tickLogger != nil {
		_ = s.tickLogger.WriteTick(TickLogEntry{
			Tick:          s.tick,
			OperatingCost: out.OperatingCost,
			Effects:       len(out.Effects),
			Commands:      applied,
			Digest:        digest,
		})
	}
	s.broadcastState(digest)
	s.publishMetrics(out.OperatingCost, len(out.Effects))
	if s.snapshotSink != nil && s.cfg.SnapshotEveryTicks > 0 && s.tick > 0 && s.tick%uint64(s.cfg.SnapshotEveryTicks) == 0 {
		select {
		case s.snapshotSink <- s.ExportSnapshot():
		default:
		}
	}

	s.tick++
	return report
}

func (s *Session) applyCommand(cmd Command) protocol.ResultMsg {
	res := protocol.ResultMsg{Type: protocol.TypeResult, Ref: cmd.Ref}
	switch cmd.Op {
	case protocol.OpBuy:
		def, ok := s.cats.Equipment.Defs[cmd.EquipmentID]
		if !ok {
			return fail(res, protocol.ErrInvalidTemplate, "unknown equipment "+cmd.EquipmentID)
		}
		if !s.tree.Unlocked[def.ID] {
			return fail(res, protocol.ErrLocked, "equipment not yet researched")
		}
		price, priced := def.Stats.PurchaseCost()
		if !priced || !def.Stats.Autonomous {
			return fail(res, protocol.ErrInvalidTemplate, "equipment cannot join the fleet")
		}
		if s.budget < price {
			return fail(res, protocol.ErrNoFunds, fmt.Sprintf("need %.0f, have %.0f", price, s.budget))
		}
		next, cost, ok := s.fleetState.Purchase(def.ID, def.Stats)
		if !ok {
			return fail(res, protocol.ErrInvalidTemplate, "equipment cannot join the fleet")
		}
		s.fleetState = next
		s.budget -= cost
		res.OK = true
		res.UnitID = next.Units[len(next.Units)-1].ID
		res.Amount = cost
		return res
	case protocol.OpSell:
		next, refund, ok := s.fleetState.Sell(cmd.UnitID)
		if !ok {
			return fail(res, protocol.ErrUnknownUnit, "no unit "+cmd.UnitID)
		}
		s.fleetState = next
		s.budget += refund
		res.OK = true
		res.UnitID = cmd.UnitID
		res.Amount = refund
		return res
	default:
		return fail(res, protocol.ErrBadRequest, "unsupported op "+cmd.Op)
	}
}

func fail(res protocol.ResultMsg, code, msg string) protocol.ResultMsg {
	res.OK = false
	res.Code = code
	res.Message = msg
	return res
}

func (s *Session) unitViews() []protocol.UnitView {
	views := make([]protocol.UnitView, 0, len(s.fleetState.Units))
	for i := range s.fleetState.Units {
		u := &s.fleetState.Units[i]
		v := protocol.UnitView{
			ID:          u.ID,
			EquipmentID: u.EquipmentID,
			Kind:        string(u.Type),
			Status:      string(u.Status()),
			X:           u.WorldX,
			Z:           u.WorldZ,
			Resource:    u.ResourceCurrent,
			ResourceMax: u.ResourceMax,
		}
		if tx, tz, ok := u.Target(); ok {
			v.TargetX, v.TargetZ = &tx, &tz
		}
		if b, ok := u.Phase.(fleet.Broken); ok {
			v.RepairRemaining = b.RepairRemaining
		}
		views = append(views, v)
	}
	return views
}

func (s *Session) stateDigest() string {
	payload := struct {
		Tick     uint64              `json:"tick"`
		Budget   float64             `json:"budget"`
		Points   float64             `json:"points"`
		Unlocked []string            `json:"unlocked"`
		Units    []protocol.UnitView `json:"units"`
	}{s.tick, s.budget, s.tree.Points, s.tree.UnlockedIDs(), s.unitViews()}
	b, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func (s *Session) broadcastState(digest string) {
	if len(s.observers) == 0 {
		return
	}
	b, err := json.Marshal(s.StateFrame(digest))
	if err != nil {
		return
	}
	for _, ch := range s.observers {
		sendLatest(ch, b)
	}
}

// StateFrame builds the observer frame for the current tick.
func (s *Session) StateFrame(digest string) protocol.StateMsg {
	bd := s.fleetState.Breakdown()
	return protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Tick:            s.tick,
		Budget:          s.budget,
		ResearchPoints:  s.tree.Points,
		FleetAI:         s.tree.FleetAIActive(),
		OperatingCost:   s.lastCost,
		Effects:         s.lastEffects,
		Fleet: protocol.FleetView{
			Total:    len(s.fleetState.Units),
			Idle:     bd.Idle,
			Working:  bd.Working,
			Charging: bd.Charging,
			Broken:   bd.Broken,
		},
		Units:  s.unitViews(),
		Digest: digest,
	}
}
