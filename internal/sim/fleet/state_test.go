package fleet

import "testing"

func autoMower(cost float64) EquipmentStats {
	return EquipmentStats{
		Autonomous:      true,
		Cost:            cost,
		Speed:           1.0,
		FuelCapacity:    50,
		FuelConsumption: 2,
		OperatingCost:   5,
	}
}

func TestPurchase_AssignsOrdinalIDs(t *testing.T) {
	st := NewState(0, 0)

	st, cost, ok := st.Purchase("mower_fairway", autoMower(12000))
	if !ok {
		t.Fatalf("first purchase rejected")
	}
	if cost != 12000 {
		t.Fatalf("cost=%v want 12000", cost)
	}
	st, _, ok = st.Purchase("mower_fairway", autoMower(12000))
	if !ok {
		t.Fatalf("second purchase rejected")
	}

	if got := st.Units[0].ID; got != "mower_fairway_1" {
		t.Fatalf("id[0]=%q", got)
	}
	if got := st.Units[1].ID; got != "mower_fairway_2" {
		t.Fatalf("id[1]=%q", got)
	}
	if st.Units[0].Type != Mower {
		t.Fatalf("type=%q want mower", st.Units[0].Type)
	}
}

func TestPurchase_OrdinalSurvivesSell(t *testing.T) {
	st := NewState(0, 0)
	st, _, _ = st.Purchase("sprayer", autoMower(8000))
	st, _, _ = st.Purchase("sprayer", autoMower(8000))
	st, _, ok := st.Sell("sprayer_1")
	if !ok {
		t.Fatalf("sell failed")
	}
	st, _, _ = st.Purchase("sprayer", autoMower(8000))
	if _, dup := st.Unit("sprayer_2"); !dup {
		t.Fatalf("expected sprayer_2 to survive")
	}
	if _, ok := st.Unit("sprayer_3"); !ok {
		t.Fatalf("re-buy should mint sprayer_3, got %+v", st.Units)
	}
}

func TestPurchase_Rejections(t *testing.T) {
	st := NewState(0, 0)

	manual := autoMower(500)
	manual.Autonomous = false
	if _, _, ok := st.Purchase("mower_push", manual); ok {
		t.Fatalf("non-autonomous template must be rejected")
	}

	free := autoMower(0)
	if _, _, ok := st.Purchase("mower_riding", free); ok {
		t.Fatalf("template without a purchase cost must be rejected")
	}

	if _, _, ok := st.Purchase("tractor", autoMower(9000)); ok {
		t.Fatalf("template with underivable type must be rejected")
	}

	if len(st.Units) != 0 {
		t.Fatalf("rejected purchases must not change the fleet")
	}
}

func TestSell_RoundTripAndRefund(t *testing.T) {
	st := NewState(0, 0)
	before := len(st.Units)

	st, _, _ = st.Purchase("bunker_rake", autoMower(6000))
	st2, refund, ok := st.Sell("bunker_rake_1")
	if !ok {
		t.Fatalf("sell failed")
	}
	if refund != 3000 {
		t.Fatalf("refund=%v want 3000", refund)
	}
	if len(st2.Units) != before {
		t.Fatalf("fleet size not restored: %d", len(st2.Units))
	}

	if _, _, ok := st2.Sell("bunker_rake_1"); ok {
		t.Fatalf("selling a missing unit must fail")
	}
}

func TestSnapshotSemantics_SellDoesNotMutateCaller(t *testing.T) {
	st := NewState(0, 0)
	st, _, _ = st.Purchase("spreader", autoMower(4000))
	st, _, _ = st.Purchase("spreader", autoMower(4000))

	prev := st
	next, _, _ := st.Sell("spreader_1")
	if len(prev.Units) != 2 {
		t.Fatalf("caller-held snapshot mutated: %d units", len(prev.Units))
	}
	if len(next.Units) != 1 {
		t.Fatalf("next snapshot wrong size: %d", len(next.Units))
	}
}

func TestQueries_Breakdown(t *testing.T) {
	st := NewState(0, 0)
	st, _, _ = st.Purchase("mower_greens", autoMower(1000))
	st, _, _ = st.Purchase("sprayer", autoMower(1000))
	st, _, _ = st.Purchase("bunker_rake", autoMower(1000))

	st.Units[0].Phase = Moving{TargetX: 5, TargetZ: 5}
	st.Units[1].Phase = Charging{}
	st.Units[2].Phase = Broken{RepairRemaining: 10}

	b := st.Breakdown()
	if b.Total != 3 || b.Working != 1 || b.Charging != 1 || b.Broken != 1 || b.Idle != 0 {
		t.Fatalf("breakdown=%+v", b)
	}
	if st.ActiveCount() != 1 {
		t.Fatalf("active=%d", st.ActiveCount())
	}
	if st.BrokenCount() != 1 {
		t.Fatalf("broken=%d", st.BrokenCount())
	}
	if st.CountByType(Mower) != 1 || st.CountByType(Raker) != 1 {
		t.Fatalf("type counts wrong")
	}
}

func TestPurchaseOptions(t *testing.T) {
	st := NewState(0, 0)
	st, _, _ = st.Purchase("mower_greens", autoMower(1000))

	templates := []TemplateInfo{
		{EquipmentID: "mower_greens", Stats: autoMower(1000)},
		{EquipmentID: "sprayer", Stats: autoMower(5000)},
		{EquipmentID: "mower_push", Stats: EquipmentStats{Cost: 200}}, // not autonomous
	}
	unlocked := map[string]bool{"mower_greens": true}

	opts := st.PurchaseOptions(templates, unlocked, 2000)
	if len(opts) != 2 {
		t.Fatalf("opts=%+v", opts)
	}
	if opts[0].EquipmentID != "mower_greens" || opts[0].Owned != 1 || !opts[0].Unlocked || !opts[0].Affordable {
		t.Fatalf("mower option=%+v", opts[0])
	}
	if opts[1].EquipmentID != "sprayer" || opts[1].Unlocked || opts[1].Affordable {
		t.Fatalf("sprayer option=%+v", opts[1])
	}
}
