// Package research models the tech-tree progression: earned points unlock
// equipment templates and capabilities such as the fleet AI.
package research

import (
	"sort"

	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/catalogs"
)

type Tree struct {
	Points   float64
	Unlocked map[string]bool
}

// New starts a tree with every zero-cost equipment template unlocked.
func New(cats *catalogs.Catalogs) *Tree {
	t := &Tree{Unlocked: map[string]bool{}}
	for id, def := range cats.Equipment.Defs {
		if def.ResearchCost <= 0 {
			t.Unlocked[id] = true
		}
	}
	return t
}

// Restore rebuilds a tree from snapshot data.
func Restore(points float64, unlocked []string) *Tree {
	t := &Tree{Points: points, Unlocked: make(map[string]bool, len(unlocked))}
	for _, id := range unlocked {
		t.Unlocked[id] = true
	}
	return t
}

// FleetAIActive reports whether the breakdown-reducing capability has been
// researched.
func (t *Tree) FleetAIActive() bool { return t.Unlocked["fleet_ai"] }

// UnlockedIDs returns the unlocked node set sorted, for snapshots.
func (t *Tree) UnlockedIDs() []string {
	out := make([]string, 0, len(t.Unlocked))
	for id := range t.Unlocked {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

type node struct {
	id   string
	cost float64
}

// Advance accrues research points with simulated time and greedily spends
// them on the cheapest locked node, cheapest first, ties by ID, so the
// progression is deterministic.
func (t *Tree) Advance(elapsedMinutes, pointsPerHour float64, cats *catalogs.Catalogs) {
	t.Points += pointsPerHour * elapsedMinutes / 60

	for {
		var locked []node
		for id, def := range cats.Equipment.Defs {
			if def.ResearchCost > 0 && !t.Unlocked[id] {
				locked = append(locked, node{id: id, cost: def.ResearchCost})
			}
		}
		for id, def := range cats.Research.ByID {
			if def.Cost > 0 && !t.Unlocked[id] {
				locked = append(locked, node{id: id, cost: def.Cost})
			}
		}
		if len(locked) == 0 {
			return
		}
		sort.Slice(locked, func(i, j int) bool {
			if locked[i].cost != locked[j].cost {
				return locked[i].cost < locked[j].cost
			}
			return locked[i].id < locked[j].id
		})
		if locked[0].cost > t.Points {
			return
		}
		t.Points -= locked[0].cost
		t.Unlocked[locked[0].id] = true
	}
}
