package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/fleet"
)

type Catalogs struct {
	Equipment EquipmentCatalog
	Research  ResearchCatalog
}

// EquipmentCatalog is the purchasable template registry. Order preserves
// the file order for stable display; Digest pins the catalog version for
// snapshots and observer handshakes.
type EquipmentCatalog struct {
	Order  []string
	Defs   map[string]EquipmentDef
	Digest string
}

type EquipmentDef struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Tier         int                  `json:"tier"`
	ResearchCost float64              `json:"research_cost,omitempty"`
	Stats        fleet.EquipmentStats `json:"stats"`
}

// ResearchCatalog lists non-equipment tech nodes, currently the fleet-AI
// capability that scales breakdown probability.
type ResearchCatalog struct {
	ByID   map[string]ResearchDef
	Digest string
}

type ResearchDef struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Cost  float64 `json:"cost"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadEquipment(filepath.Join(configDir, "equipment.json"), &c.Equipment); err != nil {
		return nil, err
	}
	if err := loadResearch(filepath.Join(configDir, "research.json"), &c.Research); err != nil {
		return nil, err
	}
	return &c, nil
}

func loadEquipment(path string, out *EquipmentCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var defs []EquipmentDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("equipment.json: %w", err)
	}
	out.Defs = make(map[string]EquipmentDef, len(defs))
	out.Order = make([]string, 0, len(defs))
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("equipment.json: def without id")
		}
		if _, dup := out.Defs[d.ID]; dup {
			return fmt.Errorf("equipment.json: duplicate id %q", d.ID)
		}
		out.Defs[d.ID] = d
		out.Order = append(out.Order, d.ID)
	}
	out.Digest = digestOf(defs)
	return nil
}

func loadResearch(path string, out *ResearchCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var defs []ResearchDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("research.json: %w", err)
	}
	out.ByID = make(map[string]ResearchDef, len(defs))
	for _, d := range defs {
		out.ByID[d.ID] = d
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	out.Digest = digestOf(defs)
	return nil
}

// Templates adapts the catalog to the fleet's purchase-option query.
func (c *Catalogs) Templates() []fleet.TemplateInfo {
	out := make([]fleet.TemplateInfo, 0, len(c.Equipment.Order))
	for _, id := range c.Equipment.Order {
		d := c.Equipment.Defs[id]
		out = append(out, fleet.TemplateInfo{EquipmentID: d.ID, Stats: d.Stats})
	}
	return out
}

func digestOf(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
