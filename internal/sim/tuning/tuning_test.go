package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := `
tick_interval_ms: 50
minutes_per_tick: 2
course:
  width: 48
  height: 64
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	tn, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if tn.TickIntervalMs != 50 || tn.MinutesPerTick != 2 {
		t.Fatalf("overrides not applied: %+v", tn)
	}
	if tn.Course.Width != 48 || tn.Course.Height != 64 {
		t.Fatalf("course overrides not applied: %+v", tn.Course)
	}
	// Untouched keys keep their defaults.
	if tn.StartingBudget != 50000 {
		t.Fatalf("starting budget = %v", tn.StartingBudget)
	}
	if tn.SnapshotEveryTicks != 3000 {
		t.Fatalf("snapshot interval = %v", tn.SnapshotEveryTicks)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	tn, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if tn.Course.Width != 96 {
		t.Fatalf("defaults not returned alongside error: %+v", tn)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("course: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestLoad_ShippedConfig(t *testing.T) {
	tn, err := Load(filepath.Join("..", "..", "..", "configs", "tuning.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if tn.MinutesPerTick <= 0 || tn.Course.Width <= 0 || tn.Course.Height <= 0 {
		t.Fatalf("shipped tuning invalid: %+v", tn)
	}
}
