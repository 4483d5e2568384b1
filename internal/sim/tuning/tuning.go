package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	TickIntervalMs int     `yaml:"tick_interval_ms"`
	MinutesPerTick float64 `yaml:"minutes_per_tick"`

	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`

	StartingBudget float64 `yaml:"starting_budget"`

	ResearchPointsPerHour float64 `yaml:"research_points_per_hour"`

	Course Course `yaml:"course"`
}

type Course struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	BucketSize int     `yaml:"bucket_size"`
	StationX   float64 `yaml:"station_x"`
	StationZ   float64 `yaml:"station_z"`
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func Defaults() Tuning {
	return Tuning{
		TickIntervalMs:        200,
		MinutesPerTick:        1,
		SnapshotEveryTicks:    3000,
		StartingBudget:        50000,
		ResearchPointsPerHour: 10,
		Course: Course{
			Width:      96,
			Height:     96,
			BucketSize: 8,
			StationX:   48,
			StationZ:   48,
		},
	}
}
