package course

import "fmt"

// ExportCells copies the grid for snapshotting.
func (c *Course) ExportCells() []Cell {
	out := make([]Cell, len(c.cells))
	copy(out, c.cells)
	return out
}

// Restore rebuilds a course from snapshotted cells.
func Restore(cfg Config, cells []Cell) (*Course, error) {
	if cfg.BucketSize <= 0 {
		cfg.BucketSize = 8
	}
	if len(cells) != cfg.Width*cfg.Height {
		return nil, fmt.Errorf("course restore: %d cells for %dx%d grid", len(cells), cfg.Width, cfg.Height)
	}
	c := &Course{cfg: cfg, cells: make([]Cell, len(cells))}
	copy(c.cells, cells)
	return c, nil
}
