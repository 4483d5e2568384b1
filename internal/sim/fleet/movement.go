package fleet

import "math"

const (
	// arriveEps is the arrival threshold in world units.
	arriveEps = 0.5
	// detourRadius bounds the outward search for a traversable point when
	// a unit is pocketed.
	detourRadius = 12
	// stationParkRadius bounds the parking search when the destination
	// tile itself is blocked.
	stationParkRadius = 6
)

// stepMoving advances a moving unit for one tick and reports arrival.
// The unit's position is only ever committed to traversable points.
func stepMoving(u *RobotUnit, mv Moving, elapsedMinutes float64, canTraverse TraverseFunc) (arrived bool) {
	step := u.Stats.MoveSpeed() * elapsedMinutes * 60

	tx, tz := mv.TargetX, mv.TargetZ
	if canTraverse != nil && !canTraverse(u, tx, tz) {
		// Destination tile occupied (typically a built-over station).
		// Park at the nearest traversable point instead of circling.
		px, pz, ok := nearestTraversable(u, tx, tz, stationParkRadius, canTraverse)
		if !ok {
			return false
		}
		tx, tz = px, pz
	}

	dx, dz := tx-u.WorldX, tz-u.WorldZ
	dist := math.Hypot(dx, dz)
	if dist <= arriveEps {
		u.WorldX, u.WorldZ = tx, tz
		return true
	}
	if step <= 0 {
		return false
	}
	if step >= dist && pathClear(u, u.WorldX, u.WorldZ, tx, tz, canTraverse) {
		u.WorldX, u.WorldZ = tx, tz
		return true
	}
	if step > dist {
		step = dist
	}

	// Steps are committed only when the whole segment is clear, not just
	// the endpoint, so a long step cannot hop a thin blocked band.
	ux, uz := dx/dist, dz/dist
	nx, nz := u.WorldX+ux*step, u.WorldZ+uz*step
	if pathClear(u, u.WorldX, u.WorldZ, nx, nz, canTraverse) {
		u.WorldX, u.WorldZ = nx, nz
		return false
	}

	// Forward blocked: slide perpendicular to the travel direction, both
	// sides in fixed order, so a one-cell obstruction does not freeze the
	// unit against the wall.
	for _, sgn := range []float64{1, -1} {
		lx, lz := u.WorldX-uz*sgn*step, u.WorldZ+ux*sgn*step
		if pathClear(u, u.WorldX, u.WorldZ, lx, lz, canTraverse) {
			u.WorldX, u.WorldZ = lx, lz
			return false
		}
	}

	// Fully pocketed: head for the nearest traversable point so the unit
	// keeps making progress instead of deadlocking.
	sx, sz, ok := nearestTraversable(u, u.WorldX, u.WorldZ, detourRadius, canTraverse)
	if !ok {
		return false
	}
	moveTowardClear(u, sx, sz, step, canTraverse)
	return false
}

func moveTowardClear(u *RobotUnit, tx, tz, step float64, canTraverse TraverseFunc) {
	dx, dz := tx-u.WorldX, tz-u.WorldZ
	dist := math.Hypot(dx, dz)
	if dist == 0 {
		return
	}
	if step > dist {
		step = dist
	}
	for _, f := range []float64{1, 0.5, 0.25} {
		nx, nz := u.WorldX+dx/dist*step*f, u.WorldZ+dz/dist*step*f
		if pathClear(u, u.WorldX, u.WorldZ, nx, nz, canTraverse) {
			u.WorldX, u.WorldZ = nx, nz
			return
		}
	}
}

// nearestTraversable scans outward in unit rings around (cx, cz) and
// returns the closest traversable point found, in a fixed deterministic
// order. ok=false when nothing within radius is traversable.
func nearestTraversable(u *RobotUnit, cx, cz float64, radius int, canTraverse TraverseFunc) (x, z float64, ok bool) {
	if canTraverse == nil {
		return cx, cz, true
	}
	for r := 1; r <= radius; r++ {
		bestD := math.Inf(1)
		var bx, bz float64
		found := false
		ringPoints(r, func(dx, dz int) {
			px, pz := cx+float64(dx), cz+float64(dz)
			if !canTraverse(u, px, pz) {
				return
			}
			d := float64(dx*dx + dz*dz)
			if d < bestD {
				bestD = d
				bx, bz = px, pz
				found = true
			}
		})
		if found {
			return bx, bz, true
		}
	}
	return 0, 0, false
}

// ringPoints visits the integer offsets with Chebyshev distance exactly r,
// row by row, so the search order is deterministic.
func ringPoints(r int, visit func(dx, dz int)) {
	for dx := -r; dx <= r; dx++ {
		visit(dx, -r)
		visit(dx, r)
	}
	for dz := -r + 1; dz <= r-1; dz++ {
		visit(-r, dz)
		visit(r, dz)
	}
}
