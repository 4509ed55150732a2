// Package distribute implements the energy chunk redistribution solver: an
// iterative force-based relaxation that spreads chunks out inside their
// container slices until they settle into a stable, non-overlapping layout.
package distribute

import (
	"fmt"
	"math"

	"github.com/olivierh59500/energy-chunks-go/internal/energy"
	"github.com/olivierh59500/energy-chunks-go/internal/geom"
)

// Algorithm constants
const (
	// Directions sampled when probing the distance to the slice boundary.
	edgeRayCount = 4
	// Binary search iterations per boundary probe.
	edgeSearchIterations = 8
)

// Rand supplies the random numbers used to break ties when two chunks sit
// at the exact same point. *rand.Rand satisfies it; tests can pin a seed.
type Rand interface {
	Float64() float64
}

// Params are the tuning constants of the solver. The defaults reproduce
// the reference visual behavior at beaker scale (containers around 0.1 m);
// they are plain numbers so they can round-trip through a JSON config.
type Params struct {
	// OutsideForce is the constant pull (newtons) applied to a chunk that
	// has drifted outside its slice, directed at the bounds center.
	OutsideForce float64 `json:"outsideForce"`
	// MaxTimeStep caps each integration sub-step (seconds).
	MaxTimeStep float64 `json:"maxTimeStep"`
	// ChunkMass in kg.
	ChunkMass float64 `json:"chunkMass"`
	// ChunkDiameter in meters, used for the drag cross section.
	ChunkDiameter float64 `json:"chunkDiameter"`
	// FluidDensity in kg/m³ for the quadratic drag term.
	FluidDensity float64 `json:"fluidDensity"`
	// DragCoefficient is dimensionless and deliberately huge: chunks
	// should coast to a stop within a second or so of sim time.
	DragCoefficient float64 `json:"dragCoefficient"`
	// EnergyThreshold is the max per-chunk "total energy" below which the
	// system counts as settled and position updates stop.
	EnergyThreshold float64 `json:"energyThreshold"`
}

// DefaultParams returns the reference tuning
func DefaultParams() Params {
	return Params{
		OutsideForce:    0.01,
		MaxTimeStep:     5e-3,
		ChunkMass:       1e-3,
		ChunkDiameter:   1e-3,
		FluidDensity:    1000,
		DragCoefficient: 500,
		EnergyThreshold: 1e-4,
	}
}

// Distributor relaxes chunk positions within their slices. It keeps no
// state between calls: each UpdatePositions works purely from the chunk
// positions and velocities the caller hands it.
type Distributor struct {
	params Params
	rng    Rand
}

// New creates a distributor with the reference tuning
func New(rng Rand) *Distributor {
	return NewWithParams(rng, DefaultParams())
}

// NewWithParams creates a distributor with explicit tuning
func NewWithParams(rng Rand, p Params) *Distributor {
	return &Distributor{params: p, rng: rng}
}

// Params returns the current tuning
func (d *Distributor) Params() Params {
	return d.params
}

// SetParams replaces the tuning, taking effect on the next call
func (d *Distributor) SetParams(p Params) {
	d.params = p
}

// workEntry pairs a chunk with the shape of the slice that owns it for the
// duration of one UpdatePositions call.
type workEntry struct {
	chunk *energy.Chunk
	shape geom.Shape
}

// UpdatePositions nudges every chunk in the given slices toward a spread
// out, in-bounds layout, mutating chunk positions and velocities in place.
// dt is the elapsed time in seconds and is split into sub-steps of at most
// MaxTimeStep for stability. The return value reports whether the chunks
// were still moving during the last sub-step; callers typically keep
// calling every frame until it goes false, then throttle.
func (d *Distributor) UpdatePositions(slices []*energy.Slice, dt float64) bool {
	// Flatten the working set. Chunk membership is never changed here,
	// only positions.
	var entries []workEntry
	for _, s := range slices {
		for _, c := range s.Chunks {
			entries = append(entries, workEntry{chunk: c, shape: s.Shape})
		}
	}
	if len(entries) == 0 {
		return false
	}

	// Bounding rect of the union of all slice shapes.
	bounds := slices[0].Shape.Bounds()
	for _, s := range slices[1:] {
		bounds = bounds.Union(s.Shape.Bounds())
	}

	// Minimum distance used in force calculations, to avoid singularities
	// when chunks sit on top of each other or on an edge. Floored so a
	// degenerate zero-area bounds still can't divide by zero.
	minDistance := math.Max(math.Min(bounds.Width, bounds.Height)/20, 1e-6)

	forceConstant := repulsionConstant(d.params.ChunkMass, bounds, len(entries))

	forces := make([]geom.Vector2, len(entries))

	redistributed := false
	remaining := dt
	for remaining > 0 {
		step := math.Min(remaining, d.params.MaxTimeStep)
		remaining -= step
		redistributed = d.substep(entries, forces, bounds, minDistance, forceConstant, step)
	}
	return redistributed
}

// repulsionConstant scales the inverse-square force with the container
// area and inversely with the chunk count, so crowded containers weaken
// their repulsion instead of exploding.
func repulsionConstant(mass float64, bounds geom.Rect, count int) float64 {
	return mass * bounds.Width * bounds.Height * 0.1 / float64(count)
}

// substep runs one fixed-size integration step: all forces are computed
// from a frozen snapshot of positions, then velocities and positions are
// updated. Returns whether the chunks were still being repositioned.
func (d *Distributor) substep(entries []workEntry, forces []geom.Vector2, bounds geom.Rect, minDistance, forceConstant, dt float64) bool {
	for i, e := range entries {
		if e.shape.Contains(e.chunk.Position) {
			f := d.edgeForce(e.chunk.Position, e.shape, minDistance, forceConstant)
			f = f.Add(d.pairwiseForce(i, entries, minDistance, forceConstant))
			forces[i] = f
		} else {
			// Off-shape chunks get a single gentle pull back toward the
			// middle of the combined bounds and nothing else.
			toCenter := bounds.Center().Sub(e.chunk.Position).Normalize()
			forces[i] = toCenter.Scale(d.params.OutsideForce)
		}
		assertFinite(forces[i], "force")
	}

	// Velocity update plus drag, tracking the most energetic chunk as the
	// convergence signal.
	maxEnergy := 0.0
	for i, e := range entries {
		c := e.chunk
		c.Velocity = c.Velocity.Add(forces[i].Scale(dt / d.params.ChunkMass))

		speed := c.Velocity.Length()
		if speed > 0 {
			radius := d.params.ChunkDiameter / 2
			area := math.Pi * radius * radius
			dragMagnitude := 0.5 * d.params.FluidDensity * d.params.DragCoefficient * area * speed * speed
			drag := c.Velocity.Normalize().Scale(-dragMagnitude)
			c.Velocity = c.Velocity.Add(drag.Scale(dt / d.params.ChunkMass))
		}
		assertFinite(c.Velocity, "velocity")

		energyTotal := 0.5*d.params.ChunkMass*c.Velocity.LengthSquared() + forces[i].Length()*math.Pi/2
		if energyTotal > maxEnergy {
			maxEnergy = energyTotal
		}
	}

	if maxEnergy <= d.params.EnergyThreshold {
		// Settled. Leave positions alone so the layout stays put.
		return false
	}
	for _, e := range entries {
		e.chunk.Position = e.chunk.Position.Add(e.chunk.Velocity.Scale(dt))
		assertFinite(e.chunk.Position, "position")
	}
	return true
}

// edgeForce probes the distance to the slice boundary along four cardinal
// rays and accumulates an inverse-square push away from each edge. The
// boundary distance is found by binary search on the containment test, so
// any Shape works without exposing its outline.
func (d *Distributor) edgeForce(pos geom.Vector2, shape geom.Shape, minDistance, forceConstant float64) geom.Vector2 {
	maxLength := shape.Bounds().Diagonal()
	var total geom.Vector2
	for ray := 0; ray < edgeRayCount; ray++ {
		angle := float64(ray) * 2 * math.Pi / edgeRayCount
		dir := geom.FromAngle(angle, 1)

		lo, hi := 0.0, maxLength
		for iter := 0; iter < edgeSearchIterations; iter++ {
			mid := (lo + hi) / 2
			if shape.Contains(pos.Add(dir.Scale(mid))) {
				lo = mid
			} else {
				hi = mid
			}
		}
		edgeDistance := math.Max((lo+hi)/2, minDistance)

		// Push back toward the interior, away from this edge.
		total = total.Add(dir.Scale(-forceConstant / (edgeDistance * edgeDistance)))
	}
	return total
}

// pairwiseForce accumulates the inverse-square repulsion on entry i from
// every other chunk in the working set. This deliberately spans all
// slices, not just chunk i's own, so chunks in adjacent layers of the same
// container keep each other spaced too.
func (d *Distributor) pairwiseForce(i int, entries []workEntry, minDistance, forceConstant float64) geom.Vector2 {
	pos := entries[i].chunk.Position
	var total geom.Vector2
	for j, other := range entries {
		if j == i {
			continue
		}
		fromOther := pos.Sub(other.chunk.Position)
		if fromOther.Length() < minDistance {
			// Coincident or nearly so; push in a random direction at the
			// minimum distance rather than dividing by zero.
			fromOther = geom.FromAngle(d.rng.Float64()*2*math.Pi, minDistance)
		}
		distance := fromOther.Length()
		total = total.Add(fromOther.Normalize().Scale(forceConstant / (distance * distance)))
	}
	return total
}

// assertFinite panics when a NaN or Inf shows up in the solver state.
// Non-finite values only arise from broken geometry inputs; fail fast.
func assertFinite(v geom.Vector2, what string) {
	if !v.IsFinite() {
		panic(fmt.Sprintf("distribute: non-finite %s: (%v, %v)", what, v.X, v.Y))
	}
}
