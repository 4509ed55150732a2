package distribute

import (
	"math"
	"math/rand"
	"testing"

	"github.com/olivierh59500/energy-chunks-go/internal/energy"
	"github.com/olivierh59500/energy-chunks-go/internal/geom"
)

func unitSquare() geom.Shape {
	return geom.RectangleShape{Rect: geom.NewRect(0, 0, 1, 1)}
}

// newTestDistributor uses a fixed seed so runs are repeatable
func newTestDistributor() *Distributor {
	return New(rand.New(rand.NewSource(42)))
}

func sliceWithChunks(shape geom.Shape, positions ...geom.Vector2) *energy.Slice {
	s := energy.NewSlice(shape)
	for i, p := range positions {
		s.AddChunk(energy.NewChunk(i, p))
	}
	return s
}

func TestUpdatePositionsNoChunks(t *testing.T) {
	d := newTestDistributor()

	if d.UpdatePositions(nil, 1.0/60) {
		t.Error("expected false for nil slice list")
	}
	if d.UpdatePositions([]*energy.Slice{}, 1.0/60) {
		t.Error("expected false for empty slice list")
	}

	empty := energy.NewSlice(unitSquare())
	if d.UpdatePositions([]*energy.Slice{empty}, 1.0/60) {
		t.Error("expected false for slice with no chunks")
	}
	if empty.Count() != 0 {
		t.Errorf("slice should remain empty, has %d chunks", empty.Count())
	}
}

func TestUpdatePositionsZeroDt(t *testing.T) {
	d := newTestDistributor()
	s := sliceWithChunks(unitSquare(), geom.Vector2{X: 0.3, Y: 0.3}, geom.Vector2{X: 0.3, Y: 0.3})

	if d.UpdatePositions([]*energy.Slice{s}, 0) {
		t.Error("dt=0 should not redistribute")
	}
	for _, c := range s.Chunks {
		if c.Position != (geom.Vector2{X: 0.3, Y: 0.3}) {
			t.Errorf("dt=0 must not move chunks, got %+v", c.Position)
		}
	}
}

func TestChunksSpreadApart(t *testing.T) {
	d := newTestDistributor()
	center := geom.Vector2{X: 0.5, Y: 0.5}
	s := sliceWithChunks(unitSquare(), center, center, center, center, center)
	slices := []*energy.Slice{s}

	for i := 0; i < 200; i++ {
		d.UpdatePositions(slices, 1.0/60)
	}

	// min distance for a unit square is 1/20; chunks must clear at least
	// half of that pairwise.
	threshold := 0.05 * 0.5
	for i, a := range s.Chunks {
		for _, b := range s.Chunks[i+1:] {
			if dist := a.Position.Distance(b.Position); dist < threshold {
				t.Errorf("chunks %d and %d still overlapping: distance %v", a.ID, b.ID, dist)
			}
		}
	}
}

func TestConcreteScenarioTenChunksUnitSquare(t *testing.T) {
	d := newTestDistributor()
	center := geom.Vector2{X: 0.5, Y: 0.5}
	s := energy.NewSlice(unitSquare())
	for i := 0; i < 10; i++ {
		s.AddChunk(energy.NewChunk(i, center))
	}
	slices := []*energy.Slice{s}

	for i := 0; i < 100; i++ {
		d.UpdatePositions(slices, 0.1)
	}

	for i, a := range s.Chunks {
		if a.Position.X < 0 || a.Position.X > 1 || a.Position.Y < 0 || a.Position.Y > 1 {
			t.Errorf("chunk %d escaped the container: %+v", i, a.Position)
		}
		for _, b := range s.Chunks[i+1:] {
			if dist := a.Position.Distance(b.Position); dist < 0.01 {
				t.Errorf("chunks %d and %d within 0.01 m: %v", a.ID, b.ID, dist)
			}
		}
	}
}

func TestOffShapeChunkPulledBack(t *testing.T) {
	d := newTestDistributor()
	s := sliceWithChunks(unitSquare(), geom.Vector2{X: 2, Y: 0.5})
	slices := []*energy.Slice{s}
	c := s.Chunks[0]
	boundsCenter := geom.Vector2{X: 0.5, Y: 0.5}

	lastDistance := c.Position.Distance(boundsCenter)
	recovered := false
	for i := 0; i < 2000; i++ {
		d.UpdatePositions(slices, 1.0/60)
		if s.Shape.Contains(c.Position) {
			recovered = true
			break
		}
		dist := c.Position.Distance(boundsCenter)
		if dist >= lastDistance {
			t.Fatalf("step %d: distance to center did not decrease (%v -> %v)", i, lastDistance, dist)
		}
		lastDistance = dist
	}
	if !recovered {
		t.Fatal("chunk never made it back inside its shape")
	}

	// Once back in, it should stay in.
	for i := 0; i < 500; i++ {
		d.UpdatePositions(slices, 1.0/60)
	}
	if !s.Shape.Contains(c.Position) {
		t.Errorf("chunk left the shape again: %+v", c.Position)
	}
}

func TestSettles(t *testing.T) {
	d := newTestDistributor()
	s := sliceWithChunks(unitSquare(),
		geom.Vector2{X: 0.4, Y: 0.5},
		geom.Vector2{X: 0.6, Y: 0.5})
	slices := []*energy.Slice{s}

	settledAt := -1
	steps := int(10.0 * 60) // ten simulated seconds
	for i := 0; i < steps; i++ {
		if !d.UpdatePositions(slices, 1.0/60) {
			settledAt = i
			break
		}
	}
	if settledAt < 0 {
		t.Fatal("system never settled within 10 simulated seconds")
	}

	// Settled means settled: subsequent calls must keep returning false
	// and must not move anything.
	before := []geom.Vector2{s.Chunks[0].Position, s.Chunks[1].Position}
	for i := 0; i < 120; i++ {
		if d.UpdatePositions(slices, 1.0/60) {
			t.Fatalf("system woke up again on call %d after settling", i)
		}
	}
	if s.Chunks[0].Position != before[0] || s.Chunks[1].Position != before[1] {
		t.Error("settled chunks moved")
	}
}

func TestDeterministicGivenSameSeed(t *testing.T) {
	run := func() []geom.Vector2 {
		d := New(rand.New(rand.NewSource(7)))
		center := geom.Vector2{X: 0.5, Y: 0.5}
		s := sliceWithChunks(unitSquare(), center, center, center, center)
		for i := 0; i < 50; i++ {
			d.UpdatePositions([]*energy.Slice{s}, 1.0/60)
		}
		out := make([]geom.Vector2, len(s.Chunks))
		for i, c := range s.Chunks {
			out[i] = c.Position
		}
		return out
	}

	first := run()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d diverged: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRepulsionConstantScaling(t *testing.T) {
	bounds := geom.NewRect(0, 0, 1, 1)
	mass := 1e-3

	single := repulsionConstant(mass, bounds, 1)
	if got, want := single, mass*0.1; math.Abs(got-want) > 1e-15 {
		t.Errorf("repulsionConstant(1 chunk) = %v, want %v", got, want)
	}

	// Doubling the chunk count halves the constant.
	for _, n := range []int{1, 2, 4, 8, 16} {
		k := repulsionConstant(mass, bounds, n)
		k2 := repulsionConstant(mass, bounds, 2*n)
		if math.Abs(k2-k/2) > 1e-15 {
			t.Errorf("constant for %d chunks = %v, expected half of %v", 2*n, k2, k)
		}
	}
}

func TestCrossSliceRepulsion(t *testing.T) {
	// Two stacked slices, one chunk each, placed so the only force that
	// can separate them horizontally comes from the other slice's chunk.
	lower := sliceWithChunks(
		geom.RectangleShape{Rect: geom.NewRect(0, 0, 1, 0.5)},
		geom.Vector2{X: 0.5, Y: 0.49})
	upper := sliceWithChunks(
		geom.RectangleShape{Rect: geom.NewRect(0, 0.5, 1, 0.5)},
		geom.Vector2{X: 0.5, Y: 0.51})
	slices := []*energy.Slice{lower, upper}

	d := newTestDistributor()
	for i := 0; i < 200; i++ {
		d.UpdatePositions(slices, 1.0/60)
	}

	a, b := lower.Chunks[0].Position, upper.Chunks[0].Position
	if dist := a.Distance(b); dist < 0.05 {
		t.Errorf("chunks in adjacent slices did not repel: distance %v", dist)
	}
}

func TestLargeDtIsStable(t *testing.T) {
	// A whole second in one call gets chopped into 5 ms sub-steps; the
	// result should stay bounded, not fly apart.
	d := newTestDistributor()
	center := geom.Vector2{X: 0.5, Y: 0.5}
	s := sliceWithChunks(unitSquare(), center, center, center)
	d.UpdatePositions([]*energy.Slice{s}, 1.0)

	for _, c := range s.Chunks {
		if c.Position.X < -0.5 || c.Position.X > 1.5 || c.Position.Y < -0.5 || c.Position.Y > 1.5 {
			t.Errorf("chunk %d blew up: %+v", c.ID, c.Position)
		}
	}
}

func TestEllipseContainer(t *testing.T) {
	shape := geom.EllipseShape{Center: geom.Vector2{X: 0, Y: 0}, RX: 0.5, RY: 0.3}
	s := sliceWithChunks(shape,
		geom.Vector2{X: 0, Y: 0},
		geom.Vector2{X: 0, Y: 0},
		geom.Vector2{X: 0, Y: 0})

	d := newTestDistributor()
	for i := 0; i < 300; i++ {
		d.UpdatePositions([]*energy.Slice{s}, 1.0/60)
	}

	// All chunks should end up inside (or within a hair of) the ellipse.
	for _, c := range s.Chunks {
		dx := c.Position.X / 0.55
		dy := c.Position.Y / 0.35
		if dx*dx+dy*dy > 1 {
			t.Errorf("chunk %d well outside the ellipse: %+v", c.ID, c.Position)
		}
	}
}
