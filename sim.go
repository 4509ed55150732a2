package main

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"time"

	"github.com/aquilax/go-perlin"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/olivierh59500/energy-chunks-go/internal/distribute"
	"github.com/olivierh59500/energy-chunks-go/internal/energy"
	"github.com/olivierh59500/energy-chunks-go/internal/geom"
)

// Scene constants. The model works in meters; WorldScale maps to pixels.
const (
	WindowWidth  = 800
	WindowHeight = 600
	WorldScale   = 2500.0 // px per meter
	DT           = 1.0 / 60

	ChunkRadiusPx = 6.0

	// Beaker geometry (meters)
	BeakerX      = 0.11
	BeakerY      = 0.10
	BeakerWidth  = 0.10
	BeakerHeight = 0.12
	SliceCount   = 3

	// Air region above the beaker
	AirCenterX = 0.16
	AirCenterY = 0.05
	AirRX      = 0.13
	AirRY      = 0.04

	// Perlin convection wobble applied to air chunks
	WobbleSpeed     = 0.004 // m/s of velocity nudge per frame
	WobbleFrequency = 30.0

	// Caller-side throttling: once a container has been settled this many
	// frames, only poke the distributor occasionally.
	SettledFrameThreshold = 60
	ThrottledInterval     = 15
)

// Simulation holds the demo scene: a beaker of stacked slices plus an air
// region, each with its own population of energy chunks kept tidy by the
// distributor.
type Simulation struct {
	beakerSlices []*energy.Slice
	airSlice     *energy.Slice

	dist    *distribute.Distributor
	rng     *rand.Rand
	noise   *perlin.Perlin
	monitor *Monitor

	nextChunkID int
	simTime     float64
	Paused      bool

	// redistribution state per container, for the HUD and throttling
	beakerActive        bool
	airActive           bool
	beakerSettledFrames int

	configPath string
	frame      int
}

// NewSimulation builds the demo scene
func NewSimulation(configPath string, monitor *Monitor) *Simulation {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	s := &Simulation{
		dist:       distribute.New(rng),
		rng:        rng,
		noise:      perlin.NewPerlin(2, 2, 2, rng.Int63()),
		monitor:    monitor,
		configPath: configPath,
	}
	s.reset()
	return s
}

// reset rebuilds the slices and seeds a few chunks in each container
func (s *Simulation) reset() {
	s.beakerSlices = nil
	sliceHeight := float64(BeakerHeight) / SliceCount
	for i := 0; i < SliceCount; i++ {
		shape := geom.RectangleShape{
			Rect: geom.NewRect(BeakerX, BeakerY+float64(i)*sliceHeight, BeakerWidth, sliceHeight),
		}
		s.beakerSlices = append(s.beakerSlices, energy.NewSlice(shape))
	}
	s.airSlice = energy.NewSlice(geom.EllipseShape{
		Center: geom.Vector2{X: AirCenterX, Y: AirCenterY},
		RX:     AirRX,
		RY:     AirRY,
	})

	s.nextChunkID = 0
	for i := 0; i < 6; i++ {
		s.addBeakerChunk()
	}
	for i := 0; i < 4; i++ {
		s.addAirChunk()
	}
	s.beakerActive = true
	s.airActive = true
	s.beakerSettledFrames = 0
}

// addBeakerChunk drops a chunk into the emptiest slice, near its center
// with a little jitter so the distributor has something to do.
func (s *Simulation) addBeakerChunk() {
	target := s.beakerSlices[0]
	for _, sl := range s.beakerSlices[1:] {
		if sl.Count() < target.Count() {
			target = sl
		}
	}
	center := target.Shape.Bounds().Center()
	jitter := geom.Vector2{
		X: (s.rng.Float64() - 0.5) * 0.01,
		Y: (s.rng.Float64() - 0.5) * 0.01,
	}
	target.AddChunk(energy.NewChunk(s.nextChunkID, center.Add(jitter)))
	s.nextChunkID++
	s.beakerActive = true
	s.beakerSettledFrames = 0
}

// removeBeakerChunk takes a chunk out of the fullest slice
func (s *Simulation) removeBeakerChunk() {
	target := s.beakerSlices[0]
	for _, sl := range s.beakerSlices[1:] {
		if sl.Count() > target.Count() {
			target = sl
		}
	}
	if target.Count() == 0 {
		return
	}
	target.RemoveChunk(target.Chunks[target.Count()-1])
	s.beakerActive = true
	s.beakerSettledFrames = 0
}

func (s *Simulation) addAirChunk() {
	center := s.airSlice.Shape.Bounds().Center()
	jitter := geom.Vector2{
		X: (s.rng.Float64() - 0.5) * 0.02,
		Y: (s.rng.Float64() - 0.5) * 0.01,
	}
	s.airSlice.AddChunk(energy.NewChunk(s.nextChunkID, center.Add(jitter)))
	s.nextChunkID++
}

func (s *Simulation) removeAirChunk() {
	if s.airSlice.Count() == 0 {
		return
	}
	s.airSlice.RemoveChunk(s.airSlice.Chunks[s.airSlice.Count()-1])
}

// Update is called each tick by Ebitengine
func (s *Simulation) Update() error {
	s.handleInput()

	if s.Paused {
		return nil
	}
	s.frame++
	s.simTime += DT

	// Beaker: poll the distributor every frame while it reports motion,
	// then back off to an occasional poke once settled.
	if s.beakerActive || s.beakerSettledFrames < SettledFrameThreshold || s.frame%ThrottledInterval == 0 {
		s.beakerActive = s.dist.UpdatePositions(s.beakerSlices, DT)
	}
	if s.beakerActive {
		s.beakerSettledFrames = 0
	} else {
		s.beakerSettledFrames++
	}

	// Air: perlin convection keeps nudging the chunks, so this container
	// never really settles. The wobble goes into the velocities before
	// redistribution so drag and repulsion shape it like any other motion.
	for _, c := range s.airSlice.Chunks {
		nx := s.noise.Noise2D(c.Position.X*WobbleFrequency, s.simTime)
		ny := s.noise.Noise2D(c.Position.Y*WobbleFrequency+100, s.simTime)
		c.Velocity = c.Velocity.Add(geom.Vector2{X: nx, Y: ny}.Scale(WobbleSpeed))
	}
	s.airActive = s.dist.UpdatePositions([]*energy.Slice{s.airSlice}, DT)

	if s.monitor != nil && s.frame%6 == 0 {
		s.monitor.Broadcast(s.snapshot())
	}
	return nil
}

// handleInput processes keyboard input
func (s *Simulation) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		s.Paused = !s.Paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		s.reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		s.addBeakerChunk()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		s.removeBeakerChunk()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		s.addAirChunk()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyZ) {
		s.removeAirChunk()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		s.saveConfig(s.configPath)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		s.loadConfig(s.configPath)
	}
}

// Draw is called each frame by Ebitengine
func (s *Simulation) Draw(screen *ebiten.Image) {
	outline := color.RGBA{90, 90, 110, 255}
	beakerCol := color.RGBA{255, 170, 0, 255}
	airCol := color.RGBA{110, 185, 255, 255}

	// Beaker slice outlines
	for _, sl := range s.beakerSlices {
		b := sl.Shape.Bounds()
		vector.StrokeRect(screen,
			float32(b.X*WorldScale), float32(b.Y*WorldScale),
			float32(b.Width*WorldScale), float32(b.Height*WorldScale),
			1, outline, true)
	}

	// Air ellipse outline, drawn as a segment loop
	const segments = 64
	for i := 0; i < segments; i++ {
		a0 := float64(i) * 2 * math.Pi / segments
		a1 := float64(i+1) * 2 * math.Pi / segments
		x0 := (AirCenterX + AirRX*math.Cos(a0)) * WorldScale
		y0 := (AirCenterY + AirRY*math.Sin(a0)) * WorldScale
		x1 := (AirCenterX + AirRX*math.Cos(a1)) * WorldScale
		y1 := (AirCenterY + AirRY*math.Sin(a1)) * WorldScale
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 1, outline, true)
	}

	for _, sl := range s.beakerSlices {
		for _, c := range sl.Chunks {
			vector.DrawFilledCircle(screen,
				float32(c.Position.X*WorldScale), float32(c.Position.Y*WorldScale),
				ChunkRadiusPx, beakerCol, true)
		}
	}
	for _, c := range s.airSlice.Chunks {
		vector.DrawFilledCircle(screen,
			float32(c.Position.X*WorldScale), float32(c.Position.Y*WorldScale),
			ChunkRadiusPx, airCol, true)
	}

	beakerTotal := 0
	for _, sl := range s.beakerSlices {
		beakerTotal += sl.Count()
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"beaker: %d chunks (moving=%v)  air: %d chunks (moving=%v)\n"+
			"H/C beaker +/-  A/Z air +/-  Space pause  R reset  S/L config",
		beakerTotal, s.beakerActive, s.airSlice.Count(), s.airActive))
}

// Layout returns the screen size
func (s *Simulation) Layout(outsideWidth, outsideHeight int) (int, int) {
	return WindowWidth, WindowHeight
}

// snapshot collects the current chunk state for the monitor
func (s *Simulation) snapshot() Snapshot {
	snap := Snapshot{
		Type:          "chunk_update",
		Time:          s.simTime,
		BeakerSettled: !s.beakerActive,
		AirSettled:    !s.airActive,
	}
	for i, sl := range s.beakerSlices {
		for _, c := range sl.Chunks {
			snap.Chunks = append(snap.Chunks, ChunkState{
				ID: c.ID, X: c.Position.X, Y: c.Position.Y,
				Container: fmt.Sprintf("beaker/%d", i),
			})
		}
	}
	for _, c := range s.airSlice.Chunks {
		snap.Chunks = append(snap.Chunks, ChunkState{
			ID: c.ID, X: c.Position.X, Y: c.Position.Y,
			Container: "air",
		})
	}
	return snap
}
