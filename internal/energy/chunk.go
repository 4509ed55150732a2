// Package energy holds the model-side containers the distributor works on:
// energy chunks and the slices that own them.
package energy

import "github.com/olivierh59500/energy-chunks-go/internal/geom"

// Chunk is a single visual energy marker. Position and Velocity are
// mutated in place by the distributor; everything else about a chunk's
// lifecycle (which slice holds it, when it is created or destroyed)
// belongs to the owning model element.
type Chunk struct {
	ID       int
	Position geom.Vector2
	Velocity geom.Vector2
}

// NewChunk creates a chunk at rest at the given position
func NewChunk(id int, pos geom.Vector2) *Chunk {
	return &Chunk{ID: id, Position: pos}
}
