package energy

import "github.com/olivierh59500/energy-chunks-go/internal/geom"

// Slice is one 2D sub-region of a container (e.g. one horizontal layer of
// a beaker) holding a subset of its energy chunks. The owning model adds
// and removes chunks; the distributor only repositions them.
type Slice struct {
	Shape  geom.Shape
	Chunks []*Chunk
}

// NewSlice creates an empty slice over the given shape
func NewSlice(shape geom.Shape) *Slice {
	return &Slice{Shape: shape}
}

// AddChunk appends a chunk to this slice
func (s *Slice) AddChunk(c *Chunk) {
	s.Chunks = append(s.Chunks, c)
}

// RemoveChunk removes the given chunk, preserving the order of the rest.
// Returns false if the chunk was not in this slice.
func (s *Slice) RemoveChunk(c *Chunk) bool {
	for i, other := range s.Chunks {
		if other == c {
			s.Chunks = append(s.Chunks[:i], s.Chunks[i+1:]...)
			return true
		}
	}
	return false
}

// Count returns the number of chunks in this slice
func (s *Slice) Count() int {
	return len(s.Chunks)
}
