package mapgen

import (
	"errors"
	"fmt"
	"math"
)

// MaxTiles is the largest grid BuildGrid can index: every tile owns 4 vertices
// and indices are uint32.
const MaxTiles = math.MaxUint32 / 4

// FloatsPerVertex is the width of one vertex in the Floats stream: x y z u v.
const FloatsPerVertex = 5

// Vertex is one tile corner.
type Vertex struct {
	Position  [3]float32
	TexCoords [2]float32
}

// Mesh holds the vertex and index data for a grid. Indices form a triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// GridOptions controls grid generation.
// Columns/Rows are in tiles; TileWidth/TileHeight are the world size of one tile.
// RowStep is how far each row moves down; it is smaller than TileHeight so rows overlap.
// Odd rows are shifted right by TileWidth/2 (brick layout).
// ZNear is the depth of a tile's top edge, ZFar the depth of its bottom edge,
// which tilts every tile front to back.
type GridOptions struct {
	Columns    int
	Rows       int
	TileWidth  float32
	TileHeight float32
	RowStep    float32
	ZNear      float32
	ZFar       float32
}

// DefaultGridOptions returns a 3×3 grid of 58×30 road tiles.
func DefaultGridOptions() GridOptions {
	return GridOptions{
		Columns:    3,
		Rows:       3,
		TileWidth:  58,
		TileHeight: 30,
		RowStep:    15,
		ZNear:      1,
		ZFar:       0,
	}
}

// Validate reports dimensions BuildGrid cannot honour.
func (o GridOptions) Validate() error {
	var errs []error
	if o.Columns <= 0 {
		errs = append(errs, fmt.Errorf("columns must be positive, got %d", o.Columns))
	}
	if o.Rows <= 0 {
		errs = append(errs, fmt.Errorf("rows must be positive, got %d", o.Rows))
	}
	if o.Columns > 0 && o.Rows > 0 && uint64(o.Columns)*uint64(o.Rows) > MaxTiles {
		errs = append(errs, fmt.Errorf("%d×%d tiles exceeds the limit of %d", o.Columns, o.Rows, uint64(MaxTiles)))
	}
	if !(o.TileWidth > 0) {
		errs = append(errs, fmt.Errorf("tile width must be positive, got %g", o.TileWidth))
	}
	if !(o.TileHeight > 0) {
		errs = append(errs, fmt.Errorf("tile height must be positive, got %g", o.TileHeight))
	}
	if !(o.RowStep > 0) {
		errs = append(errs, fmt.Errorf("row step must be positive, got %g", o.RowStep))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("mapgen: %w", err)
	}
	return nil
}

// BuildGrid generates one quad per tile, rows outer and columns inner.
// Each tile gets its own four corners (top-left, top-right, bottom-left,
// bottom-right) and two triangles [0,1,2] and [2,1,3] relative to its first
// vertex. Nothing is shared between tiles.
//
// The result depends only on opts. Options that fail Validate produce an
// empty or overflowing mesh; BuildGrid does not check.
func BuildGrid(opts GridOptions) Mesh {
	if opts.Columns <= 0 || opts.Rows <= 0 {
		return Mesh{}
	}
	tiles := opts.Columns * opts.Rows
	mesh := Mesh{
		Vertices: make([]Vertex, 0, tiles*4),
		Indices:  make([]uint32, 0, tiles*6),
	}

	w, h := opts.TileWidth, opts.TileHeight
	half := w / 2
	for y := 0; y < opts.Rows; y++ {
		yOffset := float32(y) * opts.RowStep
		for x := 0; x < opts.Columns; x++ {
			xOffset := float32(x) * w
			if y%2 == 1 {
				xOffset += half
			}

			mesh.Vertices = append(mesh.Vertices,
				Vertex{Position: [3]float32{xOffset, yOffset, opts.ZNear}, TexCoords: [2]float32{0, 1}},
				Vertex{Position: [3]float32{xOffset + w, yOffset, opts.ZNear}, TexCoords: [2]float32{1, 1}},
				Vertex{Position: [3]float32{xOffset, yOffset + h, opts.ZFar}, TexCoords: [2]float32{0, 0}},
				Vertex{Position: [3]float32{xOffset + w, yOffset + h, opts.ZFar}, TexCoords: [2]float32{1, 0}},
			)

			base := uint32(y*opts.Columns+x) * 4
			mesh.Indices = append(mesh.Indices,
				base+0, base+1, base+2,
				base+2, base+1, base+3,
			)
		}
	}
	return mesh
}

// TileCount returns the number of quads in the mesh.
func (m Mesh) TileCount() int {
	return len(m.Vertices) / 4
}

// Floats flattens the vertices into the interleaved x y z u v stream that is
// uploaded to the vertex buffer.
func (m Mesh) Floats() []float32 {
	out := make([]float32, 0, len(m.Vertices)*FloatsPerVertex)
	for _, v := range m.Vertices {
		out = append(out, v.Position[0], v.Position[1], v.Position[2], v.TexCoords[0], v.TexCoords[1])
	}
	return out
}
