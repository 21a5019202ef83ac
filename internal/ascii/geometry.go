/**
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ascii

import (
	"fmt"
	"math"
)

const (
	// DefaultAspect compresses the vertical extent because character
	// cells are taller than they are wide.
	DefaultAspect   = 0.55
	ExportColumns   = 120
	PreviewColumns  = 80
	DefaultCellSize = 8
)

// Geometry is the character grid a frame is mapped onto.
type Geometry struct {
	Columns int
	Rows    int
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d", g.Columns, g.Rows)
}

// Canvas returns the pixel size of the grid rendered with the given cell size.
func (g Geometry) Canvas(cell int) (width, height int) {
	return g.Columns * cell, g.Rows * cell
}

type GeometryError struct {
	Width, Height, Columns int
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("invalid geometry: source %dx%d, %d columns", e.Width, e.Height, e.Columns)
}

// Planner derives output geometry from a source resolution.
type Planner struct {
	Aspect float64
}

func NewPlanner() Planner {
	return Planner{Aspect: DefaultAspect}
}

// Plan keeps columns fixed and scales rows by the source aspect ratio and
// the cell aspect factor. Rows are rounded up to the next even number and
// never drop below 2.
func (p Planner) Plan(width, height, columns int) (Geometry, error) {
	if width <= 0 || height <= 0 || columns <= 0 {
		return Geometry{}, &GeometryError{Width: width, Height: height, Columns: columns}
	}
	aspect := p.Aspect
	if aspect <= 0 {
		aspect = DefaultAspect
	}
	scale := float64(columns) / float64(width)
	rows := int(math.Floor(float64(height) * scale * aspect))
	if rows%2 != 0 {
		rows++
	}
	if rows < 2 {
		rows = 2
	}
	return Geometry{Columns: columns, Rows: rows}, nil
}
