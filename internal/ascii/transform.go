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
	"errors"
	"fmt"
	"image"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// Stages reported by FrameError.
const (
	StageResize    = "resize"
	StageLuminance = "luminance"
	StageRender    = "render"
)

var ErrEmptyFrame = errors.New("empty frame")

// FrameError reports a failure while transforming a single frame.
type FrameError struct {
	Stage string
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame processing failed at %s: %v", e.Stage, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

type Resizer interface {
	Resize(src image.Image, width, height int) (image.Image, error)
}

type Luminancer interface {
	ToLuminance(src image.Image) (*image.Gray, error)
}

// ScaleResizer resamples with an x/image interpolator.
type ScaleResizer struct {
	Interpolator xdraw.Interpolator
}

func (r ScaleResizer) Resize(src image.Image, width, height int) (image.Image, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, ErrEmptyFrame
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}
	interp := r.Interpolator
	if interp == nil {
		interp = xdraw.BiLinear
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	interp.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst, nil
}

// GrayLuminance converts with the ITU-R 601 weights of color.GrayModel.
type GrayLuminance struct{}

func (GrayLuminance) ToLuminance(src image.Image) (*image.Gray, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, ErrEmptyFrame
	}
	if g, ok := src.(*image.Gray); ok {
		return g, nil
	}
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(dst, image.Point{}, src, b, xdraw.Src, nil)
	return dst, nil
}

// Grid holds one transformed frame, row-major.
type Grid [][]rune

func (g Grid) Rows() int {
	return len(g)
}

func (g Grid) Columns() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

func (g Grid) Lines() []string {
	lines := make([]string, len(g))
	for i, row := range g {
		lines[i] = string(row)
	}
	return lines
}

// String joins the rows with newlines, without a trailing one.
func (g Grid) String() string {
	return strings.Join(g.Lines(), "\n")
}

// Transformer turns raster frames into glyph grids or rendered glyph images.
type Transformer struct {
	Alphabet Alphabet
	Resizer  Resizer
	Luma     Luminancer
	Renderer *Renderer
}

// NewTransformer wires the default resizer and luminance conversion.
// The renderer may be nil when only grids are needed.
func NewTransformer(alphabet Alphabet, renderer *Renderer) *Transformer {
	return &Transformer{
		Alphabet: alphabet,
		Resizer:  ScaleResizer{Interpolator: xdraw.BiLinear},
		Luma:     GrayLuminance{},
		Renderer: renderer,
	}
}

func (t *Transformer) ToGrid(frame image.Image, geom Geometry) (Grid, error) {
	resized, err := t.Resizer.Resize(frame, geom.Columns, geom.Rows)
	if err != nil {
		return nil, &FrameError{Stage: StageResize, Err: err}
	}
	gray, err := t.Luma.ToLuminance(resized)
	if err != nil {
		return nil, &FrameError{Stage: StageLuminance, Err: err}
	}
	b := gray.Bounds()
	if b.Dx() != geom.Columns || b.Dy() != geom.Rows {
		return nil, &FrameError{
			Stage: StageResize,
			Err:   fmt.Errorf("got %dx%d, want %s", b.Dx(), b.Dy(), geom),
		}
	}
	grid := make(Grid, geom.Rows)
	for y := 0; y < geom.Rows; y++ {
		row := make([]rune, geom.Columns)
		for x := 0; x < geom.Columns; x++ {
			row[x] = t.Alphabet.Glyph(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
		}
		grid[y] = row
	}
	return grid, nil
}

// ToImage renders the grid of a frame onto a canvas of
// geom.Columns*cell by geom.Rows*cell pixels.
func (t *Transformer) ToImage(frame image.Image, geom Geometry, cell int) (*image.RGBA, error) {
	if t.Renderer == nil {
		return nil, &FrameError{Stage: StageRender, Err: errors.New("no renderer configured")}
	}
	grid, err := t.ToGrid(frame, geom)
	if err != nil {
		return nil, err
	}
	canvas, err := t.Renderer.Render(grid, cell)
	if err != nil {
		return nil, &FrameError{Stage: StageRender, Err: err}
	}
	return canvas, nil
}
