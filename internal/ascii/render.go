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
	"image/draw"
	"io/ioutil"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FontCandidate resolves a font face for a given cell size.
type FontCandidate interface {
	Name() string
	Face(size float64) (font.Face, error)
}

// TTFFile loads a TrueType font from disk.
type TTFFile string

func (f TTFFile) Name() string {
	return string(f)
}

func (f TTFFile) Face(size float64) (font.Face, error) {
	buf, err := ioutil.ReadFile(string(f))
	if err != nil {
		return nil, err
	}
	ttf, err := freetype.ParseFont(buf)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f, err)
	}
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// DefaultFonts lists the monospace fonts tried in order. A user supplied
// font file, if any, goes first.
func DefaultFonts(fontfile string) []FontCandidate {
	candidates := make([]FontCandidate, 0, 4)
	if fontfile != "" {
		candidates = append(candidates, TTFFile(fontfile))
	}
	return append(candidates, TTFFile("Courier.ttf"), TTFFile("cour.ttf"), TTFFile("courier_prime.ttf"))
}

const builtinFontName = "basicfont.Face7x13"

// Renderer draws glyph grids as white text on a black canvas.
type Renderer struct {
	face font.Face
	name string
}

// NewRenderer resolves the first loadable candidate. When none loads the
// built-in bitmap face is used instead.
func NewRenderer(cell int, candidates ...FontCandidate) *Renderer {
	for _, c := range candidates {
		face, err := c.Face(float64(cell))
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"font":  c.Name(),
				"error": err,
			}).Debug("font candidate unavailable")
			continue
		}
		return &Renderer{face: face, name: c.Name()}
	}
	logrus.WithField("font", builtinFontName).Debug("falling back to built-in font")
	return &Renderer{face: basicfont.Face7x13, name: builtinFontName}
}

func (r *Renderer) FontName() string {
	return r.name
}

// Render draws one text line per grid row, row i at vertical offset i*cell.
func (r *Renderer) Render(grid Grid, cell int) (*image.RGBA, error) {
	if cell <= 0 {
		return nil, fmt.Errorf("invalid cell size %d", cell)
	}
	if grid.Rows() == 0 || grid.Columns() == 0 {
		return nil, errors.New("empty grid")
	}
	canvas := image.NewRGBA(image.Rect(0, 0, grid.Columns()*cell, grid.Rows()*cell))
	draw.Draw(canvas, canvas.Bounds(), image.Black, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.White,
		Face: r.face,
	}
	ascent := r.face.Metrics().Ascent
	for i, line := range grid.Lines() {
		d.Dot = fixed.Point26_6{X: 0, Y: fixed.I(i*cell) + ascent}
		d.DrawString(line)
	}
	return canvas, nil
}
