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
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformFrame(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// gradientFrame runs from black on the left to white on the right.
func gradientFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / (w - 1))
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

type failingResizer struct{ err error }

func (r failingResizer) Resize(image.Image, int, int) (image.Image, error) {
	return nil, r.err
}

type shortResizer struct{}

func (shortResizer) Resize(src image.Image, w, h int) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, w-1, h)), nil
}

func TestTransformer_GridDimensions(t *testing.T) {
	tr := NewTransformer(MustAlphabet(DefaultAlphabet), nil)
	for _, geom := range []Geometry{{120, 38}, {80, 24}, {3, 2}, {1, 2}} {
		grid, err := tr.ToGrid(gradientFrame(320, 180), geom)
		require.NoError(t, err)
		require.Equal(t, geom.Rows, grid.Rows())
		for _, row := range grid {
			assert.Len(t, row, geom.Columns)
		}
	}
}

func TestTransformer_UniformFrames(t *testing.T) {
	tr := NewTransformer(MustAlphabet(DefaultAlphabet), nil)
	geom := Geometry{Columns: 4, Rows: 2}

	black, err := tr.ToGrid(uniformFrame(64, 48, color.Black), geom)
	require.NoError(t, err)
	assert.Equal(t, "@@@@\n@@@@", black.String())

	white, err := tr.ToGrid(uniformFrame(64, 48, color.White), geom)
	require.NoError(t, err)
	assert.Equal(t, "    \n    ", white.String())
}

func TestTransformer_GradientIsMonotonic(t *testing.T) {
	alpha := MustAlphabet(DefaultAlphabet)
	tr := NewTransformer(alpha, nil)
	grid, err := tr.ToGrid(gradientFrame(400, 20), Geometry{Columns: 40, Rows: 2})
	require.NoError(t, err)

	order := alpha.String()
	prev := -1
	for _, r := range grid[0] {
		idx := strings.IndexRune(order, r)
		require.GreaterOrEqual(t, idx, prev)
		prev = idx
	}
	assert.Equal(t, '@', grid[0][0])
}

func TestTransformer_ResizeFailure(t *testing.T) {
	boom := errors.New("boom")
	tr := NewTransformer(MustAlphabet(DefaultAlphabet), nil)
	tr.Resizer = failingResizer{err: boom}

	grid, err := tr.ToGrid(gradientFrame(10, 10), Geometry{Columns: 4, Rows: 2})
	assert.Nil(t, grid)
	var ferr *FrameError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, StageResize, ferr.Stage)
	assert.ErrorIs(t, err, boom)
}

func TestTransformer_ResizerContract(t *testing.T) {
	tr := NewTransformer(MustAlphabet(DefaultAlphabet), nil)
	tr.Resizer = shortResizer{}

	_, err := tr.ToGrid(gradientFrame(10, 10), Geometry{Columns: 4, Rows: 2})
	var ferr *FrameError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, StageResize, ferr.Stage)
}

func TestTransformer_EmptyFrame(t *testing.T) {
	tr := NewTransformer(MustAlphabet(DefaultAlphabet), nil)
	_, err := tr.ToGrid(image.NewRGBA(image.Rect(0, 0, 0, 0)), Geometry{Columns: 4, Rows: 2})
	assert.ErrorIs(t, err, ErrEmptyFrame)
}

func TestGrayLuminance_Weights(t *testing.T) {
	img := uniformFrame(2, 2, color.RGBA{R: 255, A: 255})
	gray, err := GrayLuminance{}.ToLuminance(img)
	require.NoError(t, err)
	// 0.299 * 255
	assert.InDelta(t, 76, int(gray.GrayAt(0, 0).Y), 1)
}

func TestTransformer_ToImageNeedsRenderer(t *testing.T) {
	tr := NewTransformer(MustAlphabet(DefaultAlphabet), nil)
	_, err := tr.ToImage(gradientFrame(10, 10), Geometry{Columns: 4, Rows: 2}, DefaultCellSize)
	var ferr *FrameError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, StageRender, ferr.Stage)
}

func TestTransformer_ThinLinesAverageDark(t *testing.T) {
	// 1px white columns every 16px: the mean luminance is about 16.
	img := uniformFrame(960, 540, color.Black)
	for y := 0; y < 540; y++ {
		for x := 8; x < 960; x += 16 {
			img.Set(x, y, color.White)
		}
	}
	tr := NewTransformer(MustAlphabet(DefaultAlphabet), nil)
	grid, err := tr.ToGrid(img, Geometry{Columns: 60, Rows: 18})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("@", 60), string(grid[0]))
	assert.Equal(t, strings.Repeat("@", 60), string(grid[17]))
}
