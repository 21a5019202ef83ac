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

package sink

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/boriwo/vidascii/internal/ascii"
	"github.com/boriwo/vidascii/internal/media"
	"github.com/boriwo/vidascii/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stripeSource struct {
	info     media.StreamInfo
	served   int
	released int
}

func (s *stripeSource) Info() media.StreamInfo { return s.info }

func (s *stripeSource) Next() (image.Image, error) {
	if s.served >= s.info.FrameCount {
		return nil, io.EOF
	}
	img := image.NewRGBA(image.Rect(0, 0, s.info.Width, s.info.Height))
	for y := 0; y < s.info.Height; y++ {
		for x := 0; x < s.info.Width; x++ {
			v := uint8((x*255/s.info.Width + s.served*17) % 256)
			o := img.PixOffset(x, y)
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = v, v, v, 255
		}
	}
	s.served++
	return img, nil
}

func (s *stripeSource) Release() error {
	s.released++
	return nil
}

func newStripeSource(frames int) *stripeSource {
	return &stripeSource{info: media.StreamInfo{FrameRate: 30, FrameCount: frames, Width: 96, Height: 54}}
}

func newTransformer() *ascii.Transformer {
	return ascii.NewTransformer(ascii.MustAlphabet(ascii.DefaultAlphabet), ascii.NewRenderer(ascii.DefaultCellSize))
}

func runText(t *testing.T, path string, frames, limit int) pipeline.Result {
	d := pipeline.NewDriver(NewText(path), newTransformer(), ascii.NewPlanner(), pipeline.Options{
		Columns:   ascii.ExportColumns,
		MaxFrames: limit,
		Pacing:    pipeline.Pacing{ProgressEvery: pipeline.DefaultProgressEvery},
	})
	res, err := d.Run(context.Background(), newStripeSource(frames))
	require.NoError(t, err)
	return res
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "/videos/clip_ascii.txt", OutputPath("/videos/clip.mp4", ".txt"))
	assert.Equal(t, "clip_ascii.mp4", OutputPath("clip", ".mp4"))
}

func TestWriteBlock_Format(t *testing.T) {
	var buf bytes.Buffer
	grid := ascii.Grid{[]rune("@%"), []rune(". ")}
	require.NoError(t, WriteBlock(&buf, pipeline.Frame{Index: 7, Grid: grid}))

	want := "=== Frame 7 ===\n@%\n. \n\n" + strings.Repeat("=", 50) + "\n\n"
	assert.Equal(t, want, buf.String())
}

func TestText_Transcript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out_ascii.txt")
	res := runText(t, path, 100, 5)
	assert.Equal(t, 5, res.Frames)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Equal(t, 5, strings.Count(text, "=== Frame "))
	assert.Contains(t, text, "=== Frame 0 ===\n")
	assert.Contains(t, text, "=== Frame 4 ===\n")
	assert.NotContains(t, text, "=== Frame 5 ===")

	blocks := strings.Split(text, "=== Frame ")[1:]
	for _, block := range blocks {
		lines := strings.Split(block, "\n")
		// header tail, grid rows, blank, separator, trailing blank line
		require.Len(t, lines, 1+res.Geometry.Rows+4)
		for _, row := range lines[1 : 1+res.Geometry.Rows] {
			assert.Len(t, []rune(row), ascii.ExportColumns)
		}
	}
}

func TestText_Idempotent(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.txt")
	second := filepath.Join(dir, "b.txt")
	runText(t, first, 20, 10)
	runText(t, second, 20, 10)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestText_OpenError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.txt")
	d := pipeline.NewDriver(NewText(path), newTransformer(), ascii.NewPlanner(), pipeline.Options{Columns: 40})
	src := newStripeSource(3)
	_, err := d.Run(context.Background(), src)
	var serr *pipeline.SinkError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 1, src.released)
}

type fakeEncoder struct {
	width, height int
	fps           float64
	codec         string
	frames        []*image.RGBA
	closed        int
	failAt        int
}

func (e *fakeEncoder) WriteFrame(img *image.RGBA) error {
	if len(e.frames) == e.failAt {
		return errors.New("encoder pipe closed")
	}
	e.frames = append(e.frames, img)
	return nil
}

func (e *fakeEncoder) Close() error {
	e.closed++
	return nil
}

func TestVideo_EncodesInOrder(t *testing.T) {
	enc := &fakeEncoder{failAt: -1}
	v := NewVideo("out.mp4").WithEncoder(func(path, codec string, fps float64, w, h int) (FrameEncoder, error) {
		enc.codec, enc.fps, enc.width, enc.height = codec, fps, w, h
		return enc, nil
	})
	d := pipeline.NewDriver(v, newTransformer(), ascii.NewPlanner(), pipeline.Options{
		Columns:   ascii.ExportColumns,
		CellSize:  ascii.DefaultCellSize,
		MaxFrames: 4,
	})
	src := newStripeSource(10)
	res, err := d.Run(context.Background(), src)
	require.NoError(t, err)

	cw, ch := res.Geometry.Canvas(ascii.DefaultCellSize)
	assert.Equal(t, media.CodecMP4V, enc.codec)
	assert.Equal(t, 30.0, enc.fps)
	assert.Equal(t, cw, enc.width)
	assert.Equal(t, ch, enc.height)
	require.Len(t, enc.frames, 4)
	for _, f := range enc.frames {
		assert.Equal(t, cw, f.Bounds().Dx())
		assert.Equal(t, ch, f.Bounds().Dy())
	}
	// Stripes shift every frame, so consecutive canvases differ.
	assert.NotEqual(t, enc.frames[0].Pix, enc.frames[1].Pix)
	assert.Equal(t, 1, enc.closed)
	assert.Equal(t, 1, src.released)
}

func TestVideo_FallbackFPS(t *testing.T) {
	var got float64
	v := NewVideo("out.mp4").WithEncoder(func(path, codec string, fps float64, w, h int) (FrameEncoder, error) {
		got = fps
		return &fakeEncoder{failAt: -1}, nil
	})
	require.NoError(t, v.Open(media.StreamInfo{Width: 10, Height: 10}, pipeline.Layout{Geometry: ascii.Geometry{Columns: 2, Rows: 2}, CellSize: 8}))
	assert.Equal(t, FallbackFPS, got)
	require.NoError(t, v.Close())
}

func TestVideo_WriteFailureAborts(t *testing.T) {
	enc := &fakeEncoder{failAt: 2}
	v := NewVideo("out.mp4").WithEncoder(func(string, string, float64, int, int) (FrameEncoder, error) {
		return enc, nil
	})
	d := pipeline.NewDriver(v, newTransformer(), ascii.NewPlanner(), pipeline.Options{Columns: 40, CellSize: 8})
	src := newStripeSource(10)
	res, err := d.Run(context.Background(), src)

	var serr *pipeline.SinkError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "video", serr.Sink)
	assert.Equal(t, pipeline.Aborted, res.State)
	assert.Len(t, enc.frames, 2)
	assert.Equal(t, 1, enc.closed)
	assert.Equal(t, 1, src.released)
}

func TestTerminal_PrintsCounter(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminalWriter(&buf)
	d := pipeline.NewDriver(term, newTransformer(), ascii.NewPlanner(), pipeline.Options{
		Columns:   ascii.PreviewColumns,
		MaxFrames: 3,
		Pacing:    pipeline.Pacing{Cancellable: true},
	})
	res, err := d.Run(context.Background(), newStripeSource(10))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Frames)

	out := buf.String()
	assert.NotContains(t, out, clearScreen)
	assert.Contains(t, out, "Frame: 0/3\n")
	assert.Contains(t, out, "Frame: 2/3\n")
	assert.Equal(t, 3, strings.Count(out, "Press Ctrl+C to stop"))
}

func TestTerminal_ClearsOnTTY(t *testing.T) {
	var buf bytes.Buffer
	term := &Terminal{out: &buf, fd: -1, isTTY: true}
	err := term.Write(context.Background(), pipeline.Frame{Index: 1, Total: 2, Grid: ascii.Grid{[]rune("@@")}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), clearScreen))
}
