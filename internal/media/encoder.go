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

package media

import (
	"fmt"
	"image"

	vidio "github.com/AlexEidt/Vidio"
)

const (
	// CodecMP4V is the ffmpeg name of the MPEG-4 part 2 encoder, FourCC mp4v.
	CodecMP4V = "mpeg4"
)

// frameWriter takes packed RGBA frames.
type frameWriter interface {
	Write(frame []byte) error
	Close() error
}

type vidioWriter struct {
	vw *vidio.VideoWriter
}

func (w vidioWriter) Write(frame []byte) error {
	return w.vw.Write(frame)
}

func (w vidioWriter) Close() error {
	w.vw.Close()
	return nil
}

// Encoder writes RGBA frames of a fixed size to a video file through
// Vidio's ffmpeg writer.
type Encoder struct {
	path   string
	width  int
	height int
	frames int
	buf    []byte
	out    frameWriter
}

// OpenEncoder starts writing path with the given codec.
func OpenEncoder(path, codec string, fps float64, width, height int) (*Encoder, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid encoder size %dx%d", width, height)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("invalid frame rate %f", fps)
	}
	vw, err := vidio.NewVideoWriter(path, width, height, &vidio.Options{
		FPS:   fps,
		Codec: codec,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	return newEncoder(path, width, height, vidioWriter{vw: vw}), nil
}

func newEncoder(path string, width, height int, out frameWriter) *Encoder {
	return &Encoder{path: path, width: width, height: height, out: out}
}

// WriteFrame writes one frame. Frames must match the encoder size.
func (e *Encoder) WriteFrame(img *image.RGBA) error {
	b := img.Bounds()
	if b.Dx() != e.width || b.Dy() != e.height {
		return fmt.Errorf("frame %d is %dx%d, encoder expects %dx%d", e.frames, b.Dx(), b.Dy(), e.width, e.height)
	}
	if err := e.out.Write(e.packed(img)); err != nil {
		return fmt.Errorf("encode %s: frame %d: %w", e.path, e.frames, err)
	}
	e.frames++
	return nil
}

// packed returns the frame pixels without row padding.
func (e *Encoder) packed(img *image.RGBA) []byte {
	rowLen := 4 * e.width
	if img.Stride == rowLen && img.Rect.Min == (image.Point{}) {
		return img.Pix[:rowLen*e.height]
	}
	if e.buf == nil {
		e.buf = make([]byte, rowLen*e.height)
	}
	b := img.Bounds()
	for y := 0; y < e.height; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(e.buf[y*rowLen:], img.Pix[off:off+rowLen])
	}
	return e.buf
}

func (e *Encoder) Frames() int {
	return e.frames
}

// Close finishes the container.
func (e *Encoder) Close() error {
	if err := e.out.Close(); err != nil {
		return fmt.Errorf("encode %s: %w", e.path, err)
	}
	return nil
}
