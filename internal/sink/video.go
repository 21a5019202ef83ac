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
	"context"
	"errors"
	"image"

	"github.com/boriwo/vidascii/internal/media"
	"github.com/boriwo/vidascii/internal/pipeline"
	"github.com/sirupsen/logrus"
)

// FallbackFPS is used when the source does not report a frame rate.
const FallbackFPS = 25.0

type FrameEncoder interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}

type EncoderOpener func(path, codec string, fps float64, width, height int) (FrameEncoder, error)

func openFFmpeg(path, codec string, fps float64, width, height int) (FrameEncoder, error) {
	return media.OpenEncoder(path, codec, fps, width, height)
}

// Video encodes rendered glyph canvases in source order.
type Video struct {
	path  string
	codec string
	open  EncoderOpener
	enc   FrameEncoder
}

func NewVideo(path string) *Video {
	return &Video{path: path, codec: media.CodecMP4V, open: openFFmpeg}
}

// WithEncoder replaces the encoder backend.
func (v *Video) WithEncoder(open EncoderOpener) *Video {
	v.open = open
	return v
}

func (v *Video) Name() string { return "video" }

func (v *Video) Kind() pipeline.OutputKind { return pipeline.KindImage }

func (v *Video) Path() string { return v.path }

func (v *Video) Open(info media.StreamInfo, layout pipeline.Layout) error {
	fps := info.FrameRate
	if fps <= 0 {
		logrus.WithField("fps", FallbackFPS).Warn("source reports no frame rate")
		fps = FallbackFPS
	}
	width, height := layout.Geometry.Canvas(layout.CellSize)
	enc, err := v.open(v.path, v.codec, fps, width, height)
	if err != nil {
		return err
	}
	v.enc = enc
	return nil
}

func (v *Video) Write(_ context.Context, frame pipeline.Frame) error {
	if v.enc == nil {
		return errors.New("video sink not open")
	}
	if frame.Image == nil {
		return errors.New("video sink needs a rendered image")
	}
	return v.enc.WriteFrame(frame.Image)
}

func (v *Video) Close() error {
	if v.enc == nil {
		return nil
	}
	err := v.enc.Close()
	v.enc = nil
	return err
}
