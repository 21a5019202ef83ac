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

// Package decode reads video frames through reisen (libav).
package decode

import (
	"errors"
	"image"
	"io"
	"os"

	"github.com/boriwo/vidascii/internal/media"
	"github.com/zergon321/reisen"
)

// Source owns an opened media file and its first video stream until
// Release is called.
type Source struct {
	path     string
	media    *reisen.Media
	video    *reisen.VideoStream
	info     media.StreamInfo
	released bool
}

// Open opens path and prepares its first video stream for decoding.
func Open(path string) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &media.OpenError{Path: path, Err: err}
	}
	m, err := reisen.NewMedia(path)
	if err != nil {
		return nil, &media.OpenError{Path: path, Err: err}
	}
	streams := m.VideoStreams()
	if len(streams) == 0 {
		m.Close()
		return nil, &media.OpenError{Path: path, Err: media.ErrNoVideoStream}
	}
	video := streams[0]
	num, den := video.FrameRate()
	fps := 0.0
	if den > 0 {
		fps = float64(num) / float64(den)
	}
	info := media.StreamInfo{
		FrameRate:  fps,
		FrameCount: int(video.FrameCount()),
		Width:      video.Width(),
		Height:     video.Height(),
	}
	if err := m.OpenDecode(); err != nil {
		m.Close()
		return nil, &media.OpenError{Path: path, Err: err}
	}
	if err := video.Open(); err != nil {
		m.CloseDecode()
		m.Close()
		return nil, &media.OpenError{Path: path, Err: err}
	}
	return &Source{path: path, media: m, video: video, info: info}, nil
}

func (s *Source) Info() media.StreamInfo {
	return s.info
}

// Next returns the next decoded frame of the video stream, io.EOF once the
// container has no more packets.
func (s *Source) Next() (image.Image, error) {
	if s.released {
		return nil, errors.New("source released")
	}
	for {
		packet, gotPacket, err := s.media.ReadPacket()
		if err != nil {
			return nil, err
		}
		if !gotPacket {
			return nil, io.EOF
		}
		if packet.Type() != reisen.StreamVideo {
			continue
		}
		if vs, ok := s.media.Streams()[packet.StreamIndex()].(*reisen.VideoStream); !ok || vs != s.video {
			continue
		}
		frame, gotFrame, err := s.video.ReadVideoFrame()
		if err != nil {
			return nil, err
		}
		if !gotFrame || frame == nil {
			continue
		}
		return frame.Image(), nil
	}
}

// Release closes the stream and the media. Calls after the first are no-ops.
func (s *Source) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	err := s.video.Close()
	if cerr := s.media.CloseDecode(); err == nil {
		err = cerr
	}
	s.media.Close()
	return err
}
