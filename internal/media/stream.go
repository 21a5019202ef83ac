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
	"errors"
	"fmt"
	"time"
)

var ErrNoVideoStream = errors.New("no video stream")

// StreamInfo describes a video stream. It is read once when a run starts.
type StreamInfo struct {
	FrameRate  float64
	FrameCount int
	Width      int
	Height     int
}

// Duration is zero when the frame rate is unknown.
func (s StreamInfo) Duration() time.Duration {
	if s.FrameRate <= 0 {
		return 0
	}
	return time.Duration(float64(s.FrameCount) / s.FrameRate * float64(time.Second))
}

func (s StreamInfo) String() string {
	return fmt.Sprintf("%dx%d %.2f fps, %d frames, %s", s.Width, s.Height, s.FrameRate, s.FrameCount, s.Duration().Round(10*time.Millisecond))
}

// OpenError reports a source that could not be opened or read.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}
