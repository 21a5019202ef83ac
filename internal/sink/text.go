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

// Package sink holds the destinations transformed frames are pushed to.
package sink

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/boriwo/vidascii/internal/media"
	"github.com/boriwo/vidascii/internal/pipeline"
)

var separator = strings.Repeat("=", 50)

// OutputPath derives "<dir>/<base>_ascii<ext>" from a video path.
func OutputPath(videoPath, ext string) string {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	return base + "_ascii" + ext
}

// Text appends one self-contained block per frame to a transcript file.
type Text struct {
	path string
	file io.WriteCloser
	w    *bufio.Writer
}

func NewText(path string) *Text {
	return &Text{path: path}
}

func (t *Text) Name() string { return "text" }

func (t *Text) Kind() pipeline.OutputKind { return pipeline.KindGrid }

func (t *Text) Path() string { return t.path }

func (t *Text) Open(media.StreamInfo, pipeline.Layout) error {
	f, err := os.Create(t.path)
	if err != nil {
		return err
	}
	t.file = f
	t.w = bufio.NewWriter(f)
	return nil
}

// WriteBlock writes one frame in transcript format.
func WriteBlock(w io.Writer, frame pipeline.Frame) error {
	_, err := fmt.Fprintf(w, "=== Frame %d ===\n%s\n\n%s\n\n", frame.Index, frame.Grid.String(), separator)
	return err
}

// Write flushes after every block so a failure never leaves a partial frame
// buffered behind completed ones.
func (t *Text) Write(_ context.Context, frame pipeline.Frame) error {
	if t.w == nil {
		return errors.New("text sink not open")
	}
	if err := WriteBlock(t.w, frame); err != nil {
		return err
	}
	return t.w.Flush()
}

func (t *Text) Close() error {
	if t.file == nil {
		return nil
	}
	err := t.w.Flush()
	if cerr := t.file.Close(); err == nil {
		err = cerr
	}
	t.file, t.w = nil, nil
	return err
}
