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
	"fmt"
	"io"
	"os"

	"github.com/boriwo/vidascii/internal/media"
	"github.com/boriwo/vidascii/internal/pipeline"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const clearScreen = "\033[H\033[2J"

// Terminal prints each grid in place, followed by a frame counter.
type Terminal struct {
	out   io.Writer
	fd    int
	isTTY bool
}

// NewTerminal writes to f and clears the screen between frames when f is
// a terminal.
func NewTerminal(f *os.File) *Terminal {
	fd := int(f.Fd())
	return &Terminal{out: f, fd: fd, isTTY: term.IsTerminal(fd)}
}

// NewTerminalWriter never emits clear sequences.
func NewTerminalWriter(w io.Writer) *Terminal {
	return &Terminal{out: w, fd: -1}
}

func (t *Terminal) Name() string { return "terminal" }

func (t *Terminal) Kind() pipeline.OutputKind { return pipeline.KindGrid }

func (t *Terminal) Open(_ media.StreamInfo, layout pipeline.Layout) error {
	if !t.isTTY {
		return nil
	}
	width, height, err := term.GetSize(t.fd)
	if err != nil {
		return nil
	}
	if layout.Geometry.Columns > width || layout.Geometry.Rows+2 > height {
		logrus.WithFields(logrus.Fields{
			"terminal": fmt.Sprintf("%dx%d", width, height),
			"grid":     layout.Geometry.String(),
		}).Warn("terminal smaller than preview")
	}
	return nil
}

func (t *Terminal) Write(_ context.Context, frame pipeline.Frame) error {
	if t.isTTY {
		if _, err := io.WriteString(t.out, clearScreen); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(t.out, "%s\n\nFrame: %d/%d\nPress Ctrl+C to stop\n", frame.Grid.String(), frame.Index, frame.Total)
	return err
}

func (t *Terminal) Close() error { return nil }
