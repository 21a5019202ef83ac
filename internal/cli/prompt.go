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

// Package cli collects the run parameters, from flags or interactively.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

type Mode int

const (
	ModeText Mode = iota + 1
	ModeVideo
	ModePreview
	ModeWindow
)

func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeVideo:
		return "video"
	case ModePreview:
		return "preview"
	case ModeWindow:
		return "window"
	}
	return "unknown"
}

const (
	DefaultPreviewFrames = 100
	DefaultPreviewDelay  = 50 * time.Millisecond
	// Unset marks numeric flags the user did not pass.
	Unset = -1
)

var (
	ErrFileNotFound  = errors.New("video file does not exist")
	ErrInvalidMode   = errors.New("invalid choice")
	ErrInvalidNumber = errors.New("invalid number")
)

func ParseMode(s string) (Mode, error) {
	switch strings.TrimSpace(s) {
	case "1", "text":
		return ModeText, nil
	case "2", "video":
		return ModeVideo, nil
	case "3", "preview":
		return ModePreview, nil
	case "4", "window":
		return ModeWindow, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Request is everything a run needs from the user. MaxFrames of 0 means
// the whole video.
type Request struct {
	Path      string
	Mode      Mode
	MaxFrames int
	Delay     time.Duration
}

type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints question and returns the trimmed answer with surrounding
// quotes removed, as pasted paths often carry them.
func (p *Prompter) Ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(line), `"`), nil
}

// AskInt returns def for an empty answer.
func (p *Prompter) AskInt(question string, def int) (int, error) {
	answer, err := p.Ask(question)
	if err != nil {
		return 0, err
	}
	return parseCount(answer, def)
}

func parseCount(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return n, nil
}

// checkPreset rejects negative flag values other than Unset.
func checkPreset(req Request) error {
	if req.MaxFrames != Unset {
		if _, err := parseCount(strconv.Itoa(req.MaxFrames), 0); err != nil {
			return err
		}
	}
	if req.Delay != Unset && req.Delay < 0 {
		return fmt.Errorf("%w: delay %s", ErrInvalidNumber, req.Delay)
	}
	return nil
}

// Collect fills whatever preset leaves open by prompting. A preset Mode
// skips the mode-specific questions and applies their defaults instead.
func (p *Prompter) Collect(preset Request) (Request, error) {
	req := preset
	if err := checkPreset(req); err != nil {
		return req, err
	}
	if req.Path == "" {
		path, err := p.Ask("Enter the video file path: ")
		if err != nil {
			return req, err
		}
		req.Path = path
	}
	if _, err := os.Stat(req.Path); req.Path == "" || err != nil {
		return req, fmt.Errorf("%w: %s", ErrFileNotFound, req.Path)
	}

	interactive := req.Mode == 0
	if interactive {
		fmt.Fprint(p.out, "\nSelect output mode:\n"+
			"1. Text file (.txt)\n"+
			"2. ASCII art video (.mp4)\n"+
			"3. Console preview\n"+
			"4. Window player\n")
		answer, err := p.Ask("Enter choice (1/2/3/4): ")
		if err != nil {
			return req, err
		}
		if req.Mode, err = ParseMode(answer); err != nil {
			return req, err
		}
	}

	var err error
	switch req.Mode {
	case ModeText, ModeVideo, ModeWindow:
		if req.MaxFrames == Unset {
			req.MaxFrames = 0
			if interactive {
				req.MaxFrames, err = p.AskInt("Maximum frames (Enter for all): ", 0)
			}
		}
	case ModePreview:
		if req.MaxFrames == Unset {
			req.MaxFrames = DefaultPreviewFrames
			if interactive {
				req.MaxFrames, err = p.AskInt(fmt.Sprintf("Preview frames (default %d): ", DefaultPreviewFrames), DefaultPreviewFrames)
			}
		}
		if err == nil && req.Delay < 0 {
			req.Delay = DefaultPreviewDelay
			if interactive {
				var ms int
				ms, err = p.AskInt(fmt.Sprintf("Frame delay ms (default %d): ", DefaultPreviewDelay.Milliseconds()), int(DefaultPreviewDelay.Milliseconds()))
				req.Delay = time.Duration(ms) * time.Millisecond
			}
		}
	default:
		return req, fmt.Errorf("%w: %d", ErrInvalidMode, req.Mode)
	}
	return req, err
}
