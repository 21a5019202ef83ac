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

// Package pipeline pulls frames from a source, transforms them into
// character art and pushes the result to a sink.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/boriwo/vidascii/internal/ascii"
	"github.com/boriwo/vidascii/internal/media"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultProgressEvery = 30

// Source yields decoded frames in order. Next returns io.EOF when the
// stream is exhausted. The driver calls Release exactly once.
type Source interface {
	Info() media.StreamInfo
	Next() (image.Image, error)
	Release() error
}

type OutputKind int

const (
	KindGrid OutputKind = iota
	KindImage
)

// Layout is handed to a sink before the first frame.
type Layout struct {
	Geometry ascii.Geometry
	CellSize int
}

// Frame is one transformed frame. Grid is set for KindGrid sinks, Image
// for KindImage sinks.
type Frame struct {
	Index int
	Total int
	Grid  ascii.Grid
	Image *image.RGBA
}

type Sink interface {
	Name() string
	Kind() OutputKind
	Open(info media.StreamInfo, layout Layout) error
	Write(ctx context.Context, frame Frame) error
	Close() error
}

// Pacing controls progress reporting, the delay between frames and whether
// the run reacts to context cancellation.
type Pacing struct {
	ProgressEvery int
	Delay         time.Duration
	Cancellable   bool
}

type Options struct {
	Columns   int
	CellSize  int
	MaxFrames int
	Pacing    Pacing
}

type Result struct {
	RunID    string
	State    State
	Frames   int
	Geometry ascii.Geometry
}

type Driver struct {
	opts        Options
	planner     ascii.Planner
	transformer *ascii.Transformer
	sink        Sink
	state       State
}

func NewDriver(sink Sink, transformer *ascii.Transformer, planner ascii.Planner, opts Options) *Driver {
	return &Driver{
		opts:        opts,
		planner:     planner,
		transformer: transformer,
		sink:        sink,
		state:       Idle,
	}
}

func (d *Driver) State() State {
	return d.state
}

// Run drives src to completion. The source is released on every path.
// A cancelled run ends Aborted with ErrInterrupted.
func (d *Driver) Run(ctx context.Context, src Source) (res Result, err error) {
	res.RunID = uuid.NewString()
	log := logrus.WithFields(logrus.Fields{
		"run_id": res.RunID,
		"sink":   d.sink.Name(),
	})
	defer trackTime(time.Now(), "run", log)
	defer func() {
		ReleaseSource(src, log)
		if err != nil {
			d.state = Aborted
		} else {
			d.state = Completed
		}
		res.State = d.state
		log.WithFields(logrus.Fields{
			"state":  d.state,
			"frames": res.Frames,
		}).Info("run finished")
	}()

	d.state = Planning
	info := src.Info()
	geom, err := d.planner.Plan(info.Width, info.Height, d.opts.Columns)
	if err != nil {
		return res, err
	}
	res.Geometry = geom
	log.WithFields(logrus.Fields{
		"source":   fmt.Sprintf("%dx%d", info.Width, info.Height),
		"fps":      fmt.Sprintf("%.2f", info.FrameRate),
		"frames":   info.FrameCount,
		"duration": info.Duration().Round(10 * time.Millisecond).String(),
		"output":   geom.String(),
	}).Info("stream planned")

	layout := Layout{Geometry: geom, CellSize: d.opts.CellSize}
	if err := d.sink.Open(info, layout); err != nil {
		return res, &SinkError{Sink: d.sink.Name(), Op: "open", Err: err}
	}
	d.state = Streaming
	err = d.stream(ctx, src, info, layout, &res, log)
	if cerr := d.sink.Close(); cerr != nil && err == nil {
		err = &SinkError{Sink: d.sink.Name(), Op: "close", Err: cerr}
	}
	return res, err
}

// ReleaseSource releases src, logging a failure instead of returning it.
func ReleaseSource(src Source, log *logrus.Entry) {
	if err := src.Release(); err != nil {
		log.WithError(err).Warn("release source")
	}
}

func (d *Driver) stream(ctx context.Context, src Source, info media.StreamInfo, layout Layout, res *Result, log *logrus.Entry) error {
	total := info.FrameCount
	if limit := d.opts.MaxFrames; limit > 0 && (total <= 0 || limit < total) {
		total = limit
	}
	for index := 0; ; index++ {
		if d.opts.Pacing.Cancellable && ctx.Err() != nil {
			return ErrInterrupted
		}
		if d.opts.MaxFrames > 0 && index >= d.opts.MaxFrames {
			return nil
		}
		img, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &SourceError{Err: err}
		}
		out, err := d.transform(index, img, layout)
		if err != nil {
			return err
		}
		out.Total = total
		if err := d.sink.Write(ctx, out); err != nil {
			if errors.Is(err, ErrInterrupted) {
				return ErrInterrupted
			}
			return &SinkError{Sink: d.sink.Name(), Op: "write", Err: err}
		}
		res.Frames++
		if every := d.opts.Pacing.ProgressEvery; every > 0 && res.Frames%every == 0 {
			log.WithFields(logrus.Fields{
				"frame": res.Frames,
				"total": info.FrameCount,
			}).Infof("processed %d/%d frames", res.Frames, info.FrameCount)
		}
		d.wait(ctx)
	}
}

func (d *Driver) transform(index int, img image.Image, layout Layout) (Frame, error) {
	out := Frame{Index: index}
	var err error
	switch d.sink.Kind() {
	case KindImage:
		out.Image, err = d.transformer.ToImage(img, layout.Geometry, layout.CellSize)
	default:
		out.Grid, err = d.transformer.ToGrid(img, layout.Geometry)
	}
	if err != nil {
		return Frame{}, fmt.Errorf("frame %d: %w", index, err)
	}
	return out, nil
}

// wait sleeps for the configured delay. Cancellable runs wake early and
// notice the cancellation at the top of the next iteration.
func (d *Driver) wait(ctx context.Context) {
	delay := d.opts.Pacing.Delay
	if delay <= 0 {
		return
	}
	if !d.opts.Pacing.Cancellable {
		time.Sleep(delay)
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func trackTime(start time.Time, name string, log *logrus.Entry) {
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		log.Debugf("event=%s duration=%s", name, time.Since(start))
	}
}
