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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boriwo/vidascii/internal/ascii"
	"github.com/boriwo/vidascii/internal/cli"
	"github.com/boriwo/vidascii/internal/decode"
	"github.com/boriwo/vidascii/internal/pipeline"
	"github.com/boriwo/vidascii/internal/sink"
	"github.com/sirupsen/logrus"
)

var (
	file      = flag.String("file", "", "video file, prompted for when omitted")
	mode      = flag.String("mode", "", "output mode 1/text, 2/video, 3/preview or 4/window, prompted for when omitted")
	maxFrames = flag.Int("max", cli.Unset, "maximum number of frames, 0 for the whole video")
	delay     = flag.Int("delay", cli.Unset, "preview delay between frames in milliseconds")
	output    = flag.String("out", "", "output file, defaults to <video>_ascii.txt or <video>_ascii.mp4")
	fontfile  = flag.String("fontfile", "", "filename of a ttf font, preferably a monospaced one such as Courier")
	alphabet  = flag.String("alphabet", "default", "glyphs from darkest to brightest: default, rich or a literal string")
	debug     = flag.Bool("debug", false, "if set to true some performance data will be printed")
)

func main() {
	flag.Parse()
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	run()
}

// run never exits the process with a failure; problems are reported and
// the program returns.
func run() {
	preset := cli.Request{Path: *file, MaxFrames: *maxFrames, Delay: cli.Unset}
	if *delay != cli.Unset {
		preset.Delay = time.Duration(*delay) * time.Millisecond
	}
	if *mode != "" {
		m, err := cli.ParseMode(*mode)
		if err != nil {
			fmt.Println("Invalid choice!")
			return
		}
		preset.Mode = m
	}

	req, err := cli.NewPrompter(os.Stdin, os.Stdout).Collect(preset)
	switch {
	case errors.Is(err, cli.ErrFileNotFound):
		fmt.Println("Video file does not exist!")
		return
	case errors.Is(err, cli.ErrInvalidMode):
		fmt.Println("Invalid choice!")
		return
	case errors.Is(err, cli.ErrInvalidNumber):
		fmt.Println("Invalid number!")
		return
	case err != nil:
		fmt.Printf("Error during processing: %v\n", err)
		return
	}

	alpha, err := ascii.NewAlphabet(resolveAlphabet(*alphabet))
	if err != nil {
		fmt.Printf("Error during processing: %v\n", err)
		return
	}

	src, err := decode.Open(req.Path)
	if err != nil {
		logrus.WithError(err).Error("cannot open video")
		fmt.Printf("Error during processing: %v\n", err)
		return
	}

	res, err := convert(req, alpha, src)
	switch {
	case errors.Is(err, pipeline.ErrInterrupted):
		fmt.Println("\nPreview stopped")
	case err != nil:
		logrus.WithFields(logrus.Fields{
			"run_id": res.RunID,
			"mode":   req.Mode,
		}).WithError(err).Error("processing failed")
		fmt.Printf("Error during processing: %v\n", err)
	}
}

func convert(req cli.Request, alpha ascii.Alphabet, src *decode.Source) (pipeline.Result, error) {
	opts := pipeline.Options{
		Columns:   ascii.ExportColumns,
		CellSize:  ascii.DefaultCellSize,
		MaxFrames: req.MaxFrames,
		Pacing:    pipeline.Pacing{ProgressEvery: pipeline.DefaultProgressEvery},
	}
	ctx := context.Background()
	planner := ascii.NewPlanner()

	switch req.Mode {
	case cli.ModeText:
		path := outputPath(req.Path, ".txt")
		text := sink.NewText(path)
		res, err := pipeline.NewDriver(text, ascii.NewTransformer(alpha, nil), planner, opts).Run(ctx, src)
		if err == nil {
			fmt.Printf("ASCII text saved to: %s\n", path)
		}
		return res, err

	case cli.ModeVideo:
		path := outputPath(req.Path, ".mp4")
		video := sink.NewVideo(path)
		res, err := pipeline.NewDriver(video, newImageTransformer(alpha), planner, opts).Run(ctx, src)
		if err == nil {
			fmt.Printf("ASCII video saved to: %s\n", path)
		}
		return res, err

	case cli.ModePreview:
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		opts.Columns = ascii.PreviewColumns
		opts.Pacing = pipeline.Pacing{Delay: req.Delay, Cancellable: true}
		terminal := sink.NewTerminal(os.Stdout)
		return pipeline.NewDriver(terminal, ascii.NewTransformer(alpha, nil), planner, opts).Run(ctx, src)

	case cli.ModeWindow:
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		opts.Pacing = pipeline.Pacing{Delay: frameDuration(src.Info().FrameRate), Cancellable: true}
		player := NewPlayer(req.Path)
		driver := pipeline.NewDriver(player, newImageTransformer(alpha), planner, opts)
		return driver.RunForeground(ctx, src, player)
	}
	pipeline.ReleaseSource(src, logrus.WithField("mode", req.Mode))
	return pipeline.Result{}, fmt.Errorf("%w: %d", cli.ErrInvalidMode, req.Mode)
}

func newImageTransformer(alpha ascii.Alphabet) *ascii.Transformer {
	renderer := ascii.NewRenderer(ascii.DefaultCellSize, ascii.DefaultFonts(*fontfile)...)
	logrus.WithField("font", renderer.FontName()).Debug("glyph font resolved")
	return ascii.NewTransformer(alpha, renderer)
}

func outputPath(videoPath, ext string) string {
	if *output != "" {
		return *output
	}
	return sink.OutputPath(videoPath, ext)
}

func resolveAlphabet(name string) string {
	switch name {
	case "", "default":
		return ascii.DefaultAlphabet
	case "rich":
		return ascii.RichAlphabet
	}
	return name
}

// frameDuration is the time between frames at the source rate.
func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		fps = sink.FallbackFPS
	}
	return time.Duration(float64(time.Second) / fps)
}
