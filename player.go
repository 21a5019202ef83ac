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
	"fmt"
	"image"
	"path/filepath"
	"sync"
	"time"

	"github.com/boriwo/vidascii/internal/media"
	"github.com/boriwo/vidascii/internal/pipeline"
	"github.com/hajimehoshi/ebiten"
)

var errPlaybackDone = errors.New("playback done")

// Player is a pipeline sink that shows rendered glyph frames in a window.
// The driver pushes frames from its own goroutine; Update pulls them on
// the ebiten thread.
type Player struct {
	title                  string
	frames                 chan *image.RGBA
	ready                  chan struct{}
	quit                   chan struct{}
	stopOnce               sync.Once
	closeOnce              sync.Once
	videoSprite            *ebiten.Image
	width                  int
	height                 int
	videoTotalFramesPlayed int
	videoPlaybackFPS       int
	perSecond              <-chan time.Time
}

func NewPlayer(videoPath string) *Player {
	return &Player{
		title:  fmt.Sprintf("%s | ASCII", filepath.Base(videoPath)),
		frames: make(chan *image.RGBA, 1),
		ready:  make(chan struct{}),
		quit:   make(chan struct{}),
	}
}

func (player *Player) Name() string { return "window" }

func (player *Player) Kind() pipeline.OutputKind { return pipeline.KindImage }

func (player *Player) Open(_ media.StreamInfo, layout pipeline.Layout) error {
	player.width, player.height = layout.Geometry.Canvas(layout.CellSize)
	player.perSecond = time.Tick(time.Second)
	close(player.ready)
	return nil
}

func (player *Player) Write(ctx context.Context, frame pipeline.Frame) error {
	select {
	case player.frames <- frame.Image:
		return nil
	case <-player.quit:
		return pipeline.ErrInterrupted
	case <-ctx.Done():
		return pipeline.ErrInterrupted
	}
}

func (player *Player) Close() error {
	player.closeOnce.Do(func() { close(player.frames) })
	return nil
}

// Ready is closed once the window size is known.
func (player *Player) Ready() <-chan struct{} {
	return player.ready
}

// Stop makes pending and future writes fail with ErrInterrupted. A closed
// window stops the driver like an interrupt does.
func (player *Player) Stop() {
	player.stopOnce.Do(func() { close(player.quit) })
}

// Loop opens the window and runs the game until playback ends or the
// window is closed.
func (player *Player) Loop() error {
	ebiten.SetWindowSize(player.width, player.height)
	ebiten.SetWindowTitle(player.title)
	if err := ebiten.RunGame(player); err != nil && !errors.Is(err, errPlaybackDone) {
		return err
	}
	return nil
}

func (player *Player) Update(screen *ebiten.Image) error {
	if player.videoSprite == nil {
		sprite, err := ebiten.NewImage(player.width, player.height, ebiten.FilterDefault)
		if err != nil {
			return err
		}
		player.videoSprite = sprite
	}
	select {
	case frame, ok := <-player.frames:
		if !ok {
			return errPlaybackDone
		}
		if err := player.videoSprite.ReplacePixels(frame.Pix); err != nil {
			return err
		}
		player.videoTotalFramesPlayed++
		player.videoPlaybackFPS++
	default:
	}
	if err := screen.DrawImage(player.videoSprite, &ebiten.DrawImageOptions{}); err != nil {
		return err
	}
	select {
	case <-player.perSecond:
		ebiten.SetWindowTitle(fmt.Sprintf("%s | Frames: %d | Video FPS: %d",
			player.title, player.videoTotalFramesPlayed, player.videoPlaybackFPS))
		player.videoPlaybackFPS = 0
	default:
	}
	return nil
}

func (player *Player) Layout(_, _ int) (int, int) {
	return player.width, player.height
}
