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

package pipeline

import "context"

// Foreground is a sink front end that must own the calling goroutine,
// such as a window event loop.
type Foreground interface {
	// Ready is closed once the sink has been opened.
	Ready() <-chan struct{}
	// Loop blocks until the front end finishes or fails.
	Loop() error
	// Stop makes pending and future sink writes fail with ErrInterrupted.
	Stop()
}

// RunForeground runs the driver in the background while fg.Loop owns the
// calling goroutine. A failing loop is reported ahead of the interruption
// it causes in the driver.
func (d *Driver) RunForeground(ctx context.Context, src Source, fg Foreground) (Result, error) {
	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := d.Run(ctx, src)
		done <- outcome{res, err}
	}()

	select {
	case <-fg.Ready():
	case o := <-done:
		return o.res, o.err
	}
	loopErr := fg.Loop()
	fg.Stop()
	o := <-done
	if loopErr != nil {
		return o.res, loopErr
	}
	return o.res, o.err
}
