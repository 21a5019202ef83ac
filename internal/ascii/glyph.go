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

package ascii

import (
	"errors"
	"fmt"
)

const (
	// DefaultAlphabet runs from darkest to brightest.
	DefaultAlphabet = "@%#*+=-:. "
	// RichAlphabet is a finer ramp, also darkest first.
	RichAlphabet = "$@B%8&WM#*oahkbdpqwmZO0QLCJUYXzcvunxrjft/\\|()1{}[]?-_+~<>i!lI;:,\"^`'. "
)

var ErrShortAlphabet = errors.New("alphabet needs at least two glyphs")

// Alphabet is an ordered, immutable set of glyphs. Index 0 is used for
// luminance 0, the last glyph for luminance 255.
type Alphabet struct {
	glyphs []rune
}

func NewAlphabet(s string) (Alphabet, error) {
	glyphs := []rune(s)
	if len(glyphs) < 2 {
		return Alphabet{}, fmt.Errorf("%w: %q", ErrShortAlphabet, s)
	}
	return Alphabet{glyphs: glyphs}, nil
}

// MustAlphabet is NewAlphabet for package level constants.
func MustAlphabet(s string) Alphabet {
	a, err := NewAlphabet(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Alphabet) Len() int {
	return len(a.glyphs)
}

// Index maps a luminance sample to floor(v/255*(n-1)). Integer arithmetic
// truncates, so boundary values fall on the darker glyph.
func (a Alphabet) Index(v uint8) int {
	return int(v) * (len(a.glyphs) - 1) / 255
}

func (a Alphabet) Glyph(v uint8) rune {
	return a.glyphs[a.Index(v)]
}

func (a Alphabet) String() string {
	return string(a.glyphs)
}
