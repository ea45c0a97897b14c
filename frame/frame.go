// depth-recorder - capture color, depth and infrared stills from a depth camera
//  Copyright (C) 2026, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package frame describes the raw sensor samples handed out by a depth
// camera: which stream they came from, how their pixels are laid out and
// the stream profiles a camera offers.
package frame

import (
	"fmt"
	"strings"
)

// Kind identifies one of the camera streams.
type Kind uint8

const (
	Color Kind = iota
	Depth
	Infrared
)

// Kinds lists every stream kind in processing order.
var Kinds = []Kind{Color, Depth, Infrared}

var kindNames = map[Kind]string{
	Color:    "color",
	Depth:    "depth",
	Infrared: "ir",
}

// String returns the short name used for directories and file names.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind converts a stream name ("color", "depth" or "ir") to a Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "infrared" {
		return Infrared, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown stream kind %q", s)
}

// RawFrame is one undecoded sensor sample. Frames returned by a source
// borrow the source's buffers and are only valid until the next poll;
// use Clone to keep one longer.
type RawFrame struct {
	Width     int
	Height    int
	Timestamp uint64 // device time in milliseconds
	Format    Format
	Data      []byte
	// Scale converts stored depth units to millimetres. Only meaningful
	// for depth frames.
	Scale float32
}

// Clone returns a copy of the frame that owns its pixel data.
func (f *RawFrame) Clone() *RawFrame {
	if f == nil {
		return nil
	}
	c := *f
	c.Data = append([]byte(nil), f.Data...)
	return &c
}

// Pixels returns the number of pixels described by the frame dimensions.
func (f *RawFrame) Pixels() int {
	return f.Width * f.Height
}

// Bundle holds whatever frames arrived together in one poll. A nil entry
// means that stream produced nothing this cycle.
type Bundle struct {
	Color    *RawFrame
	Depth    *RawFrame
	Infrared *RawFrame
}

// Get returns the frame for kind, or nil.
func (b *Bundle) Get(kind Kind) *RawFrame {
	if b == nil {
		return nil
	}
	switch kind {
	case Color:
		return b.Color
	case Depth:
		return b.Depth
	case Infrared:
		return b.Infrared
	}
	return nil
}

// Set stores f as the frame for kind.
func (b *Bundle) Set(kind Kind, f *RawFrame) {
	switch kind {
	case Color:
		b.Color = f
	case Depth:
		b.Depth = f
	case Infrared:
		b.Infrared = f
	}
}

// Empty reports whether the bundle carries no frames at all.
func (b *Bundle) Empty() bool {
	return b == nil || (b.Color == nil && b.Depth == nil && b.Infrared == nil)
}
