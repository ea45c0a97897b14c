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

// Package capture drives a depth camera: it enables whatever streams the
// camera offers, then polls bundles of frames and saves a fixed number of
// stills per stream.
package capture

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/TheCacophonyProject/depth-recorder/frame"
)

// Source is the boundary to the camera. Frames returned by Poll are only
// valid until the next call to Poll.
type Source interface {
	// Profiles lists the stream configurations available for kind. The
	// first one is the camera default.
	Profiles(kind frame.Kind) ([]frame.Profile, error)
	Enable(p frame.Profile) error
	Start() error
	// Poll waits at most timeout for the next bundle. A nil bundle with a
	// nil error means nothing arrived in time.
	Poll(ctx context.Context, timeout time.Duration) (*frame.Bundle, error)
	Close() error
}

// Availability records which streams were enabled before capture started.
type Availability struct {
	Color    bool
	Depth    bool
	Infrared bool
}

func (a Availability) Enabled(kind frame.Kind) bool {
	switch kind {
	case frame.Color:
		return a.Color
	case frame.Depth:
		return a.Depth
	case frame.Infrared:
		return a.Infrared
	}
	return false
}

func (a *Availability) set(kind frame.Kind) {
	switch kind {
	case frame.Color:
		a.Color = true
	case frame.Depth:
		a.Depth = true
	case frame.Infrared:
		a.Infrared = true
	}
}

// Any reports whether at least one stream is enabled.
func (a Availability) Any() bool {
	return a.Color || a.Depth || a.Infrared
}

func (a Availability) String() string {
	var names []string
	for _, kind := range frame.Kinds {
		if a.Enabled(kind) {
			names = append(names, kind.String())
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

// ResolveStreams enables the default profile of every stream the source
// offers. A stream that can't be listed or enabled is logged and left
// disabled; this never fails outright.
func ResolveStreams(src Source) Availability {
	var avail Availability
	for _, kind := range frame.Kinds {
		profiles, err := src.Profiles(kind)
		if err != nil {
			log.Printf("%s stream unavailable: %v", kind, err)
			continue
		}
		if len(profiles) == 0 {
			log.Printf("%s stream unavailable: no profiles", kind)
			continue
		}
		p := profiles[0]
		if err := src.Enable(p); err != nil {
			log.Printf("failed to enable %s stream (%s): %v", kind, p, err)
			continue
		}
		log.Printf("enabled %s stream: %s", kind, p)
		avail.set(kind)
	}
	return avail
}
