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

package capture

import (
	"fmt"
	"strings"

	"github.com/TheCacophonyProject/depth-recorder/frame"
)

// StopRule decides when the capture loop has saved enough.
type StopRule int

const (
	// AllEnabled stops once every enabled stream reaches the target.
	AllEnabled StopRule = iota

	// Legacy requires color and depth (plus infrared if enabled) when
	// color is enabled, or infrared and depth when only infrared is.
	// Depth is required even when it is disabled, and a depth-only
	// capture never stops on its own.
	Legacy
)

var stopRuleNames = map[StopRule]string{
	AllEnabled: "all-enabled",
	Legacy:     "legacy",
}

func (r StopRule) String() string {
	if name, ok := stopRuleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("stop-rule(%d)", int(r))
}

// ParseStopRule converts a configuration name to a StopRule.
func ParseStopRule(s string) (StopRule, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for r, name := range stopRuleNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown stop rule %q", s)
}

// Done reports whether capture should stop given the enabled streams and
// what has been saved so far.
func (r StopRule) Done(avail Availability, counters Counters, target int) bool {
	reached := func(kind frame.Kind) bool {
		return counters.Get(kind) >= target
	}

	switch r {
	case Legacy:
		if avail.Color {
			return reached(frame.Color) && reached(frame.Depth) &&
				(!avail.Infrared || reached(frame.Infrared))
		}
		if avail.Infrared {
			return reached(frame.Infrared) && reached(frame.Depth)
		}
		return false
	default:
		for _, kind := range frame.Kinds {
			if avail.Enabled(kind) && !reached(kind) {
				return false
			}
		}
		return true
	}
}

// Reachable reports whether Done can ever become true for avail.
func (r StopRule) Reachable(avail Availability) bool {
	if r == Legacy {
		return avail.Depth && (avail.Color || avail.Infrared)
	}
	return true
}
