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

package frame

import (
	"fmt"
	"strings"
)

// Profile is one stream configuration offered by a camera.
type Profile struct {
	Kind   Kind
	Width  int
	Height int
	FPS    int
	Format Format
}

// String formats the profile as "<width>x<height>@<fps> <FORMAT>", the
// form ParseProfile reads back.
func (p Profile) String() string {
	return fmt.Sprintf("%dx%d@%d %s", p.Width, p.Height, p.FPS, p.Format)
}

// ParseProfile parses a profile string for the given kind.
func ParseProfile(kind Kind, s string) (Profile, error) {
	p := Profile{Kind: kind}
	var format string
	n, err := fmt.Sscanf(strings.TrimSpace(s), "%dx%d@%d %s", &p.Width, &p.Height, &p.FPS, &format)
	if err != nil || n != 4 {
		return Profile{}, fmt.Errorf("invalid %s profile %q", kind, s)
	}
	if p.Width <= 0 || p.Height <= 0 || p.FPS <= 0 {
		return Profile{}, fmt.Errorf("invalid %s profile %q", kind, s)
	}
	p.Format, err = ParseFormat(format)
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}
