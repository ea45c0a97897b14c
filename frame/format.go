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

// Format is the pixel layout of a frame's raw buffer.
type Format uint8

const (
	Unknown Format = iota
	RGB            // packed 8-bit R, G, B
	BGR            // packed 8-bit B, G, R
	YUYV           // packed 4:2:2, also known as YUY2
	UYVY           // packed 4:2:2
	I420           // planar 4:2:0
	NV12           // semi-planar 4:2:0, interleaved UV
	NV21           // semi-planar 4:2:0, interleaved VU
	MJPG           // one JPEG image per frame
	Y8             // 8-bit single channel
	Y16            // 16-bit little-endian single channel
	Z16            // 16-bit little-endian depth
)

var formatNames = []string{
	Unknown: "UNKNOWN",
	RGB:     "RGB",
	BGR:     "BGR",
	YUYV:    "YUYV",
	UYVY:    "UYVY",
	I420:    "I420",
	NV12:    "NV12",
	NV21:    "NV21",
	MJPG:    "MJPG",
	Y8:      "Y8",
	Y16:     "Y16",
	Z16:     "Z16",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("FORMAT(%d)", uint8(f))
}

// ParseFormat converts a format name such as "MJPG" to a Format.
// "YUY2" and "MJPEG" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "YUY2":
		return YUYV, nil
	case "MJPEG":
		return MJPG, nil
	}
	for i, name := range formatNames {
		if i != int(Unknown) && name == s {
			return Format(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown pixel format %q", s)
}

// BytesPerPixel returns the size of one pixel for packed and single
// channel formats, and 0 for compressed or subsampled planar layouts.
func (f Format) BytesPerPixel() int {
	switch f {
	case RGB, BGR:
		return 3
	case YUYV, UYVY, Y16, Z16:
		return 2
	case Y8:
		return 1
	}
	return 0
}
