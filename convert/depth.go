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

package convert

import (
	"encoding/binary"
	"image"

	"github.com/TheCacophonyProject/depth-recorder/frame"
)

// Depth samples outside (MinDepth, MaxDepth) are treated as invalid. The
// bounds apply to the raw stored values, before the frame's scale factor.
const (
	MinDepth = 20
	MaxDepth = 10000
)

// FilterDepth returns v, or 0 if v is not strictly inside
// (MinDepth, MaxDepth).
func FilterDepth(v uint16) uint16 {
	if v <= MinDepth || v >= MaxDepth {
		return 0
	}
	return v
}

// Millimetres filters the raw depth samples and applies the frame's scale.
// A zero scale is treated as 1.
func Millimetres(f *frame.RawFrame) ([]float64, error) {
	if err := checkSize(f, f.Pixels()*2); err != nil {
		return nil, err
	}
	scale := float64(f.Scale)
	if scale == 0 {
		scale = 1
	}
	mm := make([]float64, f.Pixels())
	for i := range mm {
		raw := binary.LittleEndian.Uint16(f.Data[i*2:])
		mm[i] = float64(FilterDepth(raw)) * scale
	}
	return mm, nil
}

// DepthLevels returns the filtered, scaled depth normalised to 0-255: the
// nearest sample maps to 0 and the furthest to 255.
func DepthLevels(f *frame.RawFrame) ([]uint8, error) {
	mm, err := Millimetres(f)
	if err != nil {
		return nil, err
	}
	normalize(mm, 255)
	levels := make([]uint8, len(mm))
	for i, v := range mm {
		levels[i] = roundUint8(v)
	}
	return levels, nil
}

// Depth renders a depth frame through the jet colour map. A nil frame gives
// a nil image and no error.
func Depth(f *frame.RawFrame) (*image.NRGBA, error) {
	if f == nil {
		return nil, nil
	}
	levels, err := DepthLevels(f)
	if err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, v := range levels {
		c := Jet(v)
		img.Pix[i*4+0] = c.R
		img.Pix[i*4+1] = c.G
		img.Pix[i*4+2] = c.B
		img.Pix[i*4+3] = c.A
	}
	return img, nil
}
