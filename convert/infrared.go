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

// Infrared converts an infrared frame to a grey image stored as RGB. Y8 and
// MJPG frames are stretched over 8 bits; anything else is read as 16-bit
// samples, stretched over 16 bits and reduced to the top 8. A nil frame
// gives a nil image and no error.
func Infrared(f *frame.RawFrame) (*image.NRGBA, error) {
	if f == nil {
		return nil, nil
	}

	var gray *image.Gray
	switch f.Format {
	case frame.Y8:
		if err := checkSize(f, f.Pixels()); err != nil {
			return nil, err
		}
		levels := make([]float64, f.Pixels())
		for i := range levels {
			levels[i] = float64(f.Data[i])
		}
		gray = gray8(f.Width, f.Height, levels)
	case frame.MJPG:
		img, err := decodeMedia(f)
		if err != nil {
			return nil, err
		}
		b := img.Bounds()
		gray = gray8(b.Dx(), b.Dy(), grayLevels(img))
	default:
		if err := checkSize(f, f.Pixels()*2); err != nil {
			return nil, err
		}
		levels := make([]float64, f.Pixels())
		for i := range levels {
			levels[i] = float64(binary.LittleEndian.Uint16(f.Data[i*2:]))
		}
		gray = gray16(f.Width, f.Height, levels)
	}
	return grayToRGB(gray), nil
}

func gray8(width, height int, levels []float64) *image.Gray {
	normalize(levels, 255)
	gray := image.NewGray(image.Rect(0, 0, width, height))
	for i, v := range levels {
		gray.Pix[i] = roundUint8(v)
	}
	return gray
}

func gray16(width, height int, levels []float64) *image.Gray {
	normalize(levels, 65535)
	gray := image.NewGray(image.Rect(0, 0, width, height))
	for i, v := range levels {
		gray.Pix[i] = uint8(roundUint16(v) >> 8)
	}
	return gray
}
