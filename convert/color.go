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
	"fmt"
	"image"

	"github.com/TheCacophonyProject/depth-recorder/frame"
)

// Color decodes a colour frame into an RGB image. A nil frame gives a nil
// image and no error.
func Color(f *frame.RawFrame) (*image.NRGBA, error) {
	if f == nil {
		return nil, nil
	}
	switch f.Format {
	case frame.RGB, frame.BGR:
		return decodePacked(f)
	case frame.YUYV, frame.UYVY, frame.I420, frame.NV12, frame.NV21, frame.MJPG:
		return decodeMedia(f)
	}
	return nil, fmt.Errorf("color %s: %w", f.Format, ErrUnsupportedFormat)
}

func decodePacked(f *frame.RawFrame) (*image.NRGBA, error) {
	if err := checkSize(f, requiredBytes(f)); err != nil {
		return nil, err
	}
	r, b := 0, 2
	if f.Format == frame.BGR {
		r, b = 2, 0
	}
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i := 0; i < f.Pixels(); i++ {
		src := f.Data[i*3 : i*3+3]
		dst := img.Pix[i*4 : i*4+4]
		dst[0] = src[r]
		dst[1] = src[1]
		dst[2] = src[b]
		dst[3] = 0xff
	}
	return img, nil
}
