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

// Package convert turns raw camera frames into 8-bit RGB images that are
// ready to be encoded. The converters are pure: they never touch the
// filesystem and never keep a reference to the frame they were given.
package convert

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	mdframe "github.com/pion/mediadevices/pkg/frame"
	"gonum.org/v1/gonum/floats"

	"github.com/TheCacophonyProject/depth-recorder/frame"
)

var (
	// ErrUnsupportedFormat is returned for pixel formats a converter
	// cannot handle.
	ErrUnsupportedFormat = errors.New("unsupported pixel format")

	// ErrShortBuffer is returned when a frame holds fewer bytes than its
	// dimensions and format require.
	ErrShortBuffer = errors.New("frame buffer shorter than its dimensions")
)

var mediaFormats = map[frame.Format]mdframe.Format{
	frame.YUYV: mdframe.FormatYUY2,
	frame.UYVY: mdframe.FormatUYVY,
	frame.I420: mdframe.FormatI420,
	frame.NV12: mdframe.FormatNV12,
	frame.NV21: mdframe.FormatNV21,
	frame.MJPG: mdframe.FormatMJPEG,
}

// requiredBytes returns the minimum buffer size for f. Compressed frames
// only need to be non-empty.
func requiredBytes(f *frame.RawFrame) int {
	switch f.Format {
	case frame.MJPG:
		return 1
	case frame.I420, frame.NV12, frame.NV21:
		return f.Pixels() + 2*(f.Pixels()/4)
	}
	return f.Pixels() * f.Format.BytesPerPixel()
}

func checkSize(f *frame.RawFrame, need int) error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", f.Width, f.Height)
	}
	if len(f.Data) < need {
		return fmt.Errorf("%s %dx%d needs %d bytes, got %d: %w",
			f.Format, f.Width, f.Height, need, len(f.Data), ErrShortBuffer)
	}
	return nil
}

// decodeMedia decodes the YUV and JPEG family formats. The returned image
// is a private copy so the decoder's buffers can be released straight away.
func decodeMedia(f *frame.RawFrame) (*image.NRGBA, error) {
	mf, ok := mediaFormats[f.Format]
	if !ok {
		return nil, fmt.Errorf("%s: %w", f.Format, ErrUnsupportedFormat)
	}
	if err := checkSize(f, requiredBytes(f)); err != nil {
		return nil, err
	}
	decoder, err := mdframe.NewDecoder(mf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Format, ErrUnsupportedFormat)
	}
	img, release, err := decoder.Decode(f.Data, f.Width, f.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s frame: %w", f.Format, err)
	}
	if release != nil {
		defer release()
	}
	// A JPEG may carry its own dimensions; the frame header's win.
	if b := img.Bounds(); b.Dx() != f.Width || b.Dy() != f.Height {
		return imaging.Resize(img, f.Width, f.Height, imaging.NearestNeighbor), nil
	}
	return imaging.Clone(img), nil
}

// normalize rescales values in place so the smallest maps to 0 and the
// largest to top. A uniform slice becomes all zeros.
func normalize(values []float64, top float64) {
	if len(values) == 0 {
		return
	}
	lo, hi := floats.Min(values), floats.Max(values)
	span := hi - lo
	if span == 0 {
		for i := range values {
			values[i] = 0
		}
		return
	}
	floats.AddConst(-lo, values)
	floats.Scale(top/span, values)
}

func roundUint8(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

func roundUint16(v float64) uint16 {
	return uint16(math.Max(0, math.Min(math.MaxUint16, math.Round(v))))
}

// grayToRGB replicates a single channel into three equal colour channels.
func grayToRGB(gray *image.Gray) *image.NRGBA {
	return imaging.Clone(gray)
}

// grayLevels reduces any decoded image to one 8-bit channel per pixel.
func grayLevels(img image.Image) []float64 {
	b := img.Bounds()
	levels := make([]float64, 0, b.Dx()*b.Dy())
	if g, ok := img.(*image.Gray); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := g.Pix[g.PixOffset(b.Min.X, y):g.PixOffset(b.Max.X, y)]
			for _, v := range row {
				levels = append(levels, float64(v))
			}
		}
		return levels
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			levels = append(levels, float64(color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y))
		}
	}
	return levels
}
