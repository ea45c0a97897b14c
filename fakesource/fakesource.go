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

// Package fakesource is a camera stand-in that produces synthetic color,
// depth and infrared frames at a fixed rate.
package fakesource

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/disintegration/imaging"
	"github.com/juju/ratelimit"

	"github.com/TheCacophonyProject/depth-recorder/frame"
)

const (
	Brand = "cacophony"
	Model = "fake-depth"

	jpegQuality = 80
	nearDepth   = 500
	farDepth    = 8500
	// Written to the bottom band so the depth filter has something to drop.
	tooFarDepth = 12000
)

var (
	ColorFormats    = []frame.Format{frame.RGB, frame.BGR, frame.YUYV, frame.MJPG}
	InfraredFormats = []frame.Format{frame.Y8, frame.Y16, frame.MJPG}
)

// Config describes the camera being imitated.
type Config struct {
	Sensors        []frame.Kind
	Width          int
	Height         int
	FPS            int
	ColorFormat    frame.Format
	InfraredFormat frame.Format
}

func (conf *Config) Validate() error {
	if conf.Width <= 0 || conf.Height <= 0 {
		return fmt.Errorf("invalid resolution %dx%d", conf.Width, conf.Height)
	}
	if conf.Width%2 != 0 {
		return fmt.Errorf("width must be even, got %d", conf.Width)
	}
	if conf.FPS <= 0 {
		return fmt.Errorf("invalid fps %d", conf.FPS)
	}
	if !containsFormat(ColorFormats, conf.ColorFormat) {
		return fmt.Errorf("unsupported color format %s", conf.ColorFormat)
	}
	if !containsFormat(InfraredFormats, conf.InfraredFormat) {
		return fmt.Errorf("unsupported ir format %s", conf.InfraredFormat)
	}
	return nil
}

func containsFormat(formats []frame.Format, f frame.Format) bool {
	for _, x := range formats {
		if x == f {
			return true
		}
	}
	return false
}

// Source implements capture.Source with generated frames.
type Source struct {
	conf    Config
	clock   ratelimit.Clock
	bucket  *ratelimit.Bucket
	enabled map[frame.Kind]frame.Profile
	start   time.Time
	count   int
	bufs    map[frame.Kind][]byte
}

// New returns a Source paced by the wall clock.
func New(conf Config) (*Source, error) {
	return NewWithClock(conf, new(realClock))
}

// NewWithClock returns a Source whose frame pacing follows clock.
func NewWithClock(conf Config, clock ratelimit.Clock) (*Source, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &Source{
		conf:    conf,
		clock:   clock,
		enabled: make(map[frame.Kind]frame.Profile),
		bufs:    make(map[frame.Kind][]byte),
	}, nil
}

func (s *Source) Brand() string {
	return Brand
}

func (s *Source) Model() string {
	return Model
}

func (s *Source) hasSensor(kind frame.Kind) bool {
	for _, k := range s.conf.Sensors {
		if k == kind {
			return true
		}
	}
	return false
}

func (s *Source) format(kind frame.Kind) frame.Format {
	switch kind {
	case frame.Color:
		return s.conf.ColorFormat
	case frame.Infrared:
		return s.conf.InfraredFormat
	}
	return frame.Z16
}

// Profiles offers the configured resolution first, then half of it.
func (s *Source) Profiles(kind frame.Kind) ([]frame.Profile, error) {
	if !s.hasSensor(kind) {
		return nil, fmt.Errorf("no %s sensor", kind)
	}
	full := frame.Profile{
		Kind:   kind,
		Width:  s.conf.Width,
		Height: s.conf.Height,
		FPS:    s.conf.FPS,
		Format: s.format(kind),
	}
	profiles := []frame.Profile{full}
	if half := full; s.conf.Width >= 4 && s.conf.Height >= 2 {
		half.Width = (s.conf.Width / 4) * 2
		half.Height = s.conf.Height / 2
		profiles = append(profiles, half)
	}
	return profiles, nil
}

func (s *Source) Enable(p frame.Profile) error {
	if s.bucket != nil {
		return errors.New("source already started")
	}
	profiles, err := s.Profiles(p.Kind)
	if err != nil {
		return err
	}
	for _, offered := range profiles {
		if offered == p {
			s.enabled[p.Kind] = p
			return nil
		}
	}
	return fmt.Errorf("%s profile %s not offered", p.Kind, p)
}

func (s *Source) Start() error {
	if s.bucket != nil {
		return errors.New("source already started")
	}
	s.start = s.clock.Now()
	s.bucket = ratelimit.NewBucketWithRateAndClock(float64(s.conf.FPS), 1, s.clock)
	return nil
}

// Poll returns the next bundle, or nil if the next frame isn't due within
// timeout.
func (s *Source) Poll(ctx context.Context, timeout time.Duration) (*frame.Bundle, error) {
	if s.bucket == nil {
		return nil, errors.New("source not started")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.bucket.WaitMaxDuration(1, timeout) {
		return nil, nil
	}

	ts := uint64(s.clock.Now().Sub(s.start) / time.Millisecond)
	bundle := new(frame.Bundle)
	for _, kind := range frame.Kinds {
		p, ok := s.enabled[kind]
		if !ok {
			continue
		}
		f, err := s.makeFrame(p, ts)
		if err != nil {
			return nil, err
		}
		bundle.Set(kind, f)
	}
	s.count++
	return bundle, nil
}

func (s *Source) Close() error {
	s.bucket = nil
	return nil
}

func (s *Source) makeFrame(p frame.Profile, ts uint64) (*frame.RawFrame, error) {
	f := &frame.RawFrame{
		Width:     p.Width,
		Height:    p.Height,
		Timestamp: ts,
		Format:    p.Format,
		Scale:     1,
	}

	var err error
	switch p.Kind {
	case frame.Color:
		f.Data, err = s.colorData(p)
	case frame.Depth:
		f.Data = s.depthData(p)
	case frame.Infrared:
		f.Data, err = s.infraredData(p)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// buffer returns the reusable buffer for kind resized to n bytes.
func (s *Source) buffer(kind frame.Kind, n int) []byte {
	buf := s.bufs[kind]
	if cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]
	s.bufs[kind] = buf
	return buf
}

// colorImage is a pair of gradients that drift one pixel per frame.
func (s *Source) colorImage(p frame.Profile) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x*255/p.Width + s.count),
				G: uint8(y*255/p.Height + s.count),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func (s *Source) colorData(p frame.Profile) ([]byte, error) {
	img := s.colorImage(p)
	switch p.Format {
	case frame.MJPG:
		return encodeJPEG(img)
	case frame.YUYV:
		buf := s.buffer(frame.Color, p.Width*p.Height*2)
		for i := 0; i < p.Width*p.Height; i += 2 {
			c0 := img.Pix[i*4 : i*4+3]
			c1 := img.Pix[(i+1)*4 : (i+1)*4+3]
			y0, cb, cr := color.RGBToYCbCr(c0[0], c0[1], c0[2])
			y1, _, _ := color.RGBToYCbCr(c1[0], c1[1], c1[2])
			copy(buf[i*2:], []byte{y0, cb, y1, cr})
		}
		return buf, nil
	}

	buf := s.buffer(frame.Color, p.Width*p.Height*3)
	for i := 0; i < p.Width*p.Height; i++ {
		r, g, b := img.Pix[i*4], img.Pix[i*4+1], img.Pix[i*4+2]
		if p.Format == frame.BGR {
			r, b = b, r
		}
		copy(buf[i*3:], []byte{r, g, b})
	}
	return buf, nil
}

// DepthAt returns the synthetic depth sample at x, y for frame n: a left to
// right ramp with an invalid band at the top and a too-far band at the
// bottom.
func DepthAt(x, y, width, height, n int) uint16 {
	band := height / 10
	switch {
	case y < band:
		return 0
	case y >= height-band:
		return tooFarDepth
	}
	return uint16(nearDepth + x*(farDepth-nearDepth)/width + n%100)
}

func (s *Source) depthData(p frame.Profile) []byte {
	buf := s.buffer(frame.Depth, p.Width*p.Height*2)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			i := (y*p.Width + x) * 2
			binary.LittleEndian.PutUint16(buf[i:], DepthAt(x, y, p.Width, p.Height, s.count))
		}
	}
	return buf
}

func (s *Source) infraredData(p frame.Profile) ([]byte, error) {
	level := func(x, y int) int {
		return (x + y + s.count) % 256
	}

	switch p.Format {
	case frame.MJPG:
		img := image.NewGray(image.Rect(0, 0, p.Width, p.Height))
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				img.SetGray(x, y, color.Gray{Y: uint8(level(x, y))})
			}
		}
		return encodeJPEG(img)
	case frame.Y16:
		buf := s.buffer(frame.Infrared, p.Width*p.Height*2)
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				binary.LittleEndian.PutUint16(buf[(y*p.Width+x)*2:], uint16(level(x, y)*16))
			}
		}
		return buf, nil
	}

	buf := s.buffer(frame.Infrared, p.Width*p.Height)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			buf[y*p.Width+x] = uint8(level(x, y))
		}
	}
	return buf, nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
