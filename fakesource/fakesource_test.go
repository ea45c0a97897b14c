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

package fakesource

import (
	"context"
	"testing"
	"time"

	"github.com/juju/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/depth-recorder/convert"
	"github.com/TheCacophonyProject/depth-recorder/frame"
)

var _ ratelimit.Clock = new(testClock)

// testClock implements a fake ratelimit.Clock for testing.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

// Sleep advances the clock without blocking.
func (c *testClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
}

func testConfig() Config {
	return Config{
		Sensors:        []frame.Kind{frame.Color, frame.Depth, frame.Infrared},
		Width:          8,
		Height:         10,
		FPS:            10,
		ColorFormat:    frame.RGB,
		InfraredFormat: frame.Y8,
	}
}

func newTestSource(t *testing.T, conf Config) (*Source, *testClock) {
	clock := new(testClock)
	s, err := NewWithClock(conf, clock)
	require.NoError(t, err)
	return s, clock
}

func enableAll(t *testing.T, s *Source) {
	for _, kind := range frame.Kinds {
		profiles, err := s.Profiles(kind)
		require.NoError(t, err)
		require.NoError(t, s.Enable(profiles[0]))
	}
	require.NoError(t, s.Start())
}

func TestValidate(t *testing.T) {
	conf := testConfig()
	assert.NoError(t, conf.Validate())

	conf = testConfig()
	conf.Width = 7
	assert.Error(t, conf.Validate())

	conf = testConfig()
	conf.FPS = 0
	assert.Error(t, conf.Validate())

	conf = testConfig()
	conf.ColorFormat = frame.Y8
	assert.Error(t, conf.Validate())

	conf = testConfig()
	conf.InfraredFormat = frame.RGB
	assert.Error(t, conf.Validate())
}

func TestProfiles(t *testing.T) {
	conf := testConfig()
	conf.Sensors = []frame.Kind{frame.Depth}
	s, _ := newTestSource(t, conf)

	profiles, err := s.Profiles(frame.Depth)
	require.NoError(t, err)
	assert.Equal(t, []frame.Profile{
		{Kind: frame.Depth, Width: 8, Height: 10, FPS: 10, Format: frame.Z16},
		{Kind: frame.Depth, Width: 4, Height: 5, FPS: 10, Format: frame.Z16},
	}, profiles)

	_, err = s.Profiles(frame.Color)
	assert.Error(t, err)
}

func TestEnableRejectsUnofferedProfile(t *testing.T) {
	s, _ := newTestSource(t, testConfig())

	err := s.Enable(frame.Profile{Kind: frame.Color, Width: 1920, Height: 1080, FPS: 30, Format: frame.RGB})
	assert.Error(t, err)
}

func TestPollBeforeStart(t *testing.T) {
	s, _ := newTestSource(t, testConfig())

	_, err := s.Poll(context.Background(), time.Second)
	assert.Error(t, err)
}

func TestPollPacing(t *testing.T) {
	s, clock := newTestSource(t, testConfig())
	enableAll(t, s)
	start := clock.now

	b, err := s.Poll(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, uint64(0), b.Color.Timestamp)

	// The next frame is 100ms away at 10fps.
	b, err = s.Poll(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, b)
	assert.Equal(t, start, clock.now)

	b, err = s.Poll(context.Background(), 200*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, uint64(100), b.Depth.Timestamp)
	assert.Equal(t, start.Add(100*time.Millisecond), clock.now)
}

func TestPollCancelled(t *testing.T) {
	s, _ := newTestSource(t, testConfig())
	enableAll(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Poll(ctx, time.Second)
	assert.Equal(t, context.Canceled, err)
}

func TestOnlyEnabledStreamsDelivered(t *testing.T) {
	s, _ := newTestSource(t, testConfig())
	profiles, err := s.Profiles(frame.Infrared)
	require.NoError(t, err)
	require.NoError(t, s.Enable(profiles[1]))
	require.NoError(t, s.Start())

	b, err := s.Poll(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Nil(t, b.Color)
	assert.Nil(t, b.Depth)
	require.NotNil(t, b.Infrared)
	assert.Equal(t, 4, b.Infrared.Width)
	assert.Equal(t, 5, b.Infrared.Height)
	assert.Len(t, b.Infrared.Data, 20)
}

func TestDepthAtBands(t *testing.T) {
	assert.Equal(t, uint16(0), DepthAt(3, 0, 8, 10, 0))
	assert.Equal(t, uint16(tooFarDepth), DepthAt(3, 9, 8, 10, 0))
	assert.Equal(t, uint16(nearDepth), DepthAt(0, 5, 8, 10, 0))
	assert.Equal(t, uint16(nearDepth+1000+7), DepthAt(1, 5, 8, 10, 7))
}

func TestFramesConvert(t *testing.T) {
	for _, colorFormat := range ColorFormats {
		for _, irFormat := range InfraredFormats {
			conf := testConfig()
			conf.ColorFormat = colorFormat
			conf.InfraredFormat = irFormat
			s, _ := newTestSource(t, conf)
			enableAll(t, s)

			b, err := s.Poll(context.Background(), time.Second)
			require.NoError(t, err)
			require.NotNil(t, b)

			img, err := convert.Color(b.Color)
			require.NoError(t, err, "color %s", colorFormat)
			assert.Equal(t, 8, img.Bounds().Dx())

			_, err = convert.Depth(b.Depth)
			require.NoError(t, err)

			img, err = convert.Infrared(b.Infrared)
			require.NoError(t, err, "ir %s", irFormat)
			assert.Equal(t, 10, img.Bounds().Dy())
		}
	}
}

func TestDepthFrameIsFiltered(t *testing.T) {
	s, _ := newTestSource(t, testConfig())
	enableAll(t, s)

	b, err := s.Poll(context.Background(), time.Second)
	require.NoError(t, err)

	mm, err := convert.Millimetres(b.Depth)
	require.NoError(t, err)
	// Top and bottom rows are out of range.
	for x := 0; x < 8; x++ {
		assert.Equal(t, 0.0, mm[x])
		assert.Equal(t, 0.0, mm[9*8+x])
	}
	assert.Equal(t, float64(nearDepth), mm[5*8])
}
