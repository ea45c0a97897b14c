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

package headers

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/depth-recorder/frame"
)

func TestReadHeaderInfo(t *testing.T) {
	input := `brand: intel
model: d435
color-profiles:
- 1280x720@30 YUYV
- 640x480@30 RGB
depth-profiles: ["848x480@30 Z16"]

ignored: true
`
	reader := bufio.NewReader(strings.NewReader(input))
	h, err := ReadHeaderInfo(reader)
	require.NoError(t, err)

	assert.Equal(t, "intel", h.Brand())
	assert.Equal(t, "d435", h.Model())
	assert.Equal(t, []frame.Profile{
		{Kind: frame.Color, Width: 1280, Height: 720, FPS: 30, Format: frame.YUYV},
		{Kind: frame.Color, Width: 640, Height: 480, FPS: 30, Format: frame.RGB},
	}, h.Profiles(frame.Color))
	assert.Equal(t, []frame.Profile{
		{Kind: frame.Depth, Width: 848, Height: 480, FPS: 30, Format: frame.Z16},
	}, h.Profiles(frame.Depth))
	assert.Empty(t, h.Profiles(frame.Infrared))

	// The reader is left at the end of the header.
	rest, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "ignored: true\n", rest)
}

func TestReadHeaderInfoBadProfile(t *testing.T) {
	input := "brand: intel\nir-profiles: [\"wide Y8\"]\n\n"
	_, err := ReadHeaderInfo(bufio.NewReader(strings.NewReader(input)))
	assert.Error(t, err)
}

func TestReadHeaderInfoUnterminated(t *testing.T) {
	_, err := ReadHeaderInfo(bufio.NewReader(strings.NewReader("brand: intel\n")))
	assert.Error(t, err)
}

func TestWriteHeaderInfo(t *testing.T) {
	profiles := []frame.Profile{
		{Kind: frame.Infrared, Width: 640, Height: 400, FPS: 15, Format: frame.Y8},
		{Kind: frame.Depth, Width: 640, Height: 400, FPS: 15, Format: frame.Z16},
		{Kind: frame.Infrared, Width: 320, Height: 200, FPS: 15, Format: frame.Y16},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteHeaderInfo(&buf, "cacophony", "fake", profiles))
	assert.True(t, strings.HasSuffix(buf.String(), "\n\n"))

	h, err := ReadHeaderInfo(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, "cacophony", h.Brand())
	assert.Equal(t, "fake", h.Model())
	assert.Equal(t, profiles[1:2], h.Profiles(frame.Depth))
	assert.Equal(t, []frame.Profile{profiles[0], profiles[2]}, h.Profiles(frame.Infrared))
	assert.Empty(t, h.Profiles(frame.Color))
}

func TestEnable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEnable(&buf, []frame.Kind{frame.Color, frame.Infrared}))

	kinds, err := ReadEnable(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, []frame.Kind{frame.Color, frame.Infrared}, kinds)
}

func TestEnableNone(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEnable(&buf, nil))

	kinds, err := ReadEnable(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Empty(t, kinds)
}
