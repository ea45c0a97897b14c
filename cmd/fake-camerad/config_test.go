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

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/depth-recorder/frame"
)

func TestAllDefaults(t *testing.T) {
	conf, err := ParseConfig([]byte(""))
	require.NoError(t, err)

	assert.Equal(t, Config{
		FrameOutput: "/var/run/depth-frames",
		Sensors:     []string{"color", "depth", "ir"},
		Width:       640,
		Height:      480,
		FPS:         15,
		ColorFormat: "MJPG",
		IRFormat:    "Y8",
	}, *conf)
}

func TestCamera(t *testing.T) {
	conf, err := ParseConfig([]byte("sensors: [ir]\nir-format: MJPEG\nfps: 5\n"))
	require.NoError(t, err)

	cam, err := conf.Camera()
	require.NoError(t, err)
	assert.Equal(t, []frame.Kind{frame.Infrared}, cam.Sensors)
	assert.Equal(t, frame.MJPG, cam.InfraredFormat)
	assert.Equal(t, 5, cam.FPS)
}

func TestInvalidConfig(t *testing.T) {
	_, err := ParseConfig([]byte("fps: -1"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("sensors: [sonar]"))
	assert.Error(t, err)
}
