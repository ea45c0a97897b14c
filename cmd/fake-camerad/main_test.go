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
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/depth-recorder/capture"
	"github.com/TheCacophonyProject/depth-recorder/fakesource"
	"github.com/TheCacophonyProject/depth-recorder/frame"
	"github.com/TheCacophonyProject/depth-recorder/socketsource"
)

func TestServeToSocketSource(t *testing.T) {
	recorderConn, cameraConn := net.Pipe()
	defer recorderConn.Close()
	defer cameraConn.Close()

	src, err := fakesource.New(fakesource.Config{
		Sensors:        []frame.Kind{frame.Depth, frame.Infrared},
		Width:          8,
		Height:         6,
		FPS:            200,
		ColorFormat:    frame.RGB,
		InfraredFormat: frame.Y16,
	})
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() {
		served <- serve(context.Background(), cameraConn, src)
	}()

	recorder, err := socketsource.NewSource(recorderConn)
	require.NoError(t, err)
	assert.Equal(t, fakesource.Brand, recorder.Brand())
	assert.Equal(t, fakesource.Model, recorder.Model())

	avail := capture.ResolveStreams(recorder)
	assert.Equal(t, capture.Availability{Depth: true, Infrared: true}, avail)
	require.NoError(t, recorder.Start())

	for i := 0; i < 3; i++ {
		b, err := recorder.Poll(context.Background(), time.Second)
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Nil(t, b.Color)
		require.NotNil(t, b.Depth)
		assert.Equal(t, frame.Z16, b.Depth.Format)
		assert.Len(t, b.Depth.Data, 8*6*2)
		require.NotNil(t, b.Infrared)
		assert.Equal(t, frame.Y16, b.Infrared.Format)
	}

	recorderConn.Close()
	assert.Error(t, <-served)
}
