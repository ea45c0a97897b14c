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

package rawarchive

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/TheCacophonyProject/go-cptv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/depth-recorder/frame"
)

// readSection reads the field count and fields that follow a section
// marker.
func readSection(t *testing.T, r *bufio.Reader) map[byte][]byte {
	count, err := r.ReadByte()
	require.NoError(t, err)
	fields := make(map[byte][]byte)
	for i := 0; i < int(count); i++ {
		size, err := r.ReadByte()
		require.NoError(t, err)
		code, err := r.ReadByte()
		require.NoError(t, err)
		data := make([]byte, size)
		_, err = io.ReadFull(r, data)
		require.NoError(t, err)
		fields[code] = data
	}
	return fields
}

func TestFileName(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, filepath.Join("out", "2026_03_04T05_06_07.depthraw"), FileName("out", ts))
}

func TestArchive(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	a, err := Create(dir, ts, "intel", "d435")
	require.NoError(t, err)

	depth := &frame.RawFrame{Width: 2, Height: 1, Timestamp: 1234, Format: frame.Z16, Data: []byte{1, 2, 3, 4}, Scale: 0.5}
	ir := &frame.RawFrame{Width: 3, Height: 1, Timestamp: 1235, Format: frame.Y8, Data: []byte{9, 8, 7}}
	require.NoError(t, a.Archive(frame.Depth, depth))
	require.NoError(t, a.Archive(frame.Infrared, ir))
	assert.Equal(t, 2, a.Frames())

	name, err := a.Close()
	require.NoError(t, err)
	assert.Equal(t, FileName(dir, ts), name)
	_, err = os.Stat(name + tempExt)
	assert.True(t, os.IsNotExist(err))

	file, err := os.Open(name)
	require.NoError(t, err)
	defer file.Close()
	r := bufio.NewReader(file)

	head := make([]byte, len(Magic)+2)
	_, err = io.ReadFull(r, head)
	require.NoError(t, err)
	assert.Equal(t, append([]byte(Magic), Version, headerSection), head)

	header := readSection(t, r)
	assert.Equal(t, "intel", string(header[cptv.Brand]))
	assert.Equal(t, "d435", string(header[cptv.Model]))
	assert.Equal(t, uint64(ts.UnixNano()/1000), binary.LittleEndian.Uint64(header[cptv.Timestamp]))

	marker, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(frameSection), marker)
	fields := readSection(t, r)
	assert.Equal(t, []byte{uint8(frame.Depth)}, fields[Kind])
	assert.Equal(t, []byte{uint8(frame.Z16)}, fields[PixelFormat])
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(fields[cptv.XResolution]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(fields[cptv.YResolution]))
	assert.Equal(t, uint64(1234), binary.LittleEndian.Uint64(fields[DeviceTime]))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(fields[DepthScale])))
	size := binary.LittleEndian.Uint32(fields[cptv.FrameSize])
	data := make([]byte, size)
	_, err = io.ReadFull(r, data)
	require.NoError(t, err)
	assert.Equal(t, depth.Data, data)

	marker, err = r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(frameSection), marker)
	fields = readSection(t, r)
	assert.Equal(t, []byte{uint8(frame.Infrared)}, fields[Kind])
	data = make([]byte, binary.LittleEndian.Uint32(fields[cptv.FrameSize]))
	_, err = io.ReadFull(r, data)
	require.NoError(t, err)
	assert.Equal(t, ir.Data, data)

	_, err = r.ReadByte()
	assert.Equal(t, io.EOF, err)
}

func TestDeleteTempFiles(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	a, err := Create(dir, ts, "intel", "d435")
	require.NoError(t, err)
	require.NoError(t, a.file.Close())

	require.NoError(t, DeleteTempFiles(dir))
	matches, _ := filepath.Glob(filepath.Join(dir, "*"))
	assert.Empty(t, matches)
}
