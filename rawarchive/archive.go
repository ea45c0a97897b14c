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

// Package rawarchive keeps the undecoded frames of a capture run in a
// single sectioned file, so stills can be regenerated later.
//
// The file starts with Magic, Version and a header section of
// go-cptv fields (timestamp, brand, model). Each frame follows as an 'F'
// section holding its fields and then its raw bytes.
package rawarchive

import (
	"bufio"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/TheCacophonyProject/go-cptv"

	"github.com/TheCacophonyProject/depth-recorder/frame"
)

const (
	Magic        = "CPDR"
	Version byte = 0x01

	Ext     = ".depthraw"
	tempExt = ".temp"

	headerSection = 'H'
	frameSection  = 'F'

	writeBufferSize = 4 * 1024 * 1024

	// Frame field keys, in addition to the go-cptv ones.
	Kind        byte = 'k'
	PixelFormat byte = 'p'
	DeviceTime  byte = 'd'
	DepthScale  byte = 's'
)

// Archive appends raw frames to a .depthraw file. The file keeps a .temp
// suffix until Close.
type Archive struct {
	name   string
	file   *os.File
	w      *bufio.Writer
	frames int
}

// FileName returns the archive name for a run started at t.
func FileName(dir string, t time.Time) string {
	return filepath.Join(dir, t.Format("2006_01_02T15_04_05")+Ext)
}

// Create starts a new archive in dir.
func Create(dir string, t time.Time, brand, model string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	name := FileName(dir, t) + tempExt
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	log.Println("writing raw frames to", name)

	a := &Archive{
		name: name,
		file: f,
		w:    bufio.NewWriterSize(f, writeBufferSize),
	}

	fields := cptv.NewFieldWriter()
	fields.Timestamp(cptv.Timestamp, t)
	if err := fields.String(cptv.Brand, brand); err != nil {
		a.abort()
		return nil, err
	}
	if err := fields.String(cptv.Model, model); err != nil {
		a.abort()
		return nil, err
	}
	a.w.WriteString(Magic)
	a.w.WriteByte(Version)
	if err := a.writeSection(headerSection, fields, nil); err != nil {
		a.abort()
		return nil, err
	}
	return a, nil
}

// Archive implements capture.Archiver.
func (a *Archive) Archive(kind frame.Kind, f *frame.RawFrame) error {
	fields := cptv.NewFieldWriter()
	fields.Uint8(Kind, uint8(kind))
	fields.Uint8(PixelFormat, uint8(f.Format))
	fields.Uint32(cptv.XResolution, uint32(f.Width))
	fields.Uint32(cptv.YResolution, uint32(f.Height))
	fields.Uint64(DeviceTime, f.Timestamp)
	fields.Uint32(DepthScale, math.Float32bits(f.Scale))
	fields.Uint32(cptv.FrameSize, uint32(len(f.Data)))
	if err := a.writeSection(frameSection, fields, f.Data); err != nil {
		return err
	}
	a.frames++
	return nil
}

// writeSection writes a section id, its field count and fields, then
// payload. Errors stick in the bufio.Writer so only the last write is
// checked.
func (a *Archive) writeSection(id byte, fields *cptv.FieldWriter, payload []byte) error {
	fieldData, numFields := fields.Bytes()
	a.w.WriteByte(id)
	a.w.WriteByte(byte(numFields))
	a.w.Write(fieldData)
	_, err := a.w.Write(payload)
	return err
}

// Frames returns how many frames have been archived.
func (a *Archive) Frames() int {
	return a.frames
}

// Close flushes the archive and renames it to its final name, which is
// returned.
func (a *Archive) Close() (string, error) {
	if err := a.w.Flush(); err != nil {
		a.file.Close()
		return "", err
	}
	if err := a.file.Close(); err != nil {
		return "", err
	}
	finalName := strings.TrimSuffix(a.name, tempExt)
	if err := os.Rename(a.name, finalName); err != nil {
		return "", fmt.Errorf("failed to rename raw archive: %w", err)
	}
	log.Printf("raw archive complete: %s (%d frames)", finalName, a.frames)
	return finalName, nil
}

func (a *Archive) abort() {
	a.file.Close()
	os.Remove(a.name)
}

// DeleteTempFiles removes archives left unfinished by an earlier run.
func DeleteTempFiles(dir string) error {
	matches, _ := filepath.Glob(filepath.Join(dir, "*"+Ext+tempExt))
	for _, filename := range matches {
		if err := os.Remove(filename); err != nil {
			return err
		}
	}
	return nil
}
