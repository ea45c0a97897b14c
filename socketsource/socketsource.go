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

// Package socketsource receives frames from a camera daemon over a unix
// socket.
//
// After connecting, the camera sends a YAML header describing itself and
// the profiles it offers (see package headers). The recorder replies with
// the streams it wants. Each bundle then arrives as the byte 'B', a frame
// count byte, and for every frame a little-endian wireHeader followed by
// Size bytes of pixel data.
package socketsource

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"time"

	"github.com/TheCacophonyProject/depth-recorder/frame"
	"github.com/TheCacophonyProject/depth-recorder/headers"
)

const (
	bundleMarker = 'B'
	maxFrameSize = 64 * 1024 * 1024
)

// bundleReadTimeout is how long the rest of a bundle may take once its
// marker has arrived, on top of the poll timeout.
var bundleReadTimeout = 2 * time.Second

type wireHeader struct {
	Kind      uint8
	Format    uint8
	Width     uint16
	Height    uint16
	Timestamp uint64
	Scale     float32
	Size      uint32
}

// Source implements capture.Source for one camera connection.
type Source struct {
	conn    net.Conn
	reader  *bufio.Reader
	header  *headers.HeaderInfo
	enabled map[frame.Kind]bool
	started bool
	bufs    map[frame.Kind][]byte
}

// Listen waits on a unix socket at path for a camera to connect.
func Listen(ctx context.Context, path string) (*Source, error) {
	os.Remove(path)
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	// Only one camera connection is accepted.
	defer listener.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			listener.Close()
		case <-done:
		}
	}()

	log.Print("waiting for camera connection")
	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("socket accept failed: %w", err)
	}
	return NewSource(conn)
}

// NewSource reads the camera header from conn.
func NewSource(conn net.Conn) (*Source, error) {
	reader := bufio.NewReader(conn)
	header, err := headers.ReadHeaderInfo(reader)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read camera header: %w", err)
	}
	log.Printf("connection from %s %s", header.Brand(), header.Model())

	return &Source{
		conn:    conn,
		reader:  reader,
		header:  header,
		enabled: make(map[frame.Kind]bool),
		bufs:    make(map[frame.Kind][]byte),
	}, nil
}

func (s *Source) Brand() string {
	return s.header.Brand()
}

func (s *Source) Model() string {
	return s.header.Model()
}

func (s *Source) Profiles(kind frame.Kind) ([]frame.Profile, error) {
	return s.header.Profiles(kind), nil
}

func (s *Source) Enable(p frame.Profile) error {
	if s.started {
		return errors.New("source already started")
	}
	for _, offered := range s.header.Profiles(p.Kind) {
		if offered == p {
			s.enabled[p.Kind] = true
			return nil
		}
	}
	return fmt.Errorf("%s profile %s not offered by camera", p.Kind, p)
}

// Start tells the camera which streams to send.
func (s *Source) Start() error {
	if s.started {
		return errors.New("source already started")
	}
	var kinds []frame.Kind
	for _, kind := range frame.Kinds {
		if s.enabled[kind] {
			kinds = append(kinds, kind)
		}
	}
	if err := headers.WriteEnable(s.conn, kinds); err != nil {
		return fmt.Errorf("failed to send enabled streams: %w", err)
	}
	s.started = true
	return nil
}

// Poll waits up to timeout for a bundle to start arriving, then allows
// timeout plus bundleReadTimeout to read the rest of it. Cancelling ctx
// unblocks a pending read. A closed connection is reported as io.EOF.
// Frame data is reused by the next Poll.
func (s *Source) Poll(ctx context.Context, timeout time.Duration) (*frame.Bundle, error) {
	if !s.started {
		return nil, errors.New("source not started")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.conn.SetReadDeadline(time.Now())
		case <-done:
		}
	}()

	if err := s.setDeadline(ctx, time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	marker, err := s.reader.ReadByte()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, nil
		}
		return nil, connErr(err)
	}
	if marker != bundleMarker {
		return nil, fmt.Errorf("expected bundle marker, got 0x%02x", marker)
	}

	if err := s.setDeadline(ctx, time.Now().Add(timeout+bundleReadTimeout)); err != nil {
		return nil, err
	}
	bundle, err := s.readBundle()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, fmt.Errorf("camera stalled mid bundle: %w", err)
		}
		return nil, connErr(err)
	}
	return bundle, nil
}

// setDeadline bounds the next reads by deadline, or by ctx's deadline if
// that is sooner. It fails once ctx is done so a deadline set here can't
// replace the one set on cancellation.
func (s *Source) setDeadline(ctx context.Context, deadline time.Time) error {
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return connErr(err)
	}
	return ctx.Err()
}

// connErr reports a connection closed from either end as io.EOF.
func connErr(err error) error {
	if errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
		return io.EOF
	}
	return err
}

func (s *Source) readBundle() (*frame.Bundle, error) {
	count, err := s.reader.ReadByte()
	if err != nil {
		return nil, err
	}

	bundle := new(frame.Bundle)
	for i := 0; i < int(count); i++ {
		var h wireHeader
		if err := binary.Read(s.reader, binary.LittleEndian, &h); err != nil {
			return nil, fmt.Errorf("failed to read frame header: %w", err)
		}
		if h.Size > maxFrameSize {
			return nil, fmt.Errorf("frame of %d bytes exceeds limit", h.Size)
		}
		kind := frame.Kind(h.Kind)
		if int(h.Kind) >= len(frame.Kinds) {
			return nil, fmt.Errorf("unknown frame kind %d", h.Kind)
		}
		if !s.enabled[kind] {
			if _, err := io.CopyN(io.Discard, s.reader, int64(h.Size)); err != nil {
				return nil, err
			}
			continue
		}

		data := s.buffer(kind, int(h.Size))
		if _, err := io.ReadFull(s.reader, data); err != nil {
			return nil, fmt.Errorf("failed to read %s frame: %w", kind, err)
		}
		bundle.Set(kind, &frame.RawFrame{
			Width:     int(h.Width),
			Height:    int(h.Height),
			Timestamp: h.Timestamp,
			Format:    frame.Format(h.Format),
			Data:      data,
			Scale:     h.Scale,
		})
	}
	return bundle, nil
}

func (s *Source) buffer(kind frame.Kind, n int) []byte {
	buf := s.bufs[kind]
	if cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]
	s.bufs[kind] = buf
	return buf
}

func (s *Source) Close() error {
	return s.conn.Close()
}

// WriteBundle sends the frames in b as one bundle. It is the camera side
// of Poll.
func WriteBundle(w io.Writer, b *frame.Bundle) error {
	var buf bytes.Buffer
	var frames []frame.Kind
	for _, kind := range frame.Kinds {
		if b.Get(kind) != nil {
			frames = append(frames, kind)
		}
	}
	buf.WriteByte(bundleMarker)
	buf.WriteByte(uint8(len(frames)))
	for _, kind := range frames {
		f := b.Get(kind)
		h := wireHeader{
			Kind:      uint8(kind),
			Format:    uint8(f.Format),
			Width:     uint16(f.Width),
			Height:    uint16(f.Height),
			Timestamp: f.Timestamp,
			Scale:     f.Scale,
			Size:      uint32(len(f.Data)),
		}
		if err := binary.Write(&buf, binary.LittleEndian, &h); err != nil {
			return err
		}
		buf.Write(f.Data)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
