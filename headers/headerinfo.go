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

// Package headers reads and writes the YAML blocks exchanged when a
// camera connects: the camera's description, and the recorder's choice
// of streams. A block is "key: value" lines ended by an empty line.
package headers

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v1"

	"github.com/TheCacophonyProject/depth-recorder/frame"
)

const (
	Brand  = "brand"
	Model  = "model"
	Enable = "enable"
)

// ProfilesKey returns the header key listing the profiles for kind, for
// example "depth-profiles".
func ProfilesKey(kind frame.Kind) string {
	return kind.String() + "-profiles"
}

// HeaderInfo contains the camera description fields sent by a camera
// service.
type HeaderInfo struct {
	brand    string
	model    string
	profiles map[frame.Kind][]frame.Profile
}

// Model returns the camera model.
func (h *HeaderInfo) Model() string {
	return h.model
}

// Brand returns the camera brand.
func (h *HeaderInfo) Brand() string {
	return h.brand
}

// Profiles returns the profiles the camera offers for kind, default first.
func (h *HeaderInfo) Profiles(kind frame.Kind) []frame.Profile {
	return h.profiles[kind]
}

func ReadHeaderInfo(reader *bufio.Reader) (*HeaderInfo, error) {
	h, err := readBlock(reader)
	if err != nil {
		return nil, err
	}

	info := &HeaderInfo{
		brand:    toStr(h[Brand]),
		model:    toStr(h[Model]),
		profiles: make(map[frame.Kind][]frame.Profile),
	}
	for _, kind := range frame.Kinds {
		for _, s := range toStrs(h[ProfilesKey(kind)]) {
			p, err := frame.ParseProfile(kind, s)
			if err != nil {
				return nil, err
			}
			info.profiles[kind] = append(info.profiles[kind], p)
		}
	}
	return info, nil
}

// WriteHeaderInfo sends a camera description. It is the camera side of
// ReadHeaderInfo.
func WriteHeaderInfo(w io.Writer, brand, model string, profiles []frame.Profile) error {
	h := map[string]interface{}{
		Brand: brand,
		Model: model,
	}
	for _, p := range profiles {
		key := ProfilesKey(p.Kind)
		list, _ := h[key].([]string)
		h[key] = append(list, p.String())
	}
	return writeBlock(w, h)
}

// ReadEnable reads the list of streams the recorder enabled.
func ReadEnable(reader *bufio.Reader) ([]frame.Kind, error) {
	h, err := readBlock(reader)
	if err != nil {
		return nil, err
	}
	var kinds []frame.Kind
	for _, s := range toStrs(h[Enable]) {
		kind, err := frame.ParseKind(s)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// WriteEnable tells the camera which streams to send.
func WriteEnable(w io.Writer, kinds []frame.Kind) error {
	names := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		names = append(names, kind.String())
	}
	return writeBlock(w, map[string]interface{}{Enable: names})
}

func readBlock(reader *bufio.Reader) (map[string]interface{}, error) {
	var buf bytes.Buffer
	for {
		line, err := reader.ReadString(byte('\n'))
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		buf.WriteString(line)
	}
	h := make(map[string]interface{})
	if err := yaml.Unmarshal(buf.Bytes(), &h); err != nil {
		return nil, fmt.Errorf("invalid header: %w", err)
	}
	return h, nil
}

func writeBlock(w io.Writer, h map[string]interface{}) error {
	out, err := yaml.Marshal(h)
	if err != nil {
		return err
	}
	_, err = w.Write(append(out, '\n'))
	return err
}

func toStr(v interface{}) string {
	out, ok := v.(string)
	if !ok {
		return ""
	}
	return out
}

func toStrs(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
