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
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/TheCacophonyProject/depth-recorder/fakesource"
	"github.com/TheCacophonyProject/depth-recorder/frame"
)

type Config struct {
	FrameOutput string   `yaml:"frame-output"`
	Sensors     []string `yaml:"sensors"`
	Width       int      `yaml:"width"`
	Height      int      `yaml:"height"`
	FPS         int      `yaml:"fps"`
	ColorFormat string   `yaml:"color-format"`
	IRFormat    string   `yaml:"ir-format"`
}

// Camera returns the settings for the simulated camera.
func (conf *Config) Camera() (fakesource.Config, error) {
	cam := fakesource.Config{
		Width:  conf.Width,
		Height: conf.Height,
		FPS:    conf.FPS,
	}
	for _, name := range conf.Sensors {
		kind, err := frame.ParseKind(name)
		if err != nil {
			return fakesource.Config{}, err
		}
		cam.Sensors = append(cam.Sensors, kind)
	}
	var err error
	if cam.ColorFormat, err = frame.ParseFormat(conf.ColorFormat); err != nil {
		return fakesource.Config{}, err
	}
	if cam.InfraredFormat, err = frame.ParseFormat(conf.IRFormat); err != nil {
		return fakesource.Config{}, err
	}
	return cam, cam.Validate()
}

func defaultConfig() Config {
	return Config{
		FrameOutput: "/var/run/depth-frames",
		Sensors:     []string{"color", "depth", "ir"},
		Width:       640,
		Height:      480,
		FPS:         15,
		ColorFormat: "MJPG",
		IRFormat:    "Y8",
	}
}

func ParseConfigFile(filename string) (*Config, error) {
	buf, err := os.ReadFile(filename)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return ParseConfig(buf)
}

func ParseConfig(buf []byte) (*Config, error) {
	conf := defaultConfig()
	if err := yaml.Unmarshal(buf, &conf); err != nil {
		return nil, err
	}
	if _, err := conf.Camera(); err != nil {
		return nil, err
	}
	return &conf, nil
}
