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
	"errors"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/TheCacophonyProject/depth-recorder/capture"
	"github.com/TheCacophonyProject/depth-recorder/fakesource"
	"github.com/TheCacophonyProject/depth-recorder/frame"
)

const (
	sourceFake   = "fake"
	sourceSocket = "socket"
)

type Config struct {
	OutputDir   string        `yaml:"output-dir"`
	PollTimeout time.Duration `yaml:"poll-timeout"`
	StopRule    string        `yaml:"stop-rule"`
	RawArchive  bool          `yaml:"raw-archive"`
	DBus        bool          `yaml:"dbus"`
	Source      SourceConfig  `yaml:"source"`
	Fake        FakeConfig    `yaml:"fake"`
}

type SourceConfig struct {
	Type       string `yaml:"type"`
	FrameInput string `yaml:"frame-input"`
}

type FakeConfig struct {
	Sensors     []string `yaml:"sensors"`
	Width       int      `yaml:"width"`
	Height      int      `yaml:"height"`
	FPS         int      `yaml:"fps"`
	ColorFormat string   `yaml:"color-format"`
	IRFormat    string   `yaml:"ir-format"`
}

// Camera converts the fake camera settings for fakesource.
func (c FakeConfig) Camera() (fakesource.Config, error) {
	conf := fakesource.Config{
		Width:  c.Width,
		Height: c.Height,
		FPS:    c.FPS,
	}
	for _, name := range c.Sensors {
		kind, err := frame.ParseKind(name)
		if err != nil {
			return fakesource.Config{}, err
		}
		conf.Sensors = append(conf.Sensors, kind)
	}
	var err error
	if conf.ColorFormat, err = frame.ParseFormat(c.ColorFormat); err != nil {
		return fakesource.Config{}, err
	}
	if conf.InfraredFormat, err = frame.ParseFormat(c.IRFormat); err != nil {
		return fakesource.Config{}, err
	}
	if err := conf.Validate(); err != nil {
		return fakesource.Config{}, fmt.Errorf("fake camera: %w", err)
	}
	return conf, nil
}

func (conf *Config) Rule() capture.StopRule {
	rule, _ := capture.ParseStopRule(conf.StopRule)
	return rule
}

func (conf *Config) Validate() error {
	if conf.OutputDir == "" {
		return errors.New("output-dir must be set")
	}
	if conf.PollTimeout <= 0 {
		return fmt.Errorf("poll-timeout must be positive, got %s", conf.PollTimeout)
	}
	if _, err := capture.ParseStopRule(conf.StopRule); err != nil {
		return err
	}

	switch conf.Source.Type {
	case sourceFake:
		if _, err := conf.Fake.Camera(); err != nil {
			return err
		}
	case sourceSocket:
		if conf.Source.FrameInput == "" {
			return errors.New("frame-input must be set for a socket source")
		}
	default:
		return fmt.Errorf("unknown source type %q", conf.Source.Type)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		OutputDir:   ".",
		PollTimeout: capture.DefaultPollTimeout,
		StopRule:    capture.AllEnabled.String(),
		Source: SourceConfig{
			Type:       sourceFake,
			FrameInput: "/var/run/depth-frames",
		},
		Fake: FakeConfig{
			Sensors:     []string{"color", "depth", "ir"},
			Width:       640,
			Height:      480,
			FPS:         30,
			ColorFormat: "RGB",
			IRFormat:    "Y8",
		},
	}
}

// ParseConfigFile reads filename. If missingOK is set, a file that doesn't
// exist gives the defaults.
func ParseConfigFile(filename string, missingOK bool) (*Config, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		if !(missingOK && os.IsNotExist(err)) {
			return nil, err
		}
	}
	return ParseConfig(buf)
}

func ParseConfig(buf []byte) (*Config, error) {
	conf := defaultConfig()
	if err := yaml.Unmarshal(buf, &conf); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}
