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

// fake-camerad streams synthetic depth camera frames to depth-recorder's
// frame socket, standing in for a real camera daemon.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"time"

	arg "github.com/alexflint/go-arg"
	"github.com/coreos/go-systemd/daemon"

	"github.com/TheCacophonyProject/depth-recorder/fakesource"
	"github.com/TheCacophonyProject/depth-recorder/frame"
	"github.com/TheCacophonyProject/depth-recorder/headers"
	"github.com/TheCacophonyProject/depth-recorder/socketsource"
)

const (
	framesPerSdNotify = 50
	frameLogInterval  = 500
	reconnectDelay    = 5 * time.Second
	pollTimeout       = time.Second
)

var version = "<not set>"

type Args struct {
	ConfigFile string `arg:"-c,--config" help:"path to configuration file"`
	Timestamps bool   `arg:"-t,--timestamps" help:"include timestamps in log output"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
	args.ConfigFile = "/etc/fake-camerad.yaml"
	arg.MustParse(&args)
	return args
}

func main() {
	err := runMain()
	if err != nil {
		log.Fatal(err)
	}
}

func runMain() error {
	args := procArgs()
	if !args.Timestamps {
		log.SetFlags(0) // Removes default timestamp flag
	}

	log.Printf("version: %s", version)
	conf, err := ParseConfigFile(args.ConfigFile)
	if err != nil {
		return err
	}
	logConfig(conf)
	cam, err := conf.Camera()
	if err != nil {
		return err
	}

	for {
		log.Print("dialing frame output socket")
		conn, err := net.Dial("unix", conf.FrameOutput)
		if err != nil {
			log.Printf("connecting to frame output failed: %v", err)
			time.Sleep(reconnectDelay)
			continue
		}

		src, err := fakesource.New(cam)
		if err != nil {
			conn.Close()
			return err
		}
		err = serve(context.Background(), conn, src)
		log.Printf("recorder connection ended with: %v", err)
		conn.Close()
		src.Close()
		time.Sleep(reconnectDelay)
	}
}

// serve describes the camera on conn, enables the streams the recorder
// asks for and then sends bundles until writing fails.
func serve(ctx context.Context, conn net.Conn, src *fakesource.Source) error {
	var profiles []frame.Profile
	for _, kind := range frame.Kinds {
		offered, err := src.Profiles(kind)
		if err != nil {
			continue
		}
		profiles = append(profiles, offered...)
	}
	if err := headers.WriteHeaderInfo(conn, src.Brand(), src.Model(), profiles); err != nil {
		return err
	}

	kinds, err := headers.ReadEnable(bufio.NewReader(conn))
	if err != nil {
		return fmt.Errorf("failed to read enabled streams: %w", err)
	}
	for _, kind := range kinds {
		offered, err := src.Profiles(kind)
		if err != nil {
			return err
		}
		if err := src.Enable(offered[0]); err != nil {
			return err
		}
	}
	log.Printf("sending streams: %v", kinds)
	if err := src.Start(); err != nil {
		return err
	}

	frames := 0
	for {
		bundle, err := src.Poll(ctx, pollTimeout)
		if err != nil {
			return err
		}
		if bundle == nil {
			continue
		}
		if err := socketsource.WriteBundle(conn, bundle); err != nil {
			return err
		}

		frames++
		if frames%framesPerSdNotify == 0 {
			daemon.SdNotify(false, "WATCHDOG=1")
		}
		if frames%frameLogInterval == 0 {
			log.Printf("%d bundles for this connection", frames)
		}
	}
}

func logConfig(conf *Config) {
	log.Printf("frame output: %s", conf.FrameOutput)
	log.Printf("sensors: %v", conf.Sensors)
	log.Printf("resolution: %dx%d@%d", conf.Width, conf.Height, conf.FPS)
	log.Printf("formats: color %s, ir %s", conf.ColorFormat, conf.IRFormat)
}
