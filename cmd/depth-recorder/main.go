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
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	arg "github.com/alexflint/go-arg"
	"github.com/coreos/go-systemd/daemon"

	"github.com/TheCacophonyProject/depth-recorder/capture"
	"github.com/TheCacophonyProject/depth-recorder/rawarchive"
)

const (
	defaultConfigFile = "/etc/depth-recorder.yaml"
	pollsPerSdNotify  = 50
)

var version = "<not set>"

type Args struct {
	ConfigFile string `arg:"-c,--config" help:"path to configuration file"`
	OutputDir  string `arg:"-o,--output-dir" help:"directory for saved images, overrides the configuration file"`
	Timestamps bool   `arg:"-t,--timestamps" help:"include timestamps in log output"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
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

	log.Printf("running version: %s", version)
	conf, err := loadConfig(args)
	if err != nil {
		return err
	}
	logConfig(conf)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if conf.DBus {
		log.Println("starting d-bus service")
		if err := startService(cancel); err != nil {
			return err
		}
	}

	log.Println("deleting temp files")
	if err := capture.DeleteTempFiles(conf.OutputDir); err != nil {
		return err
	}
	if err := rawarchive.DeleteTempFiles(conf.OutputDir); err != nil {
		return err
	}

	src, err := openSource(ctx, conf)
	if err != nil {
		return err
	}
	defer src.Close()

	avail := capture.ResolveStreams(src)
	if err := src.Start(); err != nil {
		return err
	}
	daemon.SdNotify(false, "READY=1")

	loop := capture.NewLoop(src, avail, capture.NewImageWriter(conf.OutputDir), capture.Config{
		Rule:        conf.Rule(),
		PollTimeout: conf.PollTimeout,
	})
	loop.SetPollHook(func(polls int) {
		if polls%pollsPerSdNotify == 0 {
			daemon.SdNotify(false, "WATCHDOG=1")
		}
	})

	var archive *rawarchive.Archive
	if conf.RawArchive {
		archive, err = rawarchive.Create(conf.OutputDir, time.Now(), src.Brand(), src.Model())
		if err != nil {
			return err
		}
		loop.SetArchiver(archive)
	}

	counters, err := loop.Run(ctx)
	daemon.SdNotify(false, "STOPPING=1")
	if archive != nil {
		if _, closeErr := archive.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	if err != nil {
		return err
	}

	log.Printf("saved %s", counters)
	if conf.DBus {
		queueCaptureEvent(avail, counters)
	}
	return nil
}

func loadConfig(args Args) (*Config, error) {
	var conf *Config
	var err error
	if args.ConfigFile == "" {
		conf, err = ParseConfigFile(defaultConfigFile, true)
	} else {
		conf, err = ParseConfigFile(args.ConfigFile, false)
	}
	if err != nil {
		return nil, err
	}
	if args.OutputDir != "" {
		conf.OutputDir = args.OutputDir
	}
	return conf, nil
}

func logConfig(conf *Config) {
	log.Printf("output dir: %s", conf.OutputDir)
	log.Printf("poll timeout: %s", conf.PollTimeout)
	log.Printf("stop rule: %s", conf.StopRule)
	log.Printf("raw archive: %t", conf.RawArchive)
	log.Printf("source: %s", conf.Source.Type)
	switch conf.Source.Type {
	case sourceSocket:
		log.Printf("frame input: %s", conf.Source.FrameInput)
	case sourceFake:
		log.Printf("fake camera: %+v", conf.Fake)
	}
}
