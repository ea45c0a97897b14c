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

package capture

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/TheCacophonyProject/depth-recorder/convert"
	"github.com/TheCacophonyProject/depth-recorder/frame"
	"github.com/TheCacophonyProject/depth-recorder/loglimiter"
)

// TargetCount is the number of stills saved per stream.
const TargetCount = 5

const (
	DefaultPollTimeout = 100 * time.Millisecond

	pollLogInterval = 600
	repeatLogPeriod = time.Minute
)

var converters = map[frame.Kind]func(*frame.RawFrame) (*image.NRGBA, error){
	frame.Color:    convert.Color,
	frame.Depth:    convert.Depth,
	frame.Infrared: convert.Infrared,
}

// Counters holds how many frames of each stream have been handled.
type Counters struct {
	Color    int
	Depth    int
	Infrared int
}

func (c Counters) Get(kind frame.Kind) int {
	switch kind {
	case frame.Color:
		return c.Color
	case frame.Depth:
		return c.Depth
	case frame.Infrared:
		return c.Infrared
	}
	return 0
}

func (c *Counters) inc(kind frame.Kind) {
	switch kind {
	case frame.Color:
		c.Color++
	case frame.Depth:
		c.Depth++
	case frame.Infrared:
		c.Infrared++
	}
}

func (c Counters) String() string {
	return fmt.Sprintf("color=%d depth=%d ir=%d", c.Color, c.Depth, c.Infrared)
}

// Archiver keeps a copy of each raw frame the loop handles.
type Archiver interface {
	Archive(kind frame.Kind, f *frame.RawFrame) error
}

type Config struct {
	Rule        StopRule
	PollTimeout time.Duration
}

// Loop polls a Source and saves up to TargetCount stills per enabled
// stream. It is not safe for concurrent use.
type Loop struct {
	source      Source
	avail       Availability
	saver       Saver
	rule        StopRule
	pollTimeout time.Duration
	archiver    Archiver
	onPoll      func(polls int)
	limiter     *loglimiter.LogLimiter

	counters Counters
	polls    int
}

func NewLoop(src Source, avail Availability, saver Saver, conf Config) *Loop {
	timeout := conf.PollTimeout
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	return &Loop{
		source:      src,
		avail:       avail,
		saver:       saver,
		rule:        conf.Rule,
		pollTimeout: timeout,
		limiter:     loglimiter.New(repeatLogPeriod),
	}
}

// SetArchiver makes the loop pass every handled raw frame to a.
func (l *Loop) SetArchiver(a Archiver) {
	l.archiver = a
}

// SetPollHook registers fn to be called after every poll with the running
// poll count.
func (l *Loop) SetPollHook(fn func(polls int)) {
	l.onPoll = fn
}

// Counters returns what has been handled so far.
func (l *Loop) Counters() Counters {
	return l.counters
}

// Run captures until the stop rule is met, ctx is cancelled, or the source
// or output fails. Cancellation is not an error.
func (l *Loop) Run(ctx context.Context) (Counters, error) {
	defer l.limiter.Flush()

	log.Printf("capturing %d stills from: %s (stop rule: %s)", TargetCount, l.avail, l.rule)
	if !l.rule.Reachable(l.avail) {
		log.Printf("warning: %s stop rule can't be met with streams: %s; capture runs until interrupted", l.rule, l.avail)
	}

	for {
		if ctx.Err() != nil {
			log.Printf("capture interrupted: %s", l.counters)
			return l.counters, nil
		}

		bundle, err := l.source.Poll(ctx, l.pollTimeout)
		l.polls++
		if l.onPoll != nil {
			l.onPoll(l.polls)
		}
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			return l.counters, fmt.Errorf("failed to poll frames: %w", err)
		}
		if l.polls%pollLogInterval == 0 {
			log.Printf("%d polls, saved %s", l.polls, l.counters)
		}
		if bundle == nil {
			l.limiter.Print("no frames received")
			continue
		}

		if l.rule.Done(l.avail, l.counters, TargetCount) {
			log.Printf("capture complete: %s", l.counters)
			return l.counters, nil
		}

		for _, kind := range frame.Kinds {
			if err := l.handle(kind, bundle.Get(kind)); err != nil {
				return l.counters, err
			}
		}
	}
}

// handle converts and saves one frame. Conversion failures are logged and
// still count towards the stream's target.
func (l *Loop) handle(kind frame.Kind, f *frame.RawFrame) error {
	if f == nil || l.counters.Get(kind) >= TargetCount {
		return nil
	}
	index := l.counters.Get(kind)
	defer l.counters.inc(kind)

	img, err := converters[kind](f)
	if err != nil {
		l.limiter.Printf("failed to convert %s frame: %v", kind, err)
	} else if img != nil {
		filename, err := l.saver.Save(kind, index, f, img)
		if err != nil {
			return fmt.Errorf("failed to save %s frame: %w", kind, err)
		}
		log.Printf("saved %s", filename)
	}

	if l.archiver != nil {
		if err := l.archiver.Archive(kind, f); err != nil {
			return fmt.Errorf("failed to archive %s frame: %w", kind, err)
		}
	}
	return nil
}
