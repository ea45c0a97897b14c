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

	"github.com/TheCacophonyProject/depth-recorder/capture"
	"github.com/TheCacophonyProject/depth-recorder/fakesource"
	"github.com/TheCacophonyProject/depth-recorder/socketsource"
)

// camera is a frame source that can describe itself.
type camera interface {
	capture.Source
	Brand() string
	Model() string
}

func openSource(ctx context.Context, conf *Config) (camera, error) {
	if conf.Source.Type == sourceSocket {
		src, err := socketsource.Listen(ctx, conf.Source.FrameInput)
		if err != nil {
			return nil, err
		}
		return src, nil
	}

	camConf, err := conf.Fake.Camera()
	if err != nil {
		return nil, err
	}
	src, err := fakesource.New(camConf)
	if err != nil {
		return nil, err
	}
	return src, nil
}
