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
	"encoding/json"
	"log"
	"time"

	"github.com/godbus/dbus"

	"github.com/TheCacophonyProject/depth-recorder/capture"
	"github.com/TheCacophonyProject/depth-recorder/frame"
)

const captureEventType = "depthCaptureComplete"

func captureEventDetails(avail capture.Availability, counters capture.Counters) ([]byte, error) {
	saved := make(map[string]interface{})
	for _, kind := range frame.Kinds {
		if avail.Enabled(kind) {
			saved[kind.String()] = counters.Get(kind)
		}
	}
	eventDetails := map[string]interface{}{
		"description": map[string]interface{}{
			"type":    captureEventType,
			"details": saved,
		},
	}
	return json.Marshal(&eventDetails)
}

// queueCaptureEvent uses the event api to record that a capture finished.
func queueCaptureEvent(avail capture.Availability, counters capture.Counters) {
	ts := time.Now()
	detailsJSON, err := captureEventDetails(avail, counters)
	if err != nil {
		log.Printf("Could not record capture event: %s", err)
		return
	}

	conn, err := dbus.SystemBus()
	if err != nil {
		log.Printf("Could not record capture event: %s", err)
		return
	}

	obj := conn.Object("org.cacophony.Events", "/org/cacophony/Events")
	call := obj.Call("org.cacophony.Events.Queue", 0, detailsJSON, ts.UnixNano())
	if call.Err != nil {
		log.Printf("Could not record capture event: %s", call.Err)
	}
}
