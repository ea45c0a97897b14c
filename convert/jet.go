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

package convert

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

type jetStop struct {
	pos float64
	col colorful.Color
}

// Keypoints of the classic jet map: dark blue through cyan, yellow and red
// to dark red.
var jetStops = []jetStop{
	{0, colorful.Color{R: 0, G: 0, B: 0.5}},
	{0.125, colorful.Color{R: 0, G: 0, B: 1}},
	{0.375, colorful.Color{R: 0, G: 1, B: 1}},
	{0.625, colorful.Color{R: 1, G: 1, B: 0}},
	{0.875, colorful.Color{R: 1, G: 0, B: 0}},
	{1, colorful.Color{R: 0.5, G: 0, B: 0}},
}

var jetTable = buildJetTable()

func buildJetTable() [256]color.NRGBA {
	var table [256]color.NRGBA
	for i := range table {
		r, g, b := jetAt(float64(i) / 255).RGB255()
		table[i] = color.NRGBA{R: r, G: g, B: b, A: 0xff}
	}
	return table
}

func jetAt(t float64) colorful.Color {
	for i := 1; i < len(jetStops); i++ {
		lo, hi := jetStops[i-1], jetStops[i]
		if t <= hi.pos {
			return lo.col.BlendRgb(hi.col, (t-lo.pos)/(hi.pos-lo.pos))
		}
	}
	return jetStops[len(jetStops)-1].col
}

// Jet maps an 8-bit level onto the jet colour map: low values are blue,
// high values red.
func Jet(v uint8) color.NRGBA {
	return jetTable[v]
}
