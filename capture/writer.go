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
	"bufio"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/TheCacophonyProject/depth-recorder/frame"
)

const tempExt = ".temp"

// Saver stores one converted still and returns where it went.
type Saver interface {
	Save(kind frame.Kind, index int, f *frame.RawFrame, img image.Image) (string, error)
}

// ImageWriter saves stills as PNG files under <dir>/<kind>_images/.
type ImageWriter struct {
	dir string
}

func NewImageWriter(dir string) *ImageWriter {
	return &ImageWriter{dir: dir}
}

// Path returns the file name used for the index'th still of kind.
func (w *ImageWriter) Path(kind frame.Kind, index int, f *frame.RawFrame) string {
	name := fmt.Sprintf("%s_%dx%d_%d_%d.png", kind, f.Width, f.Height, index, f.Timestamp)
	return filepath.Join(w.dir, kind.String()+"_images", name)
}

// Save encodes img to a temporary file and renames it into place, so a
// partially written PNG is never visible under its final name.
func (w *ImageWriter) Save(kind frame.Kind, index int, f *frame.RawFrame, img image.Image) (string, error) {
	finalName := w.Path(kind, index, f)
	if err := os.MkdirAll(filepath.Dir(finalName), 0755); err != nil {
		return "", err
	}

	tempName := finalName + tempExt
	if err := writePNG(tempName, img); err != nil {
		os.Remove(tempName)
		return "", err
	}
	if err := os.Rename(tempName, finalName); err != nil {
		os.Remove(tempName)
		return "", err
	}
	return finalName, nil
}

func writePNG(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return file.Close()
}

// DeleteTempFiles removes stills left half written by an earlier run.
func DeleteTempFiles(dir string) error {
	matches, _ := filepath.Glob(filepath.Join(dir, "*_images", "*.png"+tempExt))
	for _, filename := range matches {
		if err := os.Remove(filename); err != nil {
			return err
		}
	}
	return nil
}
