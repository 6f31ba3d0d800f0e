package cmd

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// Write img as a png file.
func writePNG(img image.Image, imgFile string) error {
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}

	if err = png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("error encoding png file: %w", err)
	}
	return f.Close()
}
