package display

import (
	"image"
	"image/color"

	"github.com/gogpu/lasca"
)

// Colorize maps a mask through table into an opaque RGBA image.
func Colorize(mask []uint8, width, height int, table *lasca.ColorTable) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		row := mask[y*width : (y+1)*width]
		for x, v := range row {
			r, g, b := table.Lookup(v)
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 0xff})
		}
	}
	return img
}
