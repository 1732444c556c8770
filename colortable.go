package lasca

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTable maps mask values to RGB. It is read-only once handed to a
// pipeline.
type ColorTable [256][3]uint8

// turboStops are evenly spaced samples of the Turbo colormap.
var turboStops = [...]string{
	"#30123b", "#4145ab", "#4675ed", "#39a2fc", "#1bcfd4",
	"#24eca6", "#61fc6c", "#a4fc3b", "#d1e834", "#f3c63a",
	"#fe9b2d", "#f36315", "#d93806", "#b11901", "#7a0402",
}

// TurboColorTable returns the Turbo false-color table, interpolated in Lab
// space between the stops.
func TurboColorTable() *ColorTable {
	stops := make([]colorful.Color, len(turboStops))
	for i, s := range turboStops {
		c, err := colorful.Hex(s)
		if err != nil {
			panic(fmt.Sprintf("lasca: bad turbo stop %q: %v", s, err))
		}
		stops[i] = c
	}

	var t ColorTable
	segments := float64(len(stops) - 1)
	for i := range t {
		pos := float64(i) / 255 * segments
		k := min(int(math.Floor(pos)), len(stops)-2)
		c := stops[k].BlendLab(stops[k+1], pos-float64(k)).Clamped()
		t[i][0], t[i][1], t[i][2] = c.RGB255()
	}
	return &t
}

// GrayColorTable returns the identity grayscale table.
func GrayColorTable() *ColorTable {
	var t ColorTable
	for i := range t {
		v := uint8(i)
		t[i] = [3]uint8{v, v, v}
	}
	return &t
}

// Lookup returns the color of mask value v.
func (t *ColorTable) Lookup(v uint8) (r, g, b uint8) {
	c := t[v]
	return c[0], c[1], c[2]
}

// Bytes returns the table as 768 packed RGB bytes.
func (t *ColorTable) Bytes() []byte {
	out := make([]byte, 0, len(t)*3)
	for _, c := range t {
		out = append(out, c[0], c[1], c[2])
	}
	return out
}
