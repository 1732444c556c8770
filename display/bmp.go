package display

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"

	"github.com/gogpu/lasca"
)

// BMPWriter writes every Every-th mask as a false-color BMP file named
// <Prefix>-<n>.bmp in Dir.
type BMPWriter struct {
	Dir    string
	Prefix string
	Every  int

	count   int
	written []string
}

// NewBMPWriter creates a writer; every <= 0 writes every mask.
func NewBMPWriter(dir string, every int) *BMPWriter {
	return &BMPWriter{Dir: dir, Prefix: "lasca", Every: max(every, 1)}
}

// Display implements lasca.DisplayConsumer.
func (w *BMPWriter) Display(mask []uint8, width, height int, table *lasca.ColorTable) error {
	w.count++
	if (w.count-1)%max(w.Every, 1) != 0 {
		return nil
	}
	if table == nil {
		table = lasca.GrayColorTable()
	}

	path := filepath.Join(w.Dir, fmt.Sprintf("%s-%06d.bmp", w.Prefix, w.count))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("display: create %s: %w", path, err)
	}
	if err := bmp.Encode(f, Colorize(mask, width, height, table)); err != nil {
		_ = f.Close()
		return fmt.Errorf("display: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("display: close %s: %w", path, err)
	}
	w.written = append(w.written, path)
	lasca.Logger().Debug("display: wrote snapshot", "path", path)
	return nil
}

// Written returns the paths written so far.
func (w *BMPWriter) Written() []string { return w.written }
